// Package frontend serves the static single-page web UI.
package frontend

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Handler serves files from root, falling back to index.html for paths that
// do not exist on disk so client-side routing keeps working on deep links.
func Handler(root string) http.Handler {
	fileServer := http.FileServer(http.Dir(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")
		full := filepath.Join(root, name)

		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, filepath.Join(root, "index.html"))
	})
}
