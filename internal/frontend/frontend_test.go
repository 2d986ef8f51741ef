package frontend

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func setupFrontend(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), "<html>app shell</html>")
	writeFile(t, filepath.Join(dir, "app.js"), "console.log('hi')")

	srv := httptest.NewServer(Handler(dir))
	t.Cleanup(srv.Close)
	return srv
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fetch(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(b)
}

func TestServesExistingFile(t *testing.T) {
	srv := setupFrontend(t)

	status, body := fetch(t, srv.URL+"/app.js")
	if status != http.StatusOK || body != "console.log('hi')" {
		t.Errorf("got %d %q", status, body)
	}
}

func TestDeepLinkFallsBackToIndex(t *testing.T) {
	srv := setupFrontend(t)

	status, body := fetch(t, srv.URL+"/docs/sub/folder")
	if status != http.StatusOK || body != "<html>app shell</html>" {
		t.Errorf("got %d %q, want the app shell", status, body)
	}
}

func TestRootServesIndex(t *testing.T) {
	srv := setupFrontend(t)

	status, body := fetch(t, srv.URL+"/")
	if status != http.StatusOK || body != "<html>app shell</html>" {
		t.Errorf("got %d %q, want the app shell", status, body)
	}
}
