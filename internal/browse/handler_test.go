package browse

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/stashd/gateway/internal/storage"
)

func newViewServer(t *testing.T, store *fakeStore) *httptest.Server {
	t.Helper()
	svc := newTestService(t, store, newMemCache(), 0)
	r := chi.NewRouter()
	r.Get("/api/view/*", NewHandler(svc).View)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestViewOK(t *testing.T) {
	srv := newViewServer(t, &fakeStore{page: docsPage(t)})

	resp := get(t, srv.URL+"/api/view/docs/?limit=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	view := decodeView(t, body)
	if view.Path != "docs/" || len(view.Files) != 2 {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestViewRootPrefix(t *testing.T) {
	store := &fakeStore{page: docsPage(t)}
	srv := newViewServer(t, store)

	resp := get(t, srv.URL+"/api/view/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if store.lastPrefix != "" {
		t.Errorf("store prefix = %q, want root", store.lastPrefix)
	}
}

func TestViewNotFound(t *testing.T) {
	srv := newViewServer(t, &fakeStore{page: &storage.ListPage{}})

	resp := get(t, srv.URL+"/api/view/nosuch/")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestViewStoreError(t *testing.T) {
	srv := newViewServer(t, &fakeStore{err: errors.New("boom")})

	resp := get(t, srv.URL+"/api/view/docs/")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(body), "boom") {
		t.Errorf("internal error detail leaked to the client: %s", body)
	}
}

func TestViewBadLimit(t *testing.T) {
	srv := newViewServer(t, &fakeStore{page: docsPage(t)})

	resp := get(t, srv.URL+"/api/view/docs/?limit=banana")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestViewForwardsCursor(t *testing.T) {
	store := &fakeStore{page: docsPage(t)}
	srv := newViewServer(t, store)

	get(t, srv.URL+"/api/view/docs/?cursor=opaque-token")
	if store.lastCursor != "opaque-token" {
		t.Errorf("store cursor = %q, want opaque-token", store.lastCursor)
	}
}
