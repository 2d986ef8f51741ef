package browse

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stashd/gateway/internal/storage"
)

// fakeStore serves one canned listing page and records how it was asked.
type fakeStore struct {
	page *storage.ListPage
	err  error

	listCalls  int
	lastPrefix string
	lastCursor string
	lastLimit  int
}

func (f *fakeStore) Bucket() string { return "testbucket" }

func (f *fakeStore) ListPage(ctx context.Context, prefix, delimiter, cursor string, limit int) (*storage.ListPage, error) {
	f.listCalls++
	f.lastPrefix = prefix
	f.lastCursor = cursor
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeStore) Head(ctx context.Context, key string) (storage.ObjectEntry, error) {
	return storage.ObjectEntry{}, errors.New("not implemented")
}

func (f *fakeStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (*url.URL, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) InitiateMultipart(ctx context.Context, key, contentType string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeStore) PutPart(ctx context.Context, key, uploadID string, partNumber int, data []byte) (storage.Part, error) {
	return storage.Part{}, errors.New("not implemented")
}

func (f *fakeStore) CompleteMultipart(ctx context.Context, key, uploadID string, parts []storage.Part) error {
	return errors.New("not implemented")
}

func (f *fakeStore) AbortMultipart(ctx context.Context, key, uploadID string) error {
	return errors.New("not implemented")
}

// memCache is an in-memory Cache that records the keys it was asked for.
type memCache struct {
	m        map[string][]byte
	setKeys  []string
	clearCnt int
}

func newMemCache() *memCache { return &memCache{m: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := c.m[key]
	return v, ok
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.m[key] = value
	c.setKeys = append(c.setKeys, key)
}

func (c *memCache) Delete(ctx context.Context, key string) { delete(c.m, key) }

func (c *memCache) Clear(ctx context.Context) {
	c.m = map[string][]byte{}
	c.clearCnt++
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func newTestService(t *testing.T, store *fakeStore, c *memCache, maxLimit int) *Service {
	t.Helper()
	svc, err := NewService(store, c, "http://localhost:3001", maxLimit)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func decodeView(t *testing.T, body []byte) View {
	t.Helper()
	var v View
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode view: %v\nbody: %s", err, body)
	}
	return v
}

func docsPage(t *testing.T) *storage.ListPage {
	t.Helper()
	return &storage.ListPage{
		Entries: []storage.ObjectEntry{
			{Key: "docs/a.txt", Size: 11, LastModified: mustTime(t, "2024-03-01T10:00:00Z")},
			{Key: "docs/b.txt", Size: 22, LastModified: mustTime(t, "2024-03-02T11:30:00Z")},
		},
		CommonPrefixes: []string{"docs/sub/"},
		NextCursor:     "cursor-2",
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"empty stays empty", "", ""},
		{"bare folder gains delimiter", "docs", "docs/"},
		{"already terminated unchanged", "docs/", "docs/"},
		{"nested folder gains delimiter", "docs/sub", "docs/sub/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePrefix(tt.prefix); got != tt.want {
				t.Errorf("NormalizePrefix(%q) = %q, want %q", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestListBuildsView(t *testing.T) {
	store := &fakeStore{page: docsPage(t)}
	svc := newTestService(t, store, newMemCache(), 0)

	body, err := svc.List(context.Background(), "docs", "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	view := decodeView(t, body)

	if view.Path != "docs/" {
		t.Errorf("path = %q, want %q", view.Path, "docs/")
	}
	if len(view.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(view.Files))
	}
	if view.Files[0].Name != "a.txt" || view.Files[1].Name != "b.txt" {
		t.Errorf("file names = %q, %q", view.Files[0].Name, view.Files[1].Name)
	}
	if view.Files[0].Size != 11 {
		t.Errorf("size = %d, want 11", view.Files[0].Size)
	}
	wantURL := "http://localhost:3001/api/download/docs/a.txt"
	if view.Files[0].DownloadURL != wantURL {
		t.Errorf("download url = %q, want %q", view.Files[0].DownloadURL, wantURL)
	}
	if len(view.Folders) != 1 || view.Folders[0] != "sub" {
		t.Errorf("folders = %v, want [sub]", view.Folders)
	}
	if view.NextCursor != "cursor-2" {
		t.Errorf("next_cursor = %q, want %q", view.NextCursor, "cursor-2")
	}
}

func TestListNormalizesPrefixBeforeStoreCall(t *testing.T) {
	for _, prefix := range []string{"docs", "docs/"} {
		store := &fakeStore{page: docsPage(t)}
		svc := newTestService(t, store, newMemCache(), 0)

		if _, err := svc.List(context.Background(), prefix, "", 0); err != nil {
			t.Fatalf("List(%q): %v", prefix, err)
		}
		if store.lastPrefix != "docs/" {
			t.Errorf("List(%q) queried store with prefix %q, want %q", prefix, store.lastPrefix, "docs/")
		}
	}
}

func TestListSecondCallServedFromCache(t *testing.T) {
	store := &fakeStore{page: docsPage(t)}
	c := newMemCache()
	svc := newTestService(t, store, c, 0)

	first, err := svc.List(context.Background(), "docs/", "", 5)
	if err != nil {
		t.Fatalf("first List: %v", err)
	}
	second, err := svc.List(context.Background(), "docs/", "", 5)
	if err != nil {
		t.Fatalf("second List: %v", err)
	}

	if store.listCalls != 1 {
		t.Errorf("store queried %d times, want 1", store.listCalls)
	}
	if string(first) != string(second) {
		t.Errorf("cached body differs:\nfirst:  %s\nsecond: %s", first, second)
	}

	wantKey := "s3://testbucket/docs/@+5"
	if len(c.setKeys) != 1 || c.setKeys[0] != wantKey {
		t.Errorf("cache keys = %v, want [%s]", c.setKeys, wantKey)
	}
}

func TestListCacheKeyIncludesCursorAndLimit(t *testing.T) {
	store := &fakeStore{page: docsPage(t)}
	c := newMemCache()
	svc := newTestService(t, store, c, 0)

	if _, err := svc.List(context.Background(), "docs/", "tok", 7); err != nil {
		t.Fatalf("List: %v", err)
	}
	wantKey := "s3://testbucket/docs/@tok+7"
	if len(c.setKeys) != 1 || c.setKeys[0] != wantKey {
		t.Errorf("cache keys = %v, want [%s]", c.setKeys, wantKey)
	}
}

func TestListServerCapOverridesCallerLimit(t *testing.T) {
	store := &fakeStore{page: docsPage(t)}
	svc := newTestService(t, store, newMemCache(), 100)

	if _, err := svc.List(context.Background(), "docs/", "", 5000); err != nil {
		t.Fatalf("List: %v", err)
	}
	if store.lastLimit != 100 {
		t.Errorf("store limit = %d, want the server cap 100", store.lastLimit)
	}
}

func TestListEmptyPageIsNotFound(t *testing.T) {
	store := &fakeStore{page: &storage.ListPage{}}
	svc := newTestService(t, store, newMemCache(), 0)

	_, err := svc.List(context.Background(), "nosuch/", "", 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListDropsOutOfPrefixKeys(t *testing.T) {
	store := &fakeStore{page: &storage.ListPage{
		Entries: []storage.ObjectEntry{
			{Key: "docs/a.txt", Size: 1, LastModified: mustTime(t, "2024-03-01T10:00:00Z")},
			{Key: "other/stray.txt", Size: 1, LastModified: mustTime(t, "2024-03-01T10:00:00Z")},
		},
	}}
	svc := newTestService(t, store, newMemCache(), 0)

	body, err := svc.List(context.Background(), "docs/", "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	view := decodeView(t, body)
	if len(view.Files) != 1 || view.Files[0].Name != "a.txt" {
		t.Errorf("files = %+v, want only a.txt", view.Files)
	}
}

func TestListOmitsEmptyFieldsFromJSON(t *testing.T) {
	store := &fakeStore{page: &storage.ListPage{
		CommonPrefixes: []string{"docs/sub/"},
	}}
	svc := newTestService(t, store, newMemCache(), 0)

	body, err := svc.List(context.Background(), "docs/", "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if strings.Contains(string(body), `"files"`) {
		t.Errorf("body contains a files field for a folder-only page: %s", body)
	}
	if strings.Contains(string(body), `"next_cursor"`) {
		t.Errorf("body contains next_cursor on the last page: %s", body)
	}
}

func TestListStoreErrorSurfaces(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	svc := newTestService(t, store, newMemCache(), 0)

	_, err := svc.List(context.Background(), "docs/", "", 0)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want an upstream error", err)
	}
}

func TestNewServiceRejectsRelativeURL(t *testing.T) {
	if _, err := NewService(&fakeStore{}, newMemCache(), "not-a-base-url", 0); err == nil {
		t.Fatal("NewService accepted a relative API URL")
	}
}
