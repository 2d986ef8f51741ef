// Package browse turns flat, delimiter-based object-store listings into a
// hierarchical file/folder view with pagination, memoized through the cache.
package browse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/stashd/gateway/internal/cache"
	"github.com/stashd/gateway/internal/storage"
)

// Delimiter separates path segments in object keys.
const Delimiter = "/"

// cacheTTL bounds how stale a memoized listing may get without an
// intervening write.
const cacheTTL = time.Hour

// ErrNotFound is returned when a prefix yields neither files nor folders.
// An empty page is indistinguishable from a prefix that never existed.
var ErrNotFound = errors.New("prefix not found")

// View is the public projection of one listing page.
type View struct {
	Path       string     `json:"path"`
	Files      []ViewFile `json:"files,omitempty"`
	Folders    []string   `json:"folders,omitempty"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ViewFile is one file entry inside a View.
type ViewFile struct {
	Name         string    `json:"name"`
	LastModified time.Time `json:"last_modified"`
	Size         int64     `json:"size"`
	DownloadURL  string    `json:"download_url,omitempty"`
}

// Service builds listing views from object-store pages.
type Service struct {
	store storage.ObjectStore
	cache cache.Cache

	// baseURL is the public base of this gateway; download links in views
	// point back at its /api/download route.
	baseURL *url.URL

	// maxLimit, when non-zero, overrides any caller-supplied page size.
	maxLimit int
}

// NewService creates a browse Service. apiURL must be an absolute URL; a
// malformed one is a configuration error, not a per-request condition.
func NewService(store storage.ObjectStore, c cache.Cache, apiURL string, maxLimit int) (*Service, error) {
	base, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", apiURL, err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("api url %q is not absolute", apiURL)
	}

	return &Service{store: store, cache: c, baseURL: base, maxLimit: maxLimit}, nil
}

// List returns the serialized View for one page of prefix. The prefix is
// normalized to end with the delimiter; cursor is forwarded verbatim to the
// store. The returned bytes are the exact JSON document to serve, so cache
// hits reproduce earlier responses byte for byte.
func (s *Service) List(ctx context.Context, prefix, cursor string, limit int) ([]byte, error) {
	prefix = NormalizePrefix(prefix)
	limit = s.effectiveLimit(limit)

	key := s.cacheKey(prefix, cursor, limit)
	if body, ok := s.cache.Get(ctx, key); ok {
		return body, nil
	}

	page, err := s.store.ListPage(ctx, prefix, Delimiter, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list s3://%s/%s: %w", s.store.Bucket(), prefix, err)
	}

	view := s.buildView(prefix, page)
	if len(view.Files) == 0 && len(view.Folders) == 0 {
		return nil, ErrNotFound
	}

	body, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("encode view for %q: %w", prefix, err)
	}

	s.cache.Set(ctx, key, body, cacheTTL)
	return body, nil
}

// NormalizePrefix appends the delimiter to non-empty prefixes that lack it,
// so "docs" and "docs/" address the same folder.
func NormalizePrefix(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, Delimiter) {
		return prefix + Delimiter
	}
	return prefix
}

// effectiveLimit applies the server-side cap: when configured it always wins,
// regardless of what the caller asked for.
func (s *Service) effectiveLimit(limit int) int {
	if s.maxLimit > 0 {
		return s.maxLimit
	}
	return limit
}

// cacheKey derives the deterministic cache key for one (bucket, prefix,
// cursor, limit) tuple.
func (s *Service) cacheKey(prefix, cursor string, limit int) string {
	return fmt.Sprintf("s3://%s/%s@%s+%d", s.store.Bucket(), prefix, cursor, limit)
}

// buildView projects one store page into the public view shape.
func (s *Service) buildView(prefix string, page *storage.ListPage) *View {
	view := &View{Path: prefix, NextCursor: page.NextCursor}

	for _, entry := range page.Entries {
		name, ok := strings.CutPrefix(entry.Key, prefix)
		if !ok {
			// The store should never hand back keys outside the
			// requested prefix; drop them rather than mislabel them.
			log.Printf("browse: dropping out-of-prefix key %q under %q", entry.Key, prefix)
			continue
		}
		view.Files = append(view.Files, ViewFile{
			Name:         name,
			LastModified: entry.LastModified.UTC(),
			Size:         entry.Size,
			DownloadURL:  s.downloadURL(entry.Key),
		})
	}

	for _, cp := range page.CommonPrefixes {
		name, ok := strings.CutPrefix(cp, prefix)
		if !ok {
			continue
		}
		view.Folders = append(view.Folders, strings.TrimSuffix(name, Delimiter))
	}

	return view
}

// downloadURL joins the public base URL with this gateway's download route
// for the given key.
func (s *Service) downloadURL(key string) string {
	return s.baseURL.JoinPath("api", "download", key).String()
}
