// Package download resolves object keys into time-limited presigned URLs.
package download

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/stashd/gateway/internal/storage"
)

// linkTTL is how long an issued download link stays valid.
const linkTTL = time.Hour

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// Service issues download links for existing objects.
type Service struct {
	store storage.ObjectStore
}

// NewService creates a download Service.
func NewService(store storage.ObjectStore) *Service {
	return &Service{store: store}
}

// Resolve confirms key exists and returns a presigned URL for it. The store
// must confirm existence first so that a missing object yields ErrNotFound
// instead of a signed link to nothing.
func (s *Service) Resolve(ctx context.Context, key string) (*url.URL, error) {
	if _, err := s.store.Head(ctx, key); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("check s3://%s/%s: %w", s.store.Bucket(), key, err)
	}

	u, err := s.store.PresignGet(ctx, key, linkTTL)
	if err != nil {
		return nil, fmt.Errorf("presign s3://%s/%s: %w", s.store.Bucket(), key, err)
	}
	return u, nil
}
