// Package upload streams request bodies into the object store as multipart
// uploads: unbounded input, bounded memory, guaranteed remote cleanup on
// failure.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/stashd/gateway/internal/cache"
	"github.com/stashd/gateway/internal/storage"
)

// MaxParts is the S3 multipart upload part limit.
const MaxParts = 10000

// PartSize is how many bytes of the stream become one remote part. 5 MiB is
// the S3 minimum part size, so every non-final part is acceptable to the store.
const PartSize = 5 << 20

// abortTimeout bounds the detached cleanup call after a failure.
const abortTimeout = 30 * time.Second

// ErrTooManyParts is returned when a stream would exceed MaxParts.
var ErrTooManyParts = errors.New("too many parts")

// Service drives multipart uploads against the object store and invalidates
// the listing cache after successful writes.
type Service struct {
	store storage.ObjectStore
	cache cache.Cache

	// partSize is how many bytes of the stream become one remote part.
	partSize int
}

// NewService creates an upload Service.
func NewService(store storage.ObjectStore, c cache.Cache) *Service {
	return &Service{store: store, cache: c, partSize: PartSize}
}

// session is the state of one in-flight multipart upload. It exists from the
// first streamed chunk until Complete or Abort and is never persisted.
type session struct {
	key      string
	uploadID string
	parts    []storage.Part
}

// Upload consumes body chunk by chunk and writes it to the store under key.
// Parts are uploaded strictly in arrival order, one in flight at a time, so
// memory is bounded by a single chunk. Any failure past initiation aborts the
// remote session; the original error is what the caller sees.
func (s *Service) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	var sess *session
	buf := make([]byte, s.partSize)

	for {
		n, readErr := io.ReadFull(body, buf)
		if n > 0 {
			if sess == nil {
				var err error
				if sess, err = s.initiate(ctx, key, contentType); err != nil {
					return err
				}
			}
			if err := s.putChunk(ctx, sess, buf[:n]); err != nil {
				s.abort(ctx, sess)
				return err
			}
		}

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			err := fmt.Errorf("read chunk for %q: %w", key, readErr)
			if sess != nil {
				s.abort(ctx, sess)
			}
			return err
		}
	}

	// A zero-byte stream still produces an object: open a session and give
	// the store one empty part to assemble.
	if sess == nil {
		var err error
		if sess, err = s.initiate(ctx, key, contentType); err != nil {
			return err
		}
		if err := s.putChunk(ctx, sess, nil); err != nil {
			s.abort(ctx, sess)
			return err
		}
	}

	if err := s.complete(ctx, sess); err != nil {
		s.abort(ctx, sess)
		return err
	}

	// Clear runs detached: the object is in the store now, so the cache
	// must not keep serving listings from before the write even if the
	// client has already gone away.
	s.cache.Clear(context.WithoutCancel(ctx))

	log.Printf("upload: stored s3://%s/%s (%d parts)", s.store.Bucket(), key, len(sess.parts))
	return nil
}

func (s *Service) initiate(ctx context.Context, key, contentType string) (*session, error) {
	uploadID, err := s.store.InitiateMultipart(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("initiate upload for %q: %w", key, err)
	}
	return &session{key: key, uploadID: uploadID}, nil
}

func (s *Service) putChunk(ctx context.Context, sess *session, chunk []byte) error {
	if len(sess.parts) >= MaxParts {
		return fmt.Errorf("upload %q: %w", sess.key, ErrTooManyParts)
	}
	part, err := s.store.PutPart(ctx, sess.key, sess.uploadID, len(sess.parts)+1, chunk)
	if err != nil {
		return fmt.Errorf("upload part %d of %q: %w", len(sess.parts)+1, sess.key, err)
	}
	sess.parts = append(sess.parts, part)
	return nil
}

func (s *Service) complete(ctx context.Context, sess *session) error {
	if err := s.store.CompleteMultipart(ctx, sess.key, sess.uploadID, sess.parts); err != nil {
		return fmt.Errorf("complete upload for %q: %w", sess.key, err)
	}
	return nil
}

// abort releases the remote session. It runs under a detached context so the
// cleanup still happens when the client disconnected mid-upload, and its own
// failure is logged without masking the error that triggered it.
func (s *Service) abort(ctx context.Context, sess *session) {
	abortCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abortTimeout)
	defer cancel()

	if err := s.store.AbortMultipart(abortCtx, sess.key, sess.uploadID); err != nil {
		log.Printf("upload: abort s3://%s/%s: %v", s.store.Bucket(), sess.key, err)
	}
}
