// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO, AWS S3, Backblaze B2).
package storage

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// ErrObjectNotFound is returned by Head when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectEntry is one object returned by a prefix listing.
type ObjectEntry struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListPage is one page of a delimiter-based prefix listing.
type ListPage struct {
	Entries []ObjectEntry
	// CommonPrefixes are the immediate child "folders" under the listed
	// prefix, each ending with the delimiter.
	CommonPrefixes []string
	// NextCursor is the opaque continuation token; empty when this is the
	// last page.
	NextCursor string
}

// Part identifies one completed part of a multipart upload.
type Part struct {
	Number int
	ETag   string
}

// ObjectStore is the interface to an S3-compatible object store.
type ObjectStore interface {
	// Bucket returns the name of the backing bucket.
	Bucket() string

	// ListPage returns one page of objects directly under prefix, using
	// delimiter to group deeper keys into common prefixes. cursor is the
	// continuation token from a previous page ("" for the first page).
	// limit caps the page size; 0 lets the store pick its default.
	ListPage(ctx context.Context, prefix, delimiter, cursor string, limit int) (*ListPage, error)

	// Head checks that key exists and returns its metadata.
	// Returns ErrObjectNotFound when the store reports the key absent.
	Head(ctx context.Context, key string) (ObjectEntry, error)

	// PresignGet returns a time-limited URL from which key can be fetched
	// without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (*url.URL, error)

	// InitiateMultipart starts a multipart upload for key and returns the
	// store-issued upload ID.
	InitiateMultipart(ctx context.Context, key, contentType string) (string, error)

	// PutPart uploads one part of an in-flight multipart upload. Part
	// numbers start at 1 and must be contiguous.
	PutPart(ctx context.Context, key, uploadID string, partNumber int, data []byte) (Part, error)

	// CompleteMultipart assembles the uploaded parts into the final object.
	CompleteMultipart(ctx context.Context, key, uploadID string, parts []Part) error

	// AbortMultipart releases an in-flight multipart upload and its parts.
	AbortMultipart(ctx context.Context, key, uploadID string) error
}
