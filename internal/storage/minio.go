package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements ObjectStore using a MinIO (or any S3-compatible) backend.
// It uses the minio Core API so that multipart uploads and paginated listings
// stay under the caller's control instead of the client's high-level wrappers.
type MinioStore struct {
	core   *minio.Core
	bucket string
}

// MinioOptions configures NewMinioStore.
type MinioOptions struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
}

// NewMinioStore creates a MinIO core client for the given bucket.
// It does not touch the network; the first operation does.
func NewMinioStore(opts MinioOptions) (*MinioStore, error) {
	lookup := minio.BucketLookupAuto
	if opts.UsePathStyle {
		lookup = minio.BucketLookupPath
	}

	core, err := minio.NewCore(opts.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       opts.UseSSL,
		Region:       opts.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStore{core: core, bucket: opts.Bucket}, nil
}

// Bucket returns the name of the backing bucket.
func (s *MinioStore) Bucket() string {
	return s.bucket
}

// ListPage lists one page of objects under prefix via ListObjectsV2.
func (s *MinioStore) ListPage(ctx context.Context, prefix, delimiter, cursor string, limit int) (*ListPage, error) {
	result, err := s.core.ListObjectsV2(s.bucket, prefix, "", cursor, delimiter, limit)
	if err != nil {
		return nil, fmt.Errorf("list objects under %q: %w", prefix, err)
	}

	page := &ListPage{NextCursor: result.NextContinuationToken}
	for _, obj := range result.Contents {
		page.Entries = append(page.Entries, ObjectEntry{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	for _, cp := range result.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, cp.Prefix)
	}
	return page, nil
}

// Head checks key existence via StatObject.
func (s *MinioStore) Head(ctx context.Context, key string) (ObjectEntry, error) {
	info, err := s.core.Client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return ObjectEntry{}, ErrObjectNotFound
		}
		return ObjectEntry{}, fmt.Errorf("head object %q: %w", key, err)
	}
	return ObjectEntry{Key: info.Key, Size: info.Size, LastModified: info.LastModified}, nil
}

// PresignGet returns a presigned GET URL for key, valid for expiry.
func (s *MinioStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (*url.URL, error) {
	u, err := s.core.Client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("presign %q: %w", key, err)
	}
	return u, nil
}

// InitiateMultipart starts a multipart upload for key.
func (s *MinioStore) InitiateMultipart(ctx context.Context, key, contentType string) (string, error) {
	uploadID, err := s.core.NewMultipartUpload(ctx, s.bucket, key, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("initiate multipart upload for %q: %w", key, err)
	}
	return uploadID, nil
}

// PutPart uploads one part of an in-flight multipart upload.
func (s *MinioStore) PutPart(ctx context.Context, key, uploadID string, partNumber int, data []byte) (Part, error) {
	part, err := s.core.PutObjectPart(ctx, s.bucket, key, uploadID, partNumber,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectPartOptions{})
	if err != nil {
		return Part{}, fmt.Errorf("put part %d of %q: %w", partNumber, key, err)
	}
	return Part{Number: part.PartNumber, ETag: part.ETag}, nil
}

// CompleteMultipart assembles the uploaded parts into the final object.
func (s *MinioStore) CompleteMultipart(ctx context.Context, key, uploadID string, parts []Part) error {
	completeParts := make([]minio.CompletePart, 0, len(parts))
	for _, p := range parts {
		completeParts = append(completeParts, minio.CompletePart{
			PartNumber: p.Number,
			ETag:       p.ETag,
		})
	}
	_, err := s.core.CompleteMultipartUpload(ctx, s.bucket, key, uploadID, completeParts, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("complete multipart upload for %q: %w", key, err)
	}
	return nil
}

// AbortMultipart releases an in-flight multipart upload.
func (s *MinioStore) AbortMultipart(ctx context.Context, key, uploadID string) error {
	if err := s.core.AbortMultipartUpload(ctx, s.bucket, key, uploadID); err != nil {
		return fmt.Errorf("abort multipart upload for %q: %w", key, err)
	}
	return nil
}

// isNoSuchKey reports whether err is the store telling us the object is absent.
func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
