package storage

import (
	"context"
	"errors"
	"time"
)

// Bucket represents a logical storage zone.
// We use a type alias to prevent passing random strings.
type Bucket string

const (
	// BucketListingImages: Public Read.
	// Listing photos are uploaded here directly via presigned POST and served
	// from here until the listing is removed.
	BucketListingImages Bucket = "listing-images"
)

// Wrapper for standard errors so checking them is consistent
var (
	ErrNotFound     = errors.New("storage: file not found")
	ErrAccessDenied = errors.New("storage: access denied")
	ErrUploadFailed = errors.New("storage: upload failed")
)

type UploadConfig struct {
	Bucket      Bucket
	Key         string
	ContentType string
	MaxFileSize int64
	Expiry      time.Duration
}

// Provider abstracts S3, MinIO, or Google Cloud Storage.
type Provider interface {
	GenerateUploadURL(ctx context.Context, cfg UploadConfig) (string, map[string]string, error)

	// PresignGet generates a temporary download URL (if bucket is private).
	PresignGet(ctx context.Context, bucket Bucket, key string, expiry time.Duration) (string, error)

	// Delete removes a file.
	Delete(ctx context.Context, bucket Bucket, key string) error
}
