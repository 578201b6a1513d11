// Package storage abstracts where report files live. The service itself only
// brokers signed URLs; file bytes never pass through it.
package storage

import (
	"context"
	"time"
)

// SignedUpload is a pre-authorized PUT target.
type SignedUpload struct {
	URL  string `json:"upload_url"`
	Path string `json:"file_path"`
}

// ObjectStore is the capability surface the report repository needs.
type ObjectStore interface {
	// SignUpload authorizes a direct upload to the given object path.
	SignUpload(ctx context.Context, path string, expires time.Duration) (*SignedUpload, error)

	// SignDownload authorizes a direct, expiring download of an object.
	SignDownload(ctx context.Context, path string, expires time.Duration) (string, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
}
