package catalog

import (
	"context"
	"time"
)

// ImageStorage issues upload targets for product images
type ImageStorage interface {
	// GenerateUploadURL returns a presigned PUT URL for key and its expiry
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// PublicURL returns the URL the storefront uses to fetch key
	PublicURL(key string) string

	// DeleteObject removes key; missing objects are not an error
	DeleteObject(ctx context.Context, key string) error
}
