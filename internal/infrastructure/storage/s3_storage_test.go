package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chiclet/backend/internal/infrastructure/config"
)

func newTestS3(t *testing.T, mutate func(*config.StorageConfig)) *S3ObjectStorage {
	t.Helper()
	cfg := &config.StorageConfig{
		Enabled:         true,
		Bucket:          "chiclet-images",
		Region:          "ap-south-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		UsePathStyle:    true,
		KeyPrefix:       "/media/",
	}
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewS3ObjectStorage(context.Background(), cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return s
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, &config.StorageConfig{AccessKeyID: "a", SecretAccessKey: "b"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("half a key pair", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, &config.StorageConfig{Bucket: "b", AccessKeyID: "a"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "set together")
	})

	t.Run("default presign expiry", func(t *testing.T) {
		s := newTestS3(t, nil)
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
		assert.Equal(t, "chiclet-images", s.GetBucket())
	})

	t.Run("option overrides expiry", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, &config.StorageConfig{Bucket: "b"}, WithPresignExpiration(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, time.Minute, s.presignExpiration)
	})
}

func TestS3ObjectStorage_PublicURL(t *testing.T) {
	t.Run("endpoint with bucket path", func(t *testing.T) {
		s := newTestS3(t, nil)
		assert.Equal(t, "http://localhost:9000/chiclet-images/media/products/p1/a.png", s.PublicURL("products/p1/a.png"))
	})

	t.Run("explicit public base url", func(t *testing.T) {
		s := newTestS3(t, func(c *config.StorageConfig) {
			c.PublicBaseURL = "https://cdn.chiclet.shop/"
			c.KeyPrefix = ""
		})
		assert.Equal(t, "https://cdn.chiclet.shop/products/p1/a.png", s.PublicURL("/products/p1/a.png"))
	})

	t.Run("aws virtual host", func(t *testing.T) {
		s := newTestS3(t, func(c *config.StorageConfig) {
			c.Endpoint = ""
			c.KeyPrefix = ""
		})
		assert.Equal(t, "https://chiclet-images.s3.ap-south-1.amazonaws.com/k.png", s.PublicURL("k.png"))
	})
}

func TestS3ObjectStorage_GenerateUploadURL(t *testing.T) {
	s := newTestS3(t, nil)

	raw, expiresAt, err := s.GenerateUploadURL(context.Background(), "products/p1/a.png", "image/png", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.True(t, strings.HasSuffix(u.Path, "/chiclet-images/media/products/p1/a.png"), u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	s := newTestS3(t, nil)
	ctx := context.Background()

	_, _, err := s.GenerateUploadURL(ctx, "", "image/png", 0)
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, s.DeleteObject(ctx, ""), ErrEmptyKey)
	assert.ErrorIs(t, s.Upload(ctx, "", nil, "application/pdf"), ErrEmptyKey)
}
