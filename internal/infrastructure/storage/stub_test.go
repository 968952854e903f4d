package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubObjectStorage(t *testing.T) {
	s := NewStubObjectStorage("https://files.test/")
	ctx := context.Background()

	u, expiresAt, err := s.GenerateUploadURL(ctx, "products/p1/a.png", "image/png", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "https://files.test/upload/products/p1/a.png?expires="))
	assert.True(t, expiresAt.After(time.Now()))

	assert.Equal(t, "https://files.test/products/p1/a.png", s.PublicURL("products/p1/a.png"))

	require.NoError(t, s.Upload(ctx, "invoices/ORD-1.pdf", []byte("%PDF"), "application/pdf"))
	data, ok := s.Object("invoices/ORD-1.pdf")
	require.True(t, ok)
	assert.Equal(t, []byte("%PDF"), data)

	require.NoError(t, s.DeleteObject(ctx, "invoices/ORD-1.pdf"))
	_, ok = s.Object("invoices/ORD-1.pdf")
	assert.False(t, ok)

	_, _, err = s.GenerateUploadURL(ctx, "", "", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)
}
