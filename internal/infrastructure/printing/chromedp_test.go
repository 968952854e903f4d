package printing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r := NewChromedpRenderer(nil)
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.Equal(t, defaultScale, r.config.Scale)
	assert.NotNil(t, r.allocCtx)
}

func TestBuildPrintParams(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{Scale: 1.0}}

	t.Run("A4 portrait", func(t *testing.T) {
		params := r.buildPrintParams(&RenderRequest{PaperSize: PaperSizeA4, Margins: DefaultMargins()})
		assert.InDelta(t, mmToInches(210), params.paperWidth, 0.01)
		assert.InDelta(t, mmToInches(297), params.paperHeight, 0.01)
		assert.InDelta(t, mmToInches(12), params.marginTop, 0.01)
		assert.False(t, params.landscape)
		assert.False(t, params.displayFooter)
	})

	t.Run("footer enforces bottom margin", func(t *testing.T) {
		params := r.buildPrintParams(&RenderRequest{
			PaperSize:  PaperSizeLetter,
			Landscape:  true,
			FooterHTML: "<div>page</div>",
		})
		assert.True(t, params.landscape)
		assert.True(t, params.displayFooter)
		assert.InDelta(t, mmToInches(10), params.marginBottom, 0.01)
	})
}

func TestBuildCompleteHTML(t *testing.T) {
	wrapped := buildCompleteHTML(&RenderRequest{HTML: "<p>hi</p>", Title: "Invoice <1>"})
	assert.True(t, strings.HasPrefix(wrapped, "<!DOCTYPE html>"))
	assert.Contains(t, wrapped, "<title>Invoice &lt;1&gt;</title>")
	assert.Contains(t, wrapped, "<body><p>hi</p></body>")

	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, buildCompleteHTML(&RenderRequest{HTML: full}))
}

func TestChromedpRenderer_RejectsBadRequests(t *testing.T) {
	r := NewChromedpRenderer(&ChromedpConfig{DefaultTimeout: time.Second})
	defer r.Close()
	ctx := context.Background()

	_, err := r.Render(ctx, nil)
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	_, err = r.Render(ctx, &RenderRequest{HTML: "   "})
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	_, err = r.Render(ctx, &RenderRequest{HTML: "<p>x</p>", PaperSize: "B7"})
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidPaperSize, renderErr.Code)
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("<< /Type /Pages >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("garbage")))
}
