package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{RemoteURL: "ws://127.0.0.1:9222"})
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.config.Timeout)
	assert.Equal(t, PaperLetter, r.config.Paper)
	assert.NotNil(t, r.logger)
}

func TestBuildPrintParams_Letter(t *testing.T) {
	r := &ChromedpRenderer{config: ChromedpConfig{Paper: PaperLetter}}

	params := r.buildPrintParams()

	assert.InDelta(t, 8.5, params.PaperWidth, 0.01)
	assert.InDelta(t, 11.0, params.PaperHeight, 0.01)
	assert.InDelta(t, mmToInches(defaultMarginMM), params.MarginTop, 0.001)
	assert.InDelta(t, mmToInches(defaultMarginMM), params.MarginLeft, 0.001)
	assert.True(t, params.PrintBackground)
	assert.False(t, params.Landscape)
}

func TestBuildPrintParams_A4(t *testing.T) {
	r := &ChromedpRenderer{config: ChromedpConfig{Paper: PaperA4}}

	params := r.buildPrintParams()

	assert.InDelta(t, mmToInches(210), params.PaperWidth, 0.01)
	assert.InDelta(t, mmToInches(297), params.PaperHeight, 0.01)
}

func TestParsePaperSize(t *testing.T) {
	assert.Equal(t, PaperA4, ParsePaperSize(" A4 "))
	assert.Equal(t, PaperLetter, ParsePaperSize("letter"))
	assert.Equal(t, PaperLetter, ParsePaperSize("tabloid"))
	assert.Equal(t, PaperLetter, ParsePaperSize(""))
}

func TestBuildCompleteHTML_WithDoctype(t *testing.T) {
	doc := "<!DOCTYPE html><html><body>INVOICE</body></html>"

	assert.Equal(t, doc, buildCompleteHTML("Invoice #1", doc))
}

func TestBuildCompleteHTML_FragmentOnly(t *testing.T) {
	got := buildCompleteHTML("Invoice <1>", "<h1>INVOICE</h1>")

	assert.Contains(t, got, "<!DOCTYPE html>")
	assert.Contains(t, got, "<meta charset=\"UTF-8\">")
	assert.Contains(t, got, "<title>Invoice &lt;1&gt;</title>")
	assert.Contains(t, got, "<body><h1>INVOICE</h1></body>")
}

func TestBuildCompleteHTML_NoTitle(t *testing.T) {
	got := buildCompleteHTML("", "<p>x</p>")

	assert.NotContains(t, got, "<title>")
}

func TestMmToInches(t *testing.T) {
	assert.InDelta(t, 1.0, mmToInches(25.4), 0.0001)
	assert.InDelta(t, 0.0, mmToInches(0), 0.0001)
}

func TestRender_RejectsEmptyHTML(t *testing.T) {
	r := &ChromedpRenderer{config: ChromedpConfig{Timeout: time.Second}}

	_, err := r.Render(context.Background(), "Invoice #1", "   ")

	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestRenderError_Unwrap(t *testing.T) {
	cause := errors.New("target closed")
	err := NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "chromedp execution failed: target closed", err.Error())
	assert.Equal(t, "no html", NewRenderError(ErrCodeInvalidHTML, "no html", nil).Error())
}

func TestChromedpRenderer_Close(t *testing.T) {
	r := &ChromedpRenderer{}
	assert.NoError(t, r.Close())

	cancelled := false
	r = &ChromedpRenderer{allocCancel: func() { cancelled = true }}
	assert.NoError(t, r.Close())
	assert.True(t, cancelled)
}
