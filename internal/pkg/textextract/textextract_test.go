package textextract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractPlainTextUnchanged(t *testing.T) {
	inputs := []string{
		"Mitochondria are the powerhouse of the cell.",
		"line one\n\n  line two\twith tab",
		"Ünïcödé ✓ 日本語",
		strings.Repeat("x", 29999),
	}
	for _, input := range inputs {
		got, err := Extract([]byte(input), "text/plain; charset=utf-8")
		require.NoError(t, err)
		assert.Equal(t, input, got)
	}

	got, err := Extract([]byte("# Title\n- item"), MIMEMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n- item", got)
}

func TestExtractEmptyText(t *testing.T) {
	_, err := Extract([]byte(" \n\t "), MIMEPlain)
	require.ErrorIs(t, err, ErrExtractionFailed)

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, "no extractable text", extractErr.Reason)
}

func TestExtractNonUTF8Text(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		mimeType string
		want     string
	}{
		{name: "latin-1 without charset", data: []byte("Caf\xe9 cr\xe8me br\xfbl\xe9e"), mimeType: MIMEPlain, want: "Café crème brûlée"},
		{name: "declared charset", data: []byte("na\xefve"), mimeType: "text/plain; charset=iso-8859-1", want: "naïve"},
		{name: "utf-16 with bom", data: []byte{0xff, 0xfe, 'h', 0x00, 'i', 0x00}, mimeType: MIMEPlain, want: "hi"},
		{name: "markdown", data: []byte("# R\xe9sum\xe9"), mimeType: MIMEMarkdown, want: "# Résumé"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.data, tt.mimeType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractUnsupported(t *testing.T) {
	_, err := Extract([]byte("GIF89a"), "image/gif")
	require.ErrorIs(t, err, ErrExtractionFailed)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestExtractBrokenPDF(t *testing.T) {
	_, err := Extract([]byte("%PDF-1.4\nthis is not really a pdf"), MIMEPDF)
	require.ErrorIs(t, err, ErrExtractionFailed)
	assert.Contains(t, err.Error(), "pdf extraction degraded")
}

func TestExtractDocx(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Mitochondria are </w:t></w:r><w:r><w:t>the powerhouse</w:t></w:r></w:p>
    <w:p><w:r><w:t>of the cell.</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`
	data := buildArchive(t, map[string]string{"word/document.xml": doc})

	got, err := Extract(data, MIMEDocx)
	require.NoError(t, err)
	assert.Equal(t, "Mitochondria are the powerhouse\nof the cell.", got)
}

func TestExtractPptxSlideOrder(t *testing.T) {
	slide := func(text string) string {
		return `<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` +
			`<p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
	}
	data := buildArchive(t, map[string]string{
		"ppt/slides/slide10.xml":            slide("Tenth"),
		"ppt/slides/slide2.xml":             slide("Second"),
		"ppt/slides/slide1.xml":             slide("First"),
		"ppt/slides/_rels/slide1.xml.rels":  "<Relationships/>",
		"ppt/slideLayouts/slideLayout1.xml": slide("Layout"),
	})

	got, err := Extract(data, MIMEPptx)
	require.NoError(t, err)
	assert.Equal(t, "First\nSecond\nTenth", got)
}

func TestExtractDocxNotZip(t *testing.T) {
	_, err := Extract([]byte("plain bytes"), MIMEDocx)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("application/pdf"))
	assert.True(t, Supported("TEXT/PLAIN; charset=utf-8"))
	assert.True(t, Supported(MIMEPptx))
	assert.False(t, Supported("image/png"))
	assert.False(t, Supported(""))
}
