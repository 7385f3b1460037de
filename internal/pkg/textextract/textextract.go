package textextract

import (
	"errors"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	MIMEPlain    = "text/plain"
	MIMEMarkdown = "text/markdown"
	MIMEPDF      = "application/pdf"
	MIMEDocx     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPptx     = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

var ErrExtractionFailed = errors.New("text extraction failed")

// ExtractionError carries the reason a document produced no usable text.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "extract text failed: " + e.Reason
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

// Supported reports whether Extract has a strategy for mimeType.
func Supported(mimeType string) bool {
	switch BaseType(mimeType) {
	case MIMEPlain, MIMEMarkdown, MIMEPDF, MIMEDocx, MIMEPptx:
		return true
	}
	return false
}

// BaseType strips parameters such as charset from a MIME type.
func BaseType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// Extract returns the plain text of a document. Plain text never fails to
// decode (see decodeText); every other format goes through a structured parser and fails
// with an ExtractionError rather than degrading to a raw byte decode.
func Extract(data []byte, mimeType string) (string, error) {
	var (
		text string
		err  error
	)
	switch BaseType(mimeType) {
	case MIMEPlain, MIMEMarkdown:
		text = decodeText(data, mimeType)
	case MIMEPDF:
		text, err = extractPDF(data)
	case MIMEDocx:
		text, err = extractDocx(data)
	case MIMEPptx:
		text, err = extractPptx(data)
	default:
		return "", &ExtractionError{Reason: "unsupported format: " + mimeType}
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Reason: "no extractable text"}
	}
	return text, nil
}

// decodeText honours a charset parameter on mimeType. Without one, valid
// UTF-8 is returned as is, UTF-16 is recognised by its BOM and anything else
// is read as Windows-1252, which covers Latin-1 notes.
func decodeText(data []byte, mimeType string) string {
	if _, params, err := mime.ParseMediaType(mimeType); err == nil && params["charset"] != "" {
		if enc, err := htmlindex.Get(params["charset"]); err == nil {
			if out, err := enc.NewDecoder().Bytes(data); err == nil {
				return string(out)
			}
		}
	}
	if utf8.Valid(data) {
		return string(data)
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(charmap.Windows1252.NewDecoder()), data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}
