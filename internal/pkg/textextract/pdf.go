package textextract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF walks pages in order and rebuilds each text row. Runs of a row
// are concatenated, rows are joined by a space and pages by a newline.
func extractPDF(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", &ExtractionError{Reason: "pdf extraction degraded: empty file"}
	}
	// the parser panics on some truncated xref tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &ExtractionError{Reason: fmt.Sprintf("pdf extraction degraded: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Reason: "pdf extraction degraded: " + err.Error()}
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", &ExtractionError{Reason: fmt.Sprintf("pdf extraction degraded: page %d: %v", i, err)}
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			if s := strings.TrimSpace(line.String()); s != "" {
				lines = append(lines, s)
			}
		}
		pages = append(pages, strings.Join(lines, " "))
	}
	return strings.Join(pages, "\n"), nil
}
