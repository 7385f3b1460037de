package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

const (
	nsWordML    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsDrawingML = "http://schemas.openxmlformats.org/drawingml/2006/main"

	maxPartSize = 32 << 20
)

func extractDocx(data []byte) (string, error) {
	archive, err := openArchive(data)
	if err != nil {
		return "", err
	}
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			return readParagraphs(f, nsWordML)
		}
	}
	return "", &ExtractionError{Reason: "docx has no word/document.xml"}
}

func extractPptx(data []byte) (string, error) {
	archive, err := openArchive(data)
	if err != nil {
		return "", err
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range archive.File {
		name := strings.TrimPrefix(f.Name, "ppt/slides/slide")
		if name == f.Name || !strings.HasSuffix(name, ".xml") {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(name, ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: num, file: f})
	}
	if len(slides) == 0 {
		return "", &ExtractionError{Reason: "pptx has no slides"}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	parts := make([]string, 0, len(slides))
	for _, s := range slides {
		text, err := readParagraphs(s.file, nsDrawingML)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func openArchive(data []byte) (*zip.Reader, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Reason: "office document is not a zip archive: " + err.Error()}
	}
	return archive, nil
}

// readParagraphs collects the <t> runs of a part, one output line per <p>.
func readParagraphs(f *zip.File, space string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", &ExtractionError{Reason: fmt.Sprintf("open %s: %v", f.Name, err)}
	}
	defer rc.Close()

	decoder := xml.NewDecoder(io.LimitReader(rc, maxPartSize))
	var (
		lines   []string
		current strings.Builder
		inText  bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &ExtractionError{Reason: fmt.Sprintf("parse %s: %v", f.Name, err)}
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Space == space && el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if el.Name.Space != space {
				continue
			}
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if line := strings.TrimSpace(current.String()); line != "" {
					lines = append(lines, line)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
	if line := strings.TrimSpace(current.String()); line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
