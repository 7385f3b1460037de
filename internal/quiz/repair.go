package quiz

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const validEscapeChars = `"\/bfnrtu`

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	invalidEscape = regexp.MustCompile(`\\([^"\\/bfnrtu])`)
	unicodeEscape = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)
)

// ExtractJSON slices the outermost JSON value out of a completion. Arrays are
// preferred since an object payload usually wraps the question array anyway.
func ExtractJSON(raw string) (string, error) {
	opener, closer := "[", "]"
	start := strings.Index(raw, opener)
	if start < 0 {
		opener, closer = "{", "}"
		start = strings.Index(raw, opener)
	}
	if start < 0 {
		return "", ErrNoJSONFound
	}
	end := strings.LastIndex(raw, closer)
	if end < start {
		return "", fmt.Errorf("%w: unterminated %s", ErrJSONParseFailed, opener)
	}
	return raw[start : end+1], nil
}

// Repair cleans the text between the outer brackets so encoding/json can
// read it. The steps run in a fixed order and each one targets a failure
// mode seen in model output.
func Repair(raw string) (string, error) {
	text, err := ExtractJSON(raw)
	if err != nil {
		return "", err
	}

	text = strings.ReplaceAll(text, "\n", " ")
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, `\"`, `"`)
	text = invalidEscape.ReplaceAllString(text, "$1")
	text = dropDanglingBackslashes(text)
	text = decodeUnicodeEscapes(text)
	return text, nil
}

// ParseQuestions repairs raw and decodes it into question drafts. Elements
// are decoded one by one so a malformed element is reported by index.
func ParseQuestions(raw string) ([]Question, error) {
	cleaned, err := Repair(raw)
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJSONParseFailed, err)
	}

	var elements []json.RawMessage
	switch value.(type) {
	case []any:
		if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrJSONParseFailed, err)
		}
	case map[string]any:
		var wrapper struct {
			Questions []json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapper); err != nil || wrapper.Questions == nil {
			return nil, fmt.Errorf("%w: object without a questions array", ErrJSONParseFailed)
		}
		elements = wrapper.Questions
	default:
		return nil, fmt.Errorf("%w: unexpected top-level json value", ErrJSONParseFailed)
	}

	questions := make([]Question, 0, len(elements))
	for i, element := range elements {
		var q Question
		if err := json.Unmarshal(element, &q); err != nil {
			return nil, &ValidationError{Index: i, Reason: "question is not an object with string fields"}
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// dropDanglingBackslashes removes any backslash that does not start a valid
// escape, including one at the very end of the text.
func dropDanglingBackslashes(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' {
			if i+1 >= len(text) || !strings.ContainsRune(validEscapeChars, rune(text[i+1])) {
				continue
			}
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

func decodeUnicodeEscapes(text string) string {
	if !strings.Contains(text, `\u`) {
		return text
	}
	matches := unicodeEscape.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for i := 0; i < len(matches); i++ {
		m := matches[i]
		b.WriteString(text[last:m[0]])
		unit := parseUnit(text[m[2]:m[3]])

		if utf16.IsSurrogate(rune(unit)) && i+1 < len(matches) && matches[i+1][0] == m[1] {
			next := matches[i+1]
			r := utf16.DecodeRune(rune(unit), rune(parseUnit(text[next[2]:next[3]])))
			if r != utf8.RuneError {
				b.WriteRune(r)
				last = next[1]
				i++
				continue
			}
		}
		b.WriteRune(rune(unit))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func parseUnit(hex string) uint16 {
	v, _ := strconv.ParseUint(hex, 16, 16)
	return uint16(v)
}
