package quiz

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Question is one generated question as returned by the model.
type Question struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=1,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Type          string   `json:"type"`
}

var (
	optionLabel = regexp.MustCompile(`^[A-Da-d][).:]\s*`)
	bareLetter  = regexp.MustCompile(`^[A-Da-d][).:]?$`)

	schema = newSchemaValidator()
)

func newSchemaValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every question and reconciles answers that do not match an
// option verbatim. The batch is all or nothing: the first bad question
// rejects it and nothing is returned.
func Validate(questions []Question) ([]Question, error) {
	if len(questions) == 0 {
		return nil, &ValidationError{Index: -1, Reason: "no questions"}
	}

	out := make([]Question, 0, len(questions))
	for i, q := range questions {
		q = normalize(q)
		if err := schema.Struct(q); err != nil {
			return nil, &ValidationError{Index: i, Reason: schemaReason(err)}
		}

		answer, ok := Reconcile(q.CorrectAnswer, q.Options)
		if !ok {
			return nil, &ValidationError{
				Index:  i,
				Reason: fmt.Sprintf("correct_answer %q does not match any option", q.CorrectAnswer),
			}
		}
		q.CorrectAnswer = answer
		out = append(out, q)
	}
	return out, nil
}

// Reconcile maps answer onto the option it refers to. It returns the full
// option text and true when exactly one option matches.
func Reconcile(answer string, options []string) (string, bool) {
	for _, opt := range options {
		if opt == answer {
			return opt, true
		}
	}

	if bareLetter.MatchString(answer) {
		idx := int(strings.ToUpper(answer[:1])[0] - 'A')
		if idx < len(options) {
			return options[idx], true
		}
		return "", false
	}

	stripped := strings.ToLower(stripLabel(answer))
	if stripped == "" {
		return "", false
	}

	var equal, containing []string
	for _, opt := range options {
		candidate := strings.ToLower(stripLabel(opt))
		if candidate == "" {
			continue
		}
		switch {
		case candidate == stripped:
			equal = append(equal, opt)
		case strings.Contains(candidate, stripped) || strings.Contains(stripped, candidate):
			containing = append(containing, opt)
		}
	}
	if len(equal) == 1 {
		return equal[0], true
	}
	if len(equal) == 0 && len(containing) == 1 {
		return containing[0], true
	}
	return "", false
}

func stripLabel(s string) string {
	return strings.TrimSpace(optionLabel.ReplaceAllString(strings.TrimSpace(s), ""))
}

func normalize(q Question) Question {
	q.Question = strings.TrimSpace(q.Question)
	q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
	if q.Options != nil {
		options := make([]string, len(q.Options))
		for i, opt := range q.Options {
			options[i] = strings.TrimSpace(opt)
		}
		q.Options = options
	}
	q.Type = QuestionTypeMCQ
	return q
}

func schemaReason(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		if strings.Contains(fe.Namespace(), "[") {
			return fmt.Sprintf("empty entry in %q", "options")
		}
		return fmt.Sprintf("missing or empty field %q", fe.Field())
	case "min":
		return fmt.Sprintf("field %q must not be empty", fe.Field())
	default:
		return fmt.Sprintf("field %q failed %s", fe.Field(), fe.Tag())
	}
}
