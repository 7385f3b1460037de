package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrNoJSONFound      = errors.New("no json found in completion")
	ErrJSONParseFailed  = errors.New("parse completion json failed")
	ErrValidationFailed = errors.New("question validation failed")
)

// ValidationError reports the first question of a batch that could not be
// accepted. Index is -1 when the batch itself is unusable.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return "invalid question batch: " + e.Reason
	}
	return fmt.Sprintf("invalid question format at index %d: %s", e.Index, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
