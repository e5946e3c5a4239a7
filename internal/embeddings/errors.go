package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// maxInputChars caps the size of a single embedding input. Inputs beyond
// this exceed the context window of every supported model.
const maxInputChars = 32000

// Permanent input errors: retrying the same input cannot succeed.
var (
	ErrEmptyInput    = errors.New("embedding input is empty")
	ErrInputTooLarge = fmt.Errorf("embedding input exceeds %d characters", maxInputChars)
)

// Error wraps an embedding failure with a retry classification.
type Error struct {
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("embedding error (%s): %v", kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var embErr *Error
	if errors.As(err, &embErr) {
		return embErr.Transient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// validateInputs checks every text against the permanent input constraints.
func validateInputs(texts []string) error {
	for _, t := range texts {
		if t == "" {
			return &Error{Err: ErrEmptyInput}
		}
		if len(t) > maxInputChars {
			return &Error{Err: ErrInputTooLarge}
		}
	}
	return nil
}
