package extract

import "fmt"

// Reason classifies why extraction failed.
type Reason string

const (
	ReasonCorrupt     Reason = "corrupt"
	ReasonEncrypted   Reason = "encrypted"
	ReasonEmpty       Reason = "empty"
	ReasonUnsupported Reason = "unsupported"
)

// Error is a typed extraction failure. Extraction errors are permanent:
// retrying the same bytes will fail the same way.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Extractor converts an uploaded file into plain UTF-8 text.
type Extractor interface {
	Extract(data []byte) (string, error)
}
