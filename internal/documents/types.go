package documents

import (
	"errors"
	"time"
)

// Status is the processing state of a document.
//
// Lifecycle: queued -> processing -> completed | failed. A failed document
// may be requeued, which starts the pipeline over from scratch.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Document is the relational record of an uploaded course file.
type Document struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	FilePath     string    `json:"file_path"`
	UploadedBy   string    `json:"uploaded_by"`
	Course       string    `json:"course"`
	Status       Status    `json:"status"`
	ChunkCount   int       `json:"chunk_count"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Stats summarizes the document corpus for dashboards and health output.
type Stats struct {
	Total       int `json:"total"`
	Queued      int `json:"queued"`
	Processing  int `json:"processing"`
	Completed   int `json:"completed"`
	Failed      int `json:"failed"`
	TotalChunks int `json:"total_chunks"`
}

var (
	// ErrNotFound means the document id does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyProcessing means the queued->processing gate rejected a
	// concurrent processing attempt.
	ErrAlreadyProcessing = errors.New("document is already being processed")

	// ErrInvalidState means a status transition was attempted from a state
	// that does not allow it.
	ErrInvalidState = errors.New("document is not in a state that allows this transition")
)
