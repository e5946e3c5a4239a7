package content

import (
	"errors"
	"time"
)

// Type is the kind of faculty content being generated.
type Type string

const (
	TypeAssignment Type = "assignment"
	TypeMCQ        Type = "mcq"
	TypeViva       Type = "viva"
)

// Valid difficulty levels; the model prompt is parameterized on these.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Generated is a persisted piece of generated faculty content. Content holds
// the model's JSON array verbatim.
type Generated struct {
	ID          string    `json:"id"`
	Type        Type      `json:"content_type"`
	AuthorID    string    `json:"author_id"`
	DocumentIDs []string  `json:"document_ids"`
	Difficulty  string    `json:"difficulty"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	// ErrNotFound means the content id does not exist.
	ErrNotFound = errors.New("generated content not found")

	// ErrNoContext means the selected documents contributed no indexed
	// chunks to ground generation on.
	ErrNoContext = errors.New("no indexed content for the selected documents")

	// ErrMalformedOutput means the model's reply did not contain a valid
	// JSON array of questions.
	ErrMalformedOutput = errors.New("model returned malformed question output")
)
