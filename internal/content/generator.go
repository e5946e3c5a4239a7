package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nabilh/coursepilot/internal/llm"
	"github.com/nabilh/coursepilot/internal/retry"
)

const (
	// maxContextChars bounds the document context embedded in a prompt.
	maxContextChars = 3000

	generationTemperature = 0.5
	generationMaxTokens   = 2048

	defaultAssignmentQuestions = 5
	defaultMCQQuestions        = 10
	defaultVivaQuestions       = 10

	defaultCallTimeout = 120 * time.Second
)

// ContextSource provides concatenated chunk text for a set of documents.
// Implemented by rag.Retriever.
type ContextSource interface {
	DocumentContext(ctx context.Context, documentIDs []string) (string, error)
}

// Request describes one generation call.
type Request struct {
	Type         Type     `json:"content_type"`
	DocumentIDs  []string `json:"document_ids"`
	NumQuestions int      `json:"num_questions"`
	Difficulty   string   `json:"difficulty"`
	AuthorID     string   `json:"author_id"`
}

// Generator produces structured faculty content grounded on document chunks.
type Generator struct {
	provider    llm.Provider
	model       string
	source      ContextSource
	store       *Store
	callTimeout time.Duration
}

// NewGenerator creates a Generator. store may be nil to skip persistence.
func NewGenerator(provider llm.Provider, model string, source ContextSource, store *Store) *Generator {
	return &Generator{
		provider:    provider,
		model:       model,
		source:      source,
		store:       store,
		callTimeout: defaultCallTimeout,
	}
}

// SetCallTimeout overrides the per-call timeout for generation calls.
func (g *Generator) SetCallTimeout(d time.Duration) { g.callTimeout = d }

// Generate builds document-scoped context, prompts the model in JSON mode
// and persists the parsed result.
func (g *Generator) Generate(ctx context.Context, req Request) (*Generated, error) {
	if err := normalize(&req); err != nil {
		return nil, err
	}

	docCtx, err := g.source.DocumentContext(ctx, req.DocumentIDs)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(docCtx) == "" {
		return nil, ErrNoContext
	}
	if len(docCtx) > maxContextChars {
		docCtx = docCtx[:maxContextChars]
	}

	prompt := buildPrompt(req, docCtx)

	var resp *llm.CompletionResponse
	err = retry.Do(ctx, retry.DefaultAttempts, retry.DefaultBackoff, llm.Transient, func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
		r, err := g.provider.Complete(callCtx, llm.CompletionRequest{
			Model:       g.model,
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
			MaxTokens:   generationMaxTokens,
			Temperature: generationTemperature,
			JSONMode:    true,
		})
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generating %s content: %w", req.Type, err)
	}

	questions, err := extractJSONArray(resp.Content)
	if err != nil {
		return nil, err
	}

	gen := &Generated{
		Type:        req.Type,
		AuthorID:    req.AuthorID,
		DocumentIDs: req.DocumentIDs,
		Difficulty:  req.Difficulty,
		Content:     questions,
	}
	if g.store != nil {
		return g.store.Create(ctx, *gen)
	}
	gen.CreatedAt = time.Now().UTC()
	return gen, nil
}

func normalize(req *Request) error {
	switch req.Type {
	case TypeAssignment:
		if req.NumQuestions <= 0 {
			req.NumQuestions = defaultAssignmentQuestions
		}
	case TypeMCQ:
		if req.NumQuestions <= 0 {
			req.NumQuestions = defaultMCQQuestions
		}
	case TypeViva:
		if req.NumQuestions <= 0 {
			req.NumQuestions = defaultVivaQuestions
		}
	default:
		return fmt.Errorf("unknown content type %q", req.Type)
	}

	switch req.Difficulty {
	case "":
		req.Difficulty = DifficultyMedium
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("unknown difficulty %q", req.Difficulty)
	}

	if len(req.DocumentIDs) == 0 {
		return fmt.Errorf("no documents selected")
	}
	return nil
}

func buildPrompt(req Request, docCtx string) string {
	switch req.Type {
	case TypeMCQ:
		return fmt.Sprintf(mcqPrompt, req.NumQuestions, req.Difficulty, docCtx)
	case TypeViva:
		return fmt.Sprintf(vivaPrompt, req.NumQuestions, req.Difficulty, docCtx)
	default:
		return fmt.Sprintf(assignmentPrompt, req.NumQuestions, req.Difficulty, docCtx)
	}
}

// extractJSONArray pulls the first JSON array out of a model reply, which
// may wrap it in prose or code fences.
func extractJSONArray(s string) (string, error) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end <= start {
		return "", ErrMalformedOutput
	}
	arr := s[start : end+1]
	if !json.Valid([]byte(arr)) {
		return "", ErrMalformedOutput
	}
	return arr, nil
}
