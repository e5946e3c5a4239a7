package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nabilh/coursepilot/internal/llm"
	"github.com/nabilh/coursepilot/internal/retry"
	"github.com/nabilh/coursepilot/internal/vectordb"
)

// Mode selects the shape of the composed answer.
type Mode string

const (
	ModeQA                Mode = "qa"
	ModeStudyNotes        Mode = "study_notes"
	ModePracticeQuestions Mode = "practice_questions"
)

// modeParams binds each mode to its retrieval depth, sampling temperature
// and prompt template. QA runs cold for factual answers; the synthesis modes
// run warmer.
type modeParams struct {
	k           int
	temperature float64
	template    string
}

var modes = map[Mode]modeParams{
	ModeQA:                {k: 5, temperature: 0.2, template: qaPrompt},
	ModeStudyNotes:        {k: 7, temperature: 0.7, template: studyNotesPrompt},
	ModePracticeQuestions: {k: 6, temperature: 0.7, template: practiceQuestionsPrompt},
}

// ParseMode validates a mode string, defaulting empty to qa.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeQA, nil
	}
	m := Mode(s)
	if _, ok := modes[m]; !ok {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// Answer is a composed, grounded response.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []string `json:"sources"`
	Mode    Mode     `json:"mode"`
}

// Composer turns retrieved chunks and a query into a grounded model prompt
// and invokes the generative model.
type Composer struct {
	provider    llm.Provider
	model       string
	maxTokens   int
	callTimeout time.Duration
}

// NewComposer creates a Composer for the given provider and model.
func NewComposer(provider llm.Provider, model string) *Composer {
	return &Composer{
		provider:    provider,
		model:       model,
		maxTokens:   1024,
		callTimeout: defaultCallTimeout,
	}
}

// SetMaxTokens overrides the completion token budget.
func (c *Composer) SetMaxTokens(n int) { c.maxTokens = n }

// SetCallTimeout overrides the per-call timeout for generation calls.
func (c *Composer) SetCallTimeout(d time.Duration) { c.callTimeout = d }

// Compose generates an answer for the query grounded on the given results.
// An empty result set short-circuits to the insufficient-context response
// without touching the model. Sources are the distinct document ids of the
// grounding chunks, in retrieval order.
func (c *Composer) Compose(ctx context.Context, query string, mode Mode, results []vectordb.Result) (*Answer, error) {
	params, ok := modes[mode]
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	if len(results) == 0 {
		return &Answer{Text: insufficientContext, Mode: mode}, nil
	}

	prompt := fmt.Sprintf(params.template, buildContext(results), query)

	var resp *llm.CompletionResponse
	err := retry.Do(ctx, retry.DefaultAttempts, retry.DefaultBackoff, llm.Transient, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
		r, err := c.provider.Complete(callCtx, llm.CompletionRequest{
			Model:       c.model,
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
			MaxTokens:   c.maxTokens,
			Temperature: params.temperature,
		})
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &Answer{
		Text:    strings.TrimSpace(resp.Content),
		Sources: sourceIDs(results),
		Mode:    mode,
	}, nil
}

// buildContext concatenates chunk texts with their source labels in
// retrieval order.
func buildContext(results []vectordb.Result) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		source := r.Chunk.Filename
		if source == "" {
			source = r.Chunk.DocumentID
		}
		fmt.Fprintf(&sb, "[%s]\n%s", source, r.Chunk.Text)
	}
	return sb.String()
}

// sourceIDs deduplicates document ids preserving first-seen order.
func sourceIDs(results []vectordb.Result) []string {
	seen := make(map[string]bool, len(results))
	var out []string
	for _, r := range results {
		if seen[r.Chunk.DocumentID] {
			continue
		}
		seen[r.Chunk.DocumentID] = true
		out = append(out, r.Chunk.DocumentID)
	}
	return out
}
