package embeddings

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestValidateInputs(t *testing.T) {
	tests := []struct {
		name    string
		texts   []string
		wantErr error
	}{
		{"ok", []string{"hello", "world"}, nil},
		{"empty string", []string{"hello", ""}, ErrEmptyInput},
		{"oversized", []string{strings.Repeat("x", maxInputChars+1)}, ErrInputTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInputs(tt.texts)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("validateInputs: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if IsTransient(err) {
				t.Error("input validation errors must be permanent")
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(&Error{Transient: true, Err: errors.New("boom")}) {
		t.Error("transient Error should be transient")
	}
	if IsTransient(&Error{Transient: false, Err: errors.New("boom")}) {
		t.Error("permanent Error should not be transient")
	}
	if !IsTransient(context.DeadlineExceeded) {
		t.Error("deadline exceeded should be transient")
	}
	if IsTransient(errors.New("unclassified")) {
		t.Error("unclassified errors should not be transient")
	}
}

func TestErrorMessage(t *testing.T) {
	e := &Error{Transient: true, Err: errors.New("connection refused")}
	if !strings.Contains(e.Error(), "transient") {
		t.Errorf("Error() = %q, want transient marker", e.Error())
	}
	e = &Error{Err: ErrEmptyInput}
	if !strings.Contains(e.Error(), "permanent") {
		t.Errorf("Error() = %q, want permanent marker", e.Error())
	}
}

func TestOpenAIModelDimensions(t *testing.T) {
	if got := ModelTextEmbedding3Small.dimensions(); got != 1536 {
		t.Errorf("small dimensions = %d, want 1536", got)
	}
	if got := ModelTextEmbedding3Large.dimensions(); got != 3072 {
		t.Errorf("large dimensions = %d, want 3072", got)
	}
}

// fakeEmbedder is shared by the chromem adapter test.
type fakeEmbedder struct{ dims int }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dims)
		v[0] = float32(len(texts[i]))
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }
func (f *fakeEmbedder) Name() string    { return "fake" }

func TestToChromemFunc(t *testing.T) {
	fn := ToChromemFunc(&fakeEmbedder{dims: 4})

	vec, err := fn(context.Background(), "abc")
	if err != nil {
		t.Fatalf("embedding func: %v", err)
	}
	if len(vec) != 4 {
		t.Fatalf("len(vec) = %d, want 4", len(vec))
	}
	if vec[0] != 3 {
		t.Errorf("vec[0] = %f, want 3", vec[0])
	}
}
