package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractRejectsNonPDF(t *testing.T) {
	p := NewPDF()

	_, err := p.Extract([]byte("hello, not a pdf"))
	var exErr *Error
	if !errors.As(err, &exErr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if exErr.Reason != ReasonUnsupported {
		t.Errorf("Reason = %q, want %q", exErr.Reason, ReasonUnsupported)
	}
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	p := NewPDF()

	// Valid header, garbage body.
	_, err := p.Extract([]byte("%PDF-1.7\nthis is not a real pdf body"))
	var exErr *Error
	if !errors.As(err, &exErr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if exErr.Reason != ReasonCorrupt {
		t.Errorf("Reason = %q, want %q", exErr.Reason, ReasonCorrupt)
	}
	if !strings.Contains(exErr.Error(), "corrupt") {
		t.Errorf("error message %q should mention corrupt", exErr.Error())
	}
}

func TestExtractEmptyInput(t *testing.T) {
	p := NewPDF()

	_, err := p.Extract(nil)
	var exErr *Error
	if !errors.As(err, &exErr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if exErr.Reason != ReasonUnsupported {
		t.Errorf("Reason = %q, want %q", exErr.Reason, ReasonUnsupported)
	}
}

func TestErrorMessageIncludesReason(t *testing.T) {
	tests := []struct {
		reason Reason
		want   string
	}{
		{ReasonCorrupt, "corrupt"},
		{ReasonEncrypted, "encrypted"},
		{ReasonEmpty, "empty"},
		{ReasonUnsupported, "unsupported"},
	}
	for _, tt := range tests {
		e := &Error{Reason: tt.reason}
		if !strings.Contains(e.Error(), tt.want) {
			t.Errorf("Error() = %q, want substring %q", e.Error(), tt.want)
		}
	}
}
