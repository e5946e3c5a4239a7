package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF extracts plain text from PDF byte streams.
type PDF struct{}

// NewPDF creates a PDF extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// Extract reads every page of the PDF and concatenates its text content.
// It never panics on malformed input; all failures come back as *Error.
func (p *PDF) Extract(data []byte) (text string, err error) {
	// The underlying parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &Error{Reason: ReasonCorrupt, Err: fmt.Errorf("pdf parser panic: %v", r)}
		}
	}()

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", &Error{Reason: ReasonUnsupported, Err: fmt.Errorf("missing PDF header")}
	}

	reader, err := pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), func() string { return "" })
	if err != nil {
		if err == pdf.ErrInvalidPassword {
			return "", &Error{Reason: ReasonEncrypted, Err: err}
		}
		return "", &Error{Reason: ReasonCorrupt, Err: err}
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document.
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", &Error{Reason: ReasonEmpty, Err: fmt.Errorf("no readable text in PDF")}
	}

	return sb.String(), nil
}
