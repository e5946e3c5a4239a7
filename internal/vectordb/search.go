package vectordb

import (
	"fmt"
	"strings"
)

// FormatResults renders search results as human-readable text for the CLI.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("--- Result %d (similarity: %.4f) ---\n", i+1, r.Similarity))

		source := r.Chunk.Filename
		if source == "" {
			source = r.Chunk.DocumentID
		}
		sb.WriteString(fmt.Sprintf("Source: %s (chunk %d, offset %d)\n\n", source, r.Chunk.Index, r.Chunk.Offset))
		sb.WriteString(r.Chunk.Text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
