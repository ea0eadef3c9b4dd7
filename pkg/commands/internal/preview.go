package internal

import "github.com/arthur-debert/hostsub/pkg/hostsfile"

// Preview limits
const (
	PreviewLines      = 8
	PreviewLineLength = 60
)

// Preview returns the first entries of content for display, long lines
// cut with an ellipsis, and how many entries were left out.
func Preview(content string) ([]string, int) {
	entries := hostsfile.FilterContent(content)

	n := len(entries)
	if n > PreviewLines {
		n = PreviewLines
	}
	preview := make([]string, 0, n)
	for _, line := range entries[:n] {
		preview = append(preview, truncate(line, PreviewLineLength))
	}
	return preview, len(entries) - n
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
