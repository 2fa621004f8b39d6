package chunker

import "strings"

// Normalize flattens newlines into spaces and collapses every whitespace run
// to a single space, trimming both ends. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.Join(strings.Fields(text), " ")
}
