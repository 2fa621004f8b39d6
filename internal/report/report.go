// Package report renders recognized entities as the per-document text report
// and stores it.
package report

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/dgallion1/pdfner/internal/ner"
)

// DefaultSuffix is appended to the source file name to name its report.
const DefaultSuffix = "_entities.txt"

// OutputName derives the report name from the source file name:
// "a.pdf" becomes "a.pdf_entities.txt".
func OutputName(sourceName, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return filepath.Base(sourceName) + suffix
}

// Header is the first line of every report.
func Header(source string) string {
	return fmt.Sprintf("Entities extracted from %s:", filepath.Base(source))
}

// Line formats one entity.
func Line(e ner.Entity) string {
	return fmt.Sprintf("Entity: %s, Label: %s, Score: %.4f", e.Word, e.Label, e.Score)
}

// Render produces the full report: the header followed by one line per
// entity, in the order given. Every line ends with a newline.
func Render(source string, entities []ner.Entity) []byte {
	var buf bytes.Buffer
	buf.WriteString(Header(source))
	buf.WriteByte('\n')
	for _, e := range entities {
		buf.WriteString(Line(e))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
