package parser

import (
	"context"
	"strings"
)

// Extractor pulls plain text out of a document, one string per page in
// page order.
type Extractor interface {
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

// ExtractText returns the concatenation of every page's text in page order.
func ExtractText(ctx context.Context, e Extractor, path string) (string, error) {
	pages, err := e.ExtractPages(ctx, path)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, ""), nil
}

// IsPDF reports whether a directory entry name looks like a PDF. The match is
// case-sensitive: "report.PDF" is not picked up.
func IsPDF(name string) bool {
	return strings.HasSuffix(name, ".pdf")
}
