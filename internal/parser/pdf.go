package parser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfcpu would otherwise write ~/.config/pdfcpu on first use.
func init() {
	api.DisableConfigDir()
}

// PDFExtractor handles PDF files. It tries the Go library first,
// then falls back to pdftotext if enabled.
type PDFExtractor struct {
	FallbackPdftotext bool
}

// Info describes a PDF as seen by pdfcpu.
type Info struct {
	Pages int
}

// ExtractPages returns the plain text of every page. A page the library
// cannot decode fails the whole document; there is no partial result.
func (p *PDFExtractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := extractPDFPages(path)
	if err != nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return pages, nil
}

func extractPDFPages(path string) (pages []string, err error) {
	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractPdftotext(ctx context.Context, path string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil
}

// splitPages splits pdftotext output on form feeds. pdftotext terminates
// every page with one, so a trailing empty element is dropped.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if n := len(pages); n > 1 && pages[n-1] == "" {
		pages = pages[:n-1]
	}
	return pages
}

// Inspect reads the page count from the PDF's page tree.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return Info{}, fmt.Errorf("page count: %w", err)
	}
	return Info{Pages: n}, nil
}
