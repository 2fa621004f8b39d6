package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/pdfner/internal/chunker"
)

type stubExtractor struct {
	pages []string
	err   error
}

func (s stubExtractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	return s.pages, s.err
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.pdf", true},
		{"paper.v2.pdf", true},
		{".pdf", true},
		{"a.PDF", false},
		{"a.Pdf", false},
		{"b.txt", false},
		{"a.pdf.txt", false},
		{"pdf", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, IsPDF(tc.name), tc.name)
	}
}

func TestExtractText_ConcatenatesPagesInOrder(t *testing.T) {
	e := stubExtractor{pages: []string{"Hello ", "", "World"}}
	text, err := ExtractText(context.Background(), e, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)
}

func TestExtractText_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ExtractText(context.Background(), stubExtractor{err: boom}, "a.pdf")
	assert.ErrorIs(t, err, boom)
}

func TestSplitPages(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, splitPages("one\ftwo\f"))
	assert.Equal(t, []string{"one", "two"}, splitPages("one\ftwo"))
	assert.Equal(t, []string{""}, splitPages(""))
	assert.Equal(t, []string{"one", "", "three"}, splitPages("one\f\fthree\f"))
}

func TestPDFExtractor_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0o644))

	p := &PDFExtractor{}
	_, err := p.ExtractPages(context.Background(), path)
	assert.Error(t, err)
}

func TestPDFExtractor_MissingFile(t *testing.T) {
	p := &PDFExtractor{}
	_, err := p.ExtractPages(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestPDFExtractor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &PDFExtractor{}
	_, err := p.ExtractPages(ctx, "whatever.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInspect_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	_, err := Inspect(path)
	assert.Error(t, err)
}

func TestPDFExtractor_HelloWorld(t *testing.T) {
	path := writeTestPDF(t, "Hello World")

	text, err := ExtractText(context.Background(), &PDFExtractor{}, path)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", chunker.Normalize(text))

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Pages)
}

func TestPDFExtractor_PagesInOrder(t *testing.T) {
	path := writeTestPDF(t, "Tumor necrosis", "factor alpha")

	pages, err := (&PDFExtractor{}).ExtractPages(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "Tumor necrosis")
	assert.Contains(t, pages[1], "factor alpha")

	text, err := ExtractText(context.Background(), &PDFExtractor{}, path)
	require.NoError(t, err)
	assert.Equal(t, "Tumor necrosis factor alpha", chunker.Normalize(text))

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Pages)
}

func TestInspect_LeavesConfigDirAlone(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	_, err := Inspect(writeTestPDF(t, "Hello World"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(home, ".config", "pdfcpu"))
	assert.True(t, os.IsNotExist(err))
}
