// Package textlayer turns uploaded documents into the plain UTF-8 text layer
// the invoice engine works on.
package textlayer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrNoTextLayer is returned when a document parses but yields no text, as
// happens with scanned image-only PDFs.
var ErrNoTextLayer = errors.New("document has no text layer")

// Reader extracts the text layer from one document format.
type Reader interface {
	Read(ctx context.Context, r io.Reader) (string, error)
}

// Options tune format readers.
type Options struct {
	// FallbackPdftotext shells out to pdftotext when the Go PDF reader fails
	// or finds no text.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can read.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the reader for a filename.
func ForFile(filename string, opts Options) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFReader{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".txt":
		return &PlainReader{}, nil
	case ".md", ".markdown":
		return &MarkdownReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".docx":
		return &DOCXReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

type readResult struct {
	text string
	err  error
}

// Read extracts the text layer of filename, giving up when ctx is done. A
// document without visible text yields ErrNoTextLayer.
func Read(ctx context.Context, r io.Reader, filename string, opts Options) (string, error) {
	reader, err := ForFile(filename, opts)
	if err != nil {
		return "", err
	}

	done := make(chan readResult, 1)
	go func() {
		text, err := reader.Read(ctx, r)
		done <- readResult{text: text, err: err}
	}()

	var res readResult
	select {
	case res = <-done:
	case <-ctx.Done():
		return "", fmt.Errorf("read %s: %w", filename, ctx.Err())
	}
	if res.err != nil {
		return "", fmt.Errorf("read %s: %w", filename, res.err)
	}
	if strings.TrimSpace(res.text) == "" {
		return "", ErrNoTextLayer
	}
	return res.text, nil
}
