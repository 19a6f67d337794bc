// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document reads specification PDFs and encodes them for transport
// to a generation API.
package document

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/vega/pkg/types"
)

const (
	pdfExt  = ".pdf"
	pdfMIME = "application/pdf"
)

var (
	// ErrNotFound is returned when the document path does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidFormat is returned when the document is not a PDF, by
	// extension or by content.
	ErrInvalidFormat = errors.New("not a PDF document")
)

// Load reads the PDF at path. It checks existence, the .pdf extension, and
// the sniffed content type before returning the document; the page count is
// filled in on a best-effort basis.
func Load(path string) (*types.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	if !strings.EqualFold(filepath.Ext(path), pdfExt) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if mt := mimetype.Detect(data); !mt.Is(pdfMIME) {
		return nil, fmt.Errorf("%w: %s has content type %s", ErrInvalidFormat, path, mt.String())
	}

	return &types.Document{
		Path:  path,
		Name:  filepath.Base(path),
		Data:  data,
		Pages: countPages(data),
	}, nil
}

// Encode returns the standard base64 encoding (with = padding) of data.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// countPages returns the number of pages, or 0 if the PDF cannot be parsed.
func countPages(data []byte) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}

// PlainText extracts the document's text, truncated to limit runes when
// limit is positive.
func PlainText(doc *types.Document, limit int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extracting text from %s: %v", doc.Name, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", doc.Name, err)
	}
	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", doc.Name, err)
	}
	raw, err := io.ReadAll(rd)
	if err != nil {
		return "", fmt.Errorf("reading text from %s: %w", doc.Name, err)
	}

	text = strings.TrimSpace(string(raw))
	if limit > 0 {
		runes := []rune(text)
		if len(runes) > limit {
			text = string(runes[:limit])
		}
	}
	return text, nil
}
