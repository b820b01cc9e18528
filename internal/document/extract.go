// Package document handles course-material ingestion: text extraction from
// uploaded PDFs and normalization of the extracted page text.
package document

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Document is the extracted content of one uploaded file. Page numbers are
// 1-based and map to already-normalized page text.
type Document struct {
	Pages      map[int]string `json:"pages"`
	TotalPages int            `json:"total_pages"`
}

// Metadata describes an uploaded file.
type Metadata struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Subject  string `json:"subject"`
	Pages    int    `json:"pages"`
	FileSize int64  `json:"file_size"`
}

// Extractor extracts per-page text and metadata from a document file.
type Extractor interface {
	Extract(ctx context.Context, path string) (Document, error)
	Metadata(ctx context.Context, path string) (Metadata, error)
}

// PopplerExtractor extracts PDF text by shelling out to the poppler-utils
// tools pdftotext and pdfinfo.
type PopplerExtractor struct{}

// NewPopplerExtractor creates a poppler-based PDF extractor.
func NewPopplerExtractor() *PopplerExtractor {
	return &PopplerExtractor{}
}

// Extract runs pdftotext and splits the output into pages on form feeds.
// Every page is normalized before it is stored.
func (e *PopplerExtractor) Extract(ctx context.Context, path string) (Document, error) {
	if _, err := os.Stat(path); err != nil {
		return Document{}, fmt.Errorf("document not found: %s", path)
	}

	out, err := exec.CommandContext(ctx, "pdftotext", path, "-").Output()
	if err != nil {
		return Document{}, fmt.Errorf("pdftotext failed: %w", err)
	}

	// pdftotext separates pages with a form feed and appends a trailing one.
	raw := strings.TrimSuffix(string(out), "\f")
	pages := make(map[int]string)
	split := strings.Split(raw, "\f")
	for i, text := range split {
		pages[i+1] = Normalize(text)
	}

	return Document{Pages: pages, TotalPages: len(split)}, nil
}

// Metadata runs pdfinfo and parses title, author, subject and page count.
func (e *PopplerExtractor) Metadata(ctx context.Context, path string) (Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("document not found: %s", path)
	}

	out, err := exec.CommandContext(ctx, "pdfinfo", path).Output()
	if err != nil {
		return Metadata{}, fmt.Errorf("pdfinfo failed: %w", err)
	}

	meta := Metadata{FileSize: info.Size()}
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Title":
			meta.Title = value
		case "Author":
			meta.Author = value
		case "Subject":
			meta.Subject = value
		case "Pages":
			if n, err := strconv.Atoi(value); err == nil {
				meta.Pages = n
			}
		}
	}

	return meta, nil
}

// StaticExtractor is a test double serving fixed pages and metadata.
type StaticExtractor struct {
	Doc  Document
	Meta Metadata
	Err  error
}

func (e *StaticExtractor) Extract(_ context.Context, _ string) (Document, error) {
	if e.Err != nil {
		return Document{}, e.Err
	}
	doc := Document{Pages: NormalizePages(e.Doc.Pages), TotalPages: e.Doc.TotalPages}
	if doc.TotalPages == 0 {
		doc.TotalPages = len(doc.Pages)
	}
	return doc, nil
}

func (e *StaticExtractor) Metadata(_ context.Context, _ string) (Metadata, error) {
	if e.Err != nil {
		return Metadata{}, e.Err
	}
	return e.Meta, nil
}
