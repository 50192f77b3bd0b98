package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a document id is unknown to the store.
var ErrNotFound = errors.New("document not found")

// Document describes one stored PDF.
type Document struct {
	ID         string    `json:"doc_id"`
	Filename   string    `json:"filename"`
	PageCount  int       `json:"page_count"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Store is the document-access surface consumed by the extraction pipeline.
// Page indices are 0-based throughout.
type Store interface {
	// PageCount returns the total page count of a document.
	PageCount(ctx context.Context, docID string) (int, error)

	// Fragments returns positioned text fragments for the given pages,
	// in canonical (page, line, span) reading order. The result may be
	// empty if none of the pages contain extractable text.
	Fragments(ctx context.Context, docID string, pages []int) ([]Fragment, error)

	// ReadPages returns concatenated plain text for the given pages in
	// ascending page order.
	ReadPages(ctx context.Context, docID string, pages []int) (string, error)
}
