package docstore

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	pdflib "github.com/ledongthuc/pdf"
)

// Local is a filesystem-backed document store. Each document lives at
// <root>/<id>.pdf with a sidecar <id>.meta.json.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Local{root: root}, nil
}

// Put stores an uploaded PDF and returns its document record. The document
// id is derived from the content hash, so re-uploading the same file yields
// the same id.
func (l *Local) Put(ctx context.Context, filename string, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	h := sha256.Sum256(data)
	id := fmt.Sprintf("%x", h[:])[:16]

	pdfPath := l.pdfPath(id)
	if err := os.WriteFile(pdfPath, data, 0o644); err != nil {
		return Document{}, fmt.Errorf("write pdf: %w", err)
	}

	pages, err := countPages(pdfPath)
	if err != nil {
		os.Remove(pdfPath)
		return Document{}, fmt.Errorf("read pdf: %w", err)
	}

	doc := Document{
		ID:         id,
		Filename:   filepath.Base(filename),
		PageCount:  pages,
		SizeBytes:  int64(len(data)),
		UploadedAt: time.Now().UTC(),
	}
	meta, err := json.Marshal(doc)
	if err != nil {
		return Document{}, fmt.Errorf("marshal meta: %w", err)
	}
	if err := os.WriteFile(l.metaPath(id), meta, 0o644); err != nil {
		return Document{}, fmt.Errorf("write meta: %w", err)
	}
	return doc, nil
}

// Get returns the document record for an id.
func (l *Local) Get(ctx context.Context, docID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(l.metaPath(docID))
	if os.IsNotExist(err) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("read meta: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode meta: %w", err)
	}
	return doc, nil
}

// List returns all stored documents, newest first.
func (l *Local) List(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".meta.json") {
			continue
		}
		doc, err := l.Get(ctx, strings.TrimSuffix(name, ".meta.json"))
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadedAt.After(docs[j].UploadedAt) })
	return docs, nil
}

// Delete removes a document and its metadata.
func (l *Local) Delete(ctx context.Context, docID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(l.metaPath(docID)); os.IsNotExist(err) {
		return ErrNotFound
	}
	if err := os.Remove(l.pdfPath(docID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pdf: %w", err)
	}
	if err := os.Remove(l.metaPath(docID)); err != nil {
		return fmt.Errorf("remove meta: %w", err)
	}
	return nil
}

// PageCount implements Store.
func (l *Local) PageCount(ctx context.Context, docID string) (int, error) {
	doc, err := l.Get(ctx, docID)
	if err != nil {
		return 0, err
	}
	return doc.PageCount, nil
}

// Fragments implements Store. Pages outside the document are skipped.
func (l *Local) Fragments(ctx context.Context, docID string, pages []int) ([]Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, reader, err := l.open(docID)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	total := reader.NumPage()
	sorted := append([]int(nil), pages...)
	sort.Ints(sorted)

	var frags []Fragment
	for _, p := range sorted {
		if p < 0 || p >= total {
			continue
		}
		page := reader.Page(p + 1)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		frags = append(frags, pageFragments(p, content.Text)...)
	}
	SortFragments(frags)
	return frags, nil
}

// ReadPages implements Store.
func (l *Local) ReadPages(ctx context.Context, docID string, pages []int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, reader, err := l.open(docID)
	if err != nil {
		return "", err
	}
	defer f.Close()

	total := reader.NumPage()
	sorted := append([]int(nil), pages...)
	sort.Ints(sorted)

	var sb strings.Builder
	for _, p := range sorted {
		if p < 0 || p >= total {
			continue
		}
		page := reader.Page(p + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func countPages(path string) (int, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return reader.NumPage(), nil
}

func (l *Local) open(docID string) (*os.File, *pdflib.Reader, error) {
	path := l.pdfPath(docID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, ErrNotFound
	}
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open pdf: %w", err)
	}
	return f, reader, nil
}

func (l *Local) pdfPath(id string) string  { return filepath.Join(l.root, id+".pdf") }
func (l *Local) metaPath(id string) string { return filepath.Join(l.root, id+".meta.json") }
