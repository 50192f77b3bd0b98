// Package export writes a finished run's sections to the filesystem:
// per-section text and JSON artifacts, a flat CSV index, and a markdown
// report.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hwkim-dev/policyparse/internal/toc"
)

var csvHeader = []string{
	"doc_id", "section_id", "level_1", "level_2", "level_3", "part", "article",
	"page_start", "page_end", "title", "para_count", "char_count",
	"has_table", "has_figure", "extract_path", "json_path",
}

// Result points at the artifacts one export produced.
type Result struct {
	Dir        string `json:"dir"`
	CSVPath    string `json:"csv_path"`
	ReportPath string `json:"report_path"`
}

// Exporter writes run artifacts under a fixed output root.
type Exporter struct {
	root string
}

func New(root string) (*Exporter, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Exporter{root: root}, nil
}

// Export writes all artifacts for a document's section list. Sections are
// expected in ascending page_start order.
func (e *Exporter) Export(docID string, sections []toc.Section) (Result, error) {
	dir := filepath.Join(e.root, docID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create document dir: %w", err)
	}

	csvPath := filepath.Join(e.root, docID+"_sections.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return Result{}, fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return Result{}, fmt.Errorf("write csv header: %w", err)
	}

	for _, s := range sections {
		textPath := filepath.Join(dir, fmt.Sprintf("section_%d.txt", s.ID))
		jsonPath := filepath.Join(dir, fmt.Sprintf("section_%d.json", s.ID))

		if err := os.WriteFile(textPath, []byte(s.Body), 0o644); err != nil {
			return Result{}, fmt.Errorf("write section %d text: %w", s.ID, err)
		}
		meta, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return Result{}, fmt.Errorf("marshal section %d: %w", s.ID, err)
		}
		if err := os.WriteFile(jsonPath, meta, 0o644); err != nil {
			return Result{}, fmt.Errorf("write section %d json: %w", s.ID, err)
		}

		relText, _ := filepath.Rel(e.root, textPath)
		relJSON, _ := filepath.Rel(e.root, jsonPath)
		row := []string{
			docID,
			strconv.Itoa(s.ID),
			s.Level1, s.Level2, s.Level3, s.Part, s.Article,
			strconv.Itoa(s.PageStart),
			strconv.Itoa(s.PageEnd),
			s.Title,
			strconv.Itoa(s.ParaCount),
			strconv.Itoa(s.CharCount),
			strconv.FormatBool(s.HasTable),
			strconv.FormatBool(s.HasFigure),
			relText,
			relJSON,
		}
		if err := w.Write(row); err != nil {
			return Result{}, fmt.Errorf("write csv row %d: %w", s.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Result{}, fmt.Errorf("flush csv: %w", err)
	}

	reportPath := filepath.Join(dir, "report.md")
	if err := os.WriteFile(reportPath, []byte(BuildReport(docID, sections)), 0o644); err != nil {
		return Result{}, fmt.Errorf("write report: %w", err)
	}

	return Result{Dir: dir, CSVPath: csvPath, ReportPath: reportPath}, nil
}

// ReadReport returns the markdown report written by a previous export.
func (e *Exporter) ReadReport(docID string) (string, error) {
	data, err := os.ReadFile(filepath.Join(e.root, docID, "report.md"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
