package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hwkim-dev/policyparse/internal/toc"
)

// BuildReport renders a run's section table as a markdown document.
func BuildReport(docID string, sections []toc.Section) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Section report: %s\n\n", docID)
	fmt.Fprintf(&sb, "%d sections extracted.\n\n", len(sections))
	sb.WriteString("| # | Title | Pages | Paragraphs | Chars | Table | Figure |\n")
	sb.WriteString("|---|-------|-------|------------|-------|-------|--------|\n")
	for _, s := range sections {
		fmt.Fprintf(&sb, "| %d | %s | %d–%d | %d | %d | %s | %s |\n",
			s.ID, escapePipes(s.Title), s.PageStart, s.PageEnd,
			s.ParaCount, s.CharCount, mark(s.HasTable), mark(s.HasFigure))
	}
	return sb.String()
}

// RenderHTML converts a markdown report to HTML for the dashboard.
func RenderHTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
