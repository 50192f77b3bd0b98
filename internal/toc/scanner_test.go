package toc

import (
	"context"
	"strings"
	"testing"
)

func TestDecideAfterScan(t *testing.T) {
	cases := []struct {
		name       string
		cursor     int
		total      int
		candidates []int
		want       scanEdge
	}{
		{"mid-document continues", 5, 12, nil, edgeContinue},
		{"mid-document continues with candidates", 5, 12, []int{2}, edgeContinue},
		{"done with candidates proceeds", 12, 12, []int{6}, edgeProceed},
		{"done without candidates declines", 12, 12, nil, edgeNoTOC},
		{"cursor clamped at total still terminal", 12, 12, []int{}, edgeNoTOC},
	}
	for _, c := range cases {
		if got := decideAfterScan(c.cursor, c.total, c.candidates); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestScanWindow_LastWindowIsTruncated(t *testing.T) {
	// 12 pages, window 5, cursor at 10: the final window is pages 10-11.
	orc := &stubOracle{detectResponses: []string{noTOC()}}
	m := NewMachine(&stubStore{pages: 12}, orc, testLogger(), 1)
	st := NewRunState("doc-1", 5)
	st.SetTotalPages(12)
	st.AdvanceCursor(10)

	if err := m.scanWindow(context.Background(), st); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if got := st.Cursor(); got != 12 {
		t.Errorf("cursor after final window: got %d, want 12", got)
	}
}

func TestScanWindow_OutOfDocumentPagesDiscarded(t *testing.T) {
	orc := &stubOracle{detectResponses: []string{
		`{"toc_pages": [2, -1, 50], "confidence": 0.7, "reason": "mixed"}`,
	}}
	m := NewMachine(&stubStore{pages: 12}, orc, testLogger(), 1)
	st := NewRunState("doc-1", 5)
	st.SetTotalPages(12)

	if err := m.scanWindow(context.Background(), st); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	got := st.Candidates()
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("expected only in-document page 2 kept, got %v", got)
	}
	logs := strings.Join(st.Logs(), "\n")
	if !strings.Contains(logs, "suspicious") {
		t.Error("out-of-document pages should be logged as suspicious")
	}
}

func TestScanWindow_OutOfWindowInDocumentPagesKept(t *testing.T) {
	// Page 8 is outside window 0-4 but inside the document: it is kept,
	// with a suspicious log entry.
	orc := &stubOracle{detectResponses: []string{
		`{"toc_pages": [8], "confidence": 0.6, "reason": "spillover"}`,
	}}
	m := NewMachine(&stubStore{pages: 12}, orc, testLogger(), 1)
	st := NewRunState("doc-1", 5)
	st.SetTotalPages(12)

	if err := m.scanWindow(context.Background(), st); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	got := st.Candidates()
	if len(got) != 1 || got[0] != 8 {
		t.Errorf("expected out-of-window page 8 kept, got %v", got)
	}
	logs := strings.Join(st.Logs(), "\n")
	if !strings.Contains(logs, "outside window") {
		t.Error("out-of-window page should be logged")
	}
}

func TestScanWindow_RepeatedReportsMergeIdempotently(t *testing.T) {
	orc := &stubOracle{detectResponses: []string{
		`{"toc_pages": [3, 3, 4], "confidence": 0.9, "reason": "contents"}`,
		`{"toc_pages": [3, 4], "confidence": 0.9, "reason": "contents again"}`,
	}}
	m := NewMachine(&stubStore{pages: 20}, orc, testLogger(), 1)
	st := NewRunState("doc-1", 5)
	st.SetTotalPages(20)

	for i := 0; i < 2; i++ {
		if err := m.scanWindow(context.Background(), st); err != nil {
			t.Fatalf("scan %d failed: %v", i, err)
		}
	}
	got := st.Candidates()
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("expected deduplicated sorted [3 4], got %v", got)
	}
}

func TestScanWindow_MalformedResponse(t *testing.T) {
	orc := &stubOracle{detectResponses: []string{`not json at all`}}
	m := NewMachine(&stubStore{pages: 12}, orc, testLogger(), 1)
	st := NewRunState("doc-1", 5)
	st.SetTotalPages(12)

	if err := m.scanWindow(context.Background(), st); err == nil {
		t.Fatal("expected error for malformed response")
	}
	if st.Status() != StatusFailed {
		t.Errorf("expected status failed, got %s", st.Status())
	}
}
