package toc

import (
	"fmt"
	"strings"
)

const detectPromptBody = `Analyze the pages listed above and identify which of them contain the
table of contents of an insurance policy document.

Signals to look for:
1) Policy structure listings (guidebook, main policy terms, special riders)
2) Hierarchical heading enumerations (parts, articles, numbered clauses)
3) Page numbers printed alongside entries
4) An explicit "Table of Contents" / "Contents" marker
5) Indented hierarchy

Answer with ONLY this JSON object:
{
    "toc_pages": [array of 0-based page indices],
    "confidence": 0.0-1.0,
    "reason": "short justification"
}`

// DetectPrompt builds the window-detection prompt for one window of pages.
func DetectPrompt(docID string, windowPages []int) string {
	var sb strings.Builder
	sb.WriteString("Document information:\n")
	fmt.Fprintf(&sb, "- document id: %s\n", docID)
	fmt.Fprintf(&sb, "- pages under analysis (0-based): %v\n", windowPages)
	fmt.Fprintf(&sb, "- window size: %d pages\n\n", len(windowPages))
	sb.WriteString(detectPromptBody)
	return sb.String()
}

const parsePromptBody = `### Role
You parse the table of contents of insurance policy PDFs. From the text
fragment lines below, produce the structured table of contents as JSON.
Output JSON only, with no extra commentary.

### Parsing rules
1. Hierarchy: level_1 (top), level_2 (middle), level_3 (bottom).
2. Policy structure: record the full "Part N ..." wording in "part" and the
   full "Article N ..." wording in "article" when present.
3. Pages: the trailing number on an entry is page_start. Always set
   page_end to 0; it is computed later and never trusted from you.
4. Merge fragments that share a line into one complete entry.
5. Use font size and bold markers to judge heading levels (bold outranks).
6. Skip entries that carry no page number.
7. An entry with only a level_1 heading is still recorded if it has a page.

### Output on success
{
  "status": 200,
  "message": "table of contents parsed",
  "length": <entry count>,
  "parsed": [
    {
      "level_1": "top level heading",
      "level_2": "middle heading",
      "level_3": "bottom heading",
      "part": "Part N full wording",
      "article": "Article N full wording",
      "page_start": <integer>,
      "page_end": 0
    }
  ]
}

### Output on failure
{"status": 404, "message": "no table of contents present", "length": 0, "parsed": []}
{"status": 500, "message": "table of contents could not be parsed", "length": 0, "parsed": []}

### Fragment line format
page N, line M: text [font name, size pt, bold?]`

// ParsePrompt builds the single table-of-contents parsing prompt from the
// flattened fragment lines.
func ParsePrompt(blocks []string) string {
	var sb strings.Builder
	sb.WriteString(parsePromptBody)
	sb.WriteString("\n\n### Fragments to analyze:\n")
	sb.WriteString(strings.Join(blocks, "\n"))
	return sb.String()
}
