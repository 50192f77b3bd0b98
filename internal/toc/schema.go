package toc

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Oracle responses are untrusted external input. Shape is checked against a
// schema before anything is read out of them; violations become
// OracleResponseError, never a panic or a silently wrong zero value.

var detectSchema = jsonschema.MustCompileString("detect_response.json", `{
	"type": "object",
	"required": ["toc_pages", "confidence"],
	"properties": {
		"toc_pages": {
			"type": "array",
			"items": {"type": "integer"}
		},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"reason": {"type": "string"}
	}
}`)

var parseSchema = jsonschema.MustCompileString("parse_response.json", `{
	"type": "object",
	"required": ["status", "message", "parsed"],
	"properties": {
		"status": {"type": "integer"},
		"message": {"type": "string"},
		"length": {"type": "integer"},
		"parsed": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["page_start"],
				"properties": {
					"level_1": {"type": "string"},
					"level_2": {"type": "string"},
					"level_3": {"type": "string"},
					"part": {"type": "string"},
					"article": {"type": "string"},
					"page_start": {"type": "integer", "minimum": 0},
					"page_end": {"type": "integer"}
				}
			}
		}
	}
}`)

// DecodeDetect parses and validates a window-detection response.
func DecodeDetect(raw string) (DetectResult, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return DetectResult{}, &OracleResponseError{Stage: "detect", Raw: raw, Err: err}
	}
	if err := detectSchema.Validate(v); err != nil {
		return DetectResult{}, &OracleResponseError{Stage: "detect", Raw: raw, Err: err}
	}
	var out DetectResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return DetectResult{}, &OracleResponseError{Stage: "detect", Raw: raw, Err: err}
	}
	return out, nil
}

// DecodeParse parses and validates a table-of-contents parse response.
func DecodeParse(raw string) (*ParseResult, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, &OracleResponseError{Stage: "parse", Raw: raw, Err: err}
	}
	if err := parseSchema.Validate(v); err != nil {
		return nil, &OracleResponseError{Stage: "parse", Raw: raw, Err: err}
	}
	var out ParseResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &OracleResponseError{Stage: "parse", Raw: raw, Err: err}
	}
	return &out, nil
}
