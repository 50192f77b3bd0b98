// Package oracle provides the reasoning backend used for document-structure
// decisions. The pipeline only ever sees the narrow Client interface: prompt
// text in, raw text out. Everything about the backend (transport, model,
// retries) stays behind it.
package oracle

import (
	"context"
	"fmt"
)

// Client is a single-shot text completion backend.
type Client interface {
	// Complete sends one prompt and returns the raw response text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Model returns the model identifier in use, for logging.
	Model() string
}

// RetryableError indicates a transient transport failure (rate limit or
// server error) that is safe to retry.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
