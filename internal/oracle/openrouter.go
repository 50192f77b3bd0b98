package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

const systemPrompt = "You are a meticulous assistant that analyzes insurance policy documents. " +
	"You always answer with exactly the JSON object requested, with no surrounding prose."

// OpenRouterOptions configures an OpenRouter-backed oracle.
type OpenRouterOptions struct {
	APIKey        string
	BaseURL       string
	Model         string
	AllowedModels []string
	Timeout       time.Duration
	MaxRetries    int
	Stats         *Stats
}

// OpenRouter calls the OpenRouter chat completions API.
type OpenRouter struct {
	apiKey     string
	baseURL    string
	model      string
	maxRetries int
	httpClient *http.Client
	stats      *Stats
}

// NewOpenRouter builds the client. It refuses models outside the sanctioned
// allow-list; that guard is deliberate, not a soft default.
func NewOpenRouter(opts OpenRouterOptions) (*OpenRouter, error) {
	allowed := false
	for _, m := range opts.AllowedModels {
		if m == opts.Model {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("model %q is not allowed (allowed: %s)",
			opts.Model, strings.Join(opts.AllowedModels, ", "))
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenRouter{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		model:      opts.Model,
		maxRetries: opts.MaxRetries,
		httpClient: &http.Client{Timeout: timeout},
		stats:      opts.Stats,
	}, nil
}

func (c *OpenRouter) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one prompt. Transient failures (429/5xx, network errors)
// are retried with backoff a bounded number of times; everything else
// surfaces immediately.
func (c *OpenRouter) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	var out string
	err := retry.Do(
		func() error {
			text, err := c.complete(ctx, prompt)
			if err != nil {
				return err
			}
			out = text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)+1),
		retry.Delay(1*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var re *RetryableError
			return errors.As(err, &re)
		}),
	)
	if c.stats != nil {
		c.stats.Record(time.Since(start).Milliseconds())
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

func (c *OpenRouter) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &RetryableError{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("openrouter error: %s", apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openrouter")
	}

	return stripCodeBlock(apiResp.Choices[0].Message.Content), nil
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// Close releases idle connections.
func (c *OpenRouter) Close() {
	c.httpClient.CloseIdleConnections()
}
