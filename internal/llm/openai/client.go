package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"dealflow-backend/internal/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to an OpenAI-compatible chat completions endpoint. It is the
// remote backend and must only ever see unclassified content; routing
// enforces that upstream.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New constructs a remote client. rps caps outbound requests per second;
// zero or negative disables the local throttle.
func New(baseURL, apiKey, model string, rps float64) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("REMOTE_LLM_MODEL is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("REMOTE_LLM_API_KEY is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("REMOTE_LLM_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	var limiter *rate.Limiter
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}, nil
}

func (c *Client) Name() string { return "remote" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends the prompt and returns the model's text. Failures come back
// as *llm.BackendError so the retry policy can pick a backoff.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return "", c.failure(llm.KindRateLimited, errors.New("outbound request budget exhausted"))
	}

	temp := float32(0)
	reqBody := chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	}
	if !isGPT5(c.model) {
		reqBody.Temperature = &temp
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", c.failure(llm.KindMalformed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", c.failure(llm.KindUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", c.failure(llm.KindTimeout, err)
		}
		return "", c.failure(llm.KindUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.failure(llm.KindUnavailable, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if kind, ok := kindForStatus(resp.StatusCode); ok {
			return "", c.failure(kind, fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		}
		return "", c.failure(llm.KindMalformed, fmt.Errorf("response parse: %w", err))
	}
	if kind, ok := kindForStatus(resp.StatusCode); ok {
		msg := strings.TrimSpace(string(body))
		if parsed.Error != nil {
			msg = fmt.Sprintf("%s (%s)", parsed.Error.Message, parsed.Error.Type)
		}
		return "", c.failure(kind, fmt.Errorf("http status %d: %s", resp.StatusCode, msg))
	}
	if parsed.Error != nil {
		return "", c.failure(llm.KindUnavailable, fmt.Errorf("%s (%s)", parsed.Error.Message, parsed.Error.Type))
	}
	if len(parsed.Choices) == 0 {
		return "", c.failure(llm.KindMalformed, errors.New("response missing choices"))
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", c.failure(llm.KindMalformed, errors.New("response empty content"))
	}
	return content, nil
}

func (c *Client) failure(kind llm.ErrorKind, err error) error {
	return &llm.BackendError{Backend: c.Name(), Kind: kind, Err: err}
}

func kindForStatus(status int) (llm.ErrorKind, bool) {
	switch {
	case status == http.StatusTooManyRequests:
		return llm.KindRateLimited, true
	case status == http.StatusRequestTimeout:
		return llm.KindTimeout, true
	case status >= 500:
		return llm.KindUnavailable, true
	case status >= 400:
		return llm.KindMalformed, true
	}
	return "", false
}

// Newer OpenAI models reject explicit temperature settings, so we omit the
// field for them.
func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Backend = (*Client)(nil)
