package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dealflow-backend/internal/llm"
)

// Client talks to a local Ollama server. It is the only backend allowed to
// see classified content.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// New constructs a local client.
func New(baseURL, model string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("LOCAL_LLM_BASE_URL is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LOCAL_LLM_MODEL is required")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
	}, nil
}

func (c *Client) Name() string { return "local" }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Complete sends the prompt as a single non-streaming generate call.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{NumPredict: maxTokens},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", c.failure(llm.KindMalformed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", c.failure(llm.KindUnavailable, err)
	}
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

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 500 {
			return "", c.failure(llm.KindUnavailable, fmt.Errorf("http status %d", resp.StatusCode))
		}
		return "", c.failure(llm.KindMalformed, fmt.Errorf("response parse: %w", err))
	}
	if parsed.Error != "" {
		kind := llm.KindUnavailable
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			kind = llm.KindMalformed
		}
		return "", c.failure(kind, errors.New(parsed.Error))
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.failure(llm.KindUnavailable, fmt.Errorf("http status %d", resp.StatusCode))
	}

	content := strings.TrimSpace(parsed.Response)
	if content == "" {
		return "", c.failure(llm.KindMalformed, errors.New("response empty content"))
	}
	return content, nil
}

// Ping checks server reachability via the lightweight tags endpoint. It is
// used by the readiness probe, not by the pipeline.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("local backend status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) failure(kind llm.ErrorKind, err error) error {
	return &llm.BackendError{Backend: c.Name(), Kind: kind, Err: err}
}

var _ llm.Backend = (*Client)(nil)
