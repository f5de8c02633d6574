// Package generation calls the external text generation service.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/platform/config"
)

const apiVersion = "2023-06-01"

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client is a Generator backed by a Messages-style JSON API.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	model      string
	maxTokens  int
	prompt     *PromptRenderer
}

// NewClient creates a generation client from configuration. The per-call
// deadline comes from the caller's context.
func NewClient(cfg *config.Config, prompt *PromptRenderer) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GenerationTimeout + 5*time.Second},
		url:        cfg.GenerationAPIURL,
		apiKey:     cfg.GenerationAPIKey,
		model:      cfg.GenerationModel,
		maxTokens:  cfg.GenerationMaxTokens,
		prompt:     prompt,
	}
}

var _ portssvc.Generator = (*Client)(nil)

// Generate returns the generated text. Network failures, timeouts, 429 and
// 5xx responses wrap ErrTransient; other failures wrap ErrFatal.
func (c *Client) Generate(ctx context.Context, in portssvc.GenerationInput) (string, error) {
	prompt, err := c.prompt.Render(in)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrFatal, err)
	}

	body, err := json.Marshal(messagesRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", apperrors.ErrFatal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", apperrors.ErrFatal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", apperrors.ErrTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classify(resp.StatusCode, raw)
	}

	var out messagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", apperrors.ErrFatal, err)
	}
	for _, block := range out.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: response has no text content", apperrors.ErrFatal)
}

func classify(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	var out messagesResponse
	if json.Unmarshal(body, &out) == nil && out.Error != nil {
		detail = out.Error.Type + ": " + out.Error.Message
	}

	kind := apperrors.ErrFatal
	if status == http.StatusTooManyRequests || status == http.StatusRequestTimeout || status >= 500 {
		kind = apperrors.ErrTransient
	}
	return fmt.Errorf("%w: status %d: %s", kind, status, detail)
}
