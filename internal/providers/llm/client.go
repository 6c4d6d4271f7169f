package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sandevgo/ember/internal/core"
)

// Client talks to an OpenAI-compatible server (LM Studio, Ollama,
// llama.cpp server). Raw text completion is preferred because the
// cognition loop feeds the model a single continuous prompt; servers
// that only expose the chat endpoint get the prompt as one user message.
type Client struct {
	baseClient
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseClient: newBaseClient(strings.TrimRight(baseURL, "/"), apiKey, model),
	}
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) SetModel(model string) {
	c.model = model
}

func (c *Client) Complete(ctx context.Context, prompt string, opts core.CompleteOptions) (core.Completion, error) {
	result, err := c.complete(ctx, prompt, opts)
	if err == nil {
		return result, nil
	}
	if !endpointRejected(err) {
		return core.Completion{}, err
	}
	// /v1/completions is not served here; wrap the prompt as a chat turn.
	return c.chat(ctx, prompt, opts)
}

func (c *Client) complete(ctx context.Context, prompt string, opts core.CompleteOptions) (core.Completion, error) {
	payload := map[string]any{
		"prompt":         prompt,
		"max_tokens":     opts.MaxTokens,
		"temperature":    opts.Temperature,
		"top_p":          0.9,
		"repeat_penalty": 1.15,
		"stream":         false,
	}
	if c.model != "" {
		payload["model"] = c.model
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/completions", payload)
	if err != nil {
		return core.Completion{}, err
	}
	defer resp.Body.Close()

	var result struct {
		Choices []struct {
			Text string `json:"text"`
		} `json:"choices"`
		Usage struct {
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := parseBody(resp, &result); err != nil {
		return core.Completion{}, err
	}
	if len(result.Choices) == 0 {
		return core.Completion{}, fmt.Errorf("%w: empty choices", ErrMalformed)
	}

	text := strings.TrimSpace(result.Choices[0].Text)
	if text == "" {
		return core.Completion{}, fmt.Errorf("%w: empty completion text", ErrMalformed)
	}
	return core.Completion{Text: text, Tokens: result.Usage.CompletionTokens}, nil
}

func (c *Client) chat(ctx context.Context, prompt string, opts core.CompleteOptions) (core.Completion, error) {
	payload := map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
		"top_p":       0.9,
		"stream":      false,
	}
	if c.model != "" {
		payload["model"] = c.model
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload)
	if err != nil {
		return core.Completion{}, err
	}
	defer resp.Body.Close()

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := parseBody(resp, &result); err != nil {
		return core.Completion{}, err
	}
	if len(result.Choices) == 0 {
		return core.Completion{}, fmt.Errorf("%w: empty choices", ErrMalformed)
	}

	text := strings.TrimSpace(result.Choices[0].Message.Content)
	if text == "" {
		return core.Completion{}, fmt.Errorf("%w: empty chat content", ErrMalformed)
	}
	return core.Completion{Text: text, Tokens: result.Usage.CompletionTokens}, nil
}

// Models fetches the ids the server reports. Used at startup to pick a
// model when none is configured and to verify the server is reachable.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/models", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := parseBody(resp, &result); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(result.Data))
	for _, m := range result.Data {
		models = append(models, m.ID)
	}
	return models, nil
}

func parseBody(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d: %s", ErrUnavailable, resp.StatusCode, string(data))
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusMethodNotAllowed:
		return fmt.Errorf("%w: http %d", errEndpointRejected, resp.StatusCode)
	default:
		return fmt.Errorf("%w: http %d: %s", ErrMalformed, resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrMalformed, err)
	}
	return nil
}
