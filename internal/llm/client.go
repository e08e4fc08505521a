package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Client submits completions to the Manager's queue at one priority.
type Client struct {
	manager  *Manager
	priority Priority
	timeout  time.Duration

	model   string
	url     string
	apiKey  string
	limiter *rate.Limiter
}

// NewClient creates a client bound to one OpenAI-compatible endpoint.
func NewClient(manager *Manager, priority Priority, cfg *Config) *Client {
	timeout := cfg.CriticalTimeout
	if priority == PriorityBackground {
		timeout = cfg.BackgroundTimeout
	}
	c := &Client{
		manager:  manager,
		priority: priority,
		timeout:  timeout,
		model:    cfg.Model,
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// Call submits a non-streaming request and returns the response body.
func (c *Client) Call(ctx context.Context, payload map[string]interface{}) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	respCh := make(chan *Response, 1)
	errCh := make(chan error, 1)

	req := &Request{
		ID:         fmt.Sprintf("%s_%s", c.priority, uuid.NewString()),
		Priority:   c.priority,
		Context:    ctx,
		URL:        c.url,
		APIKey:     c.apiKey,
		Payload:    payload,
		ResponseCh: respCh,
		ErrorCh:    errCh,
		SubmitTime: time.Now(),
		Timeout:    c.timeout,
	}

	if err := c.manager.Submit(req); err != nil {
		return nil, fmt.Errorf("failed to submit: %w", err)
	}

	select {
	case resp := <-respCh:
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("completion service returned status %d: %s", resp.StatusCode, truncate(string(resp.Body), 200))
		}
		return resp.Body, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Complete sends one system preamble and one user turn and returns the
// first choice's text. An empty choice list yields "".
func (c *Client) Complete(ctx context.Context, systemPreamble, userText string) (string, error) {
	payload := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPreamble},
			{"role": "user", "content": userText},
		},
		"stream": false,
	}

	body, err := c.Call(ctx, payload)
	if err != nil {
		return "", err
	}

	var out chatCompletion
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode completion: %w", err)
	}
	if out.Error != nil && out.Error.Message != "" {
		return "", fmt.Errorf("completion error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
