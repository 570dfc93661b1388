package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/notify/scheduler/pkg/config"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 1 << 20

// HTTPClient 所有渠道共用的出站客户端，带可选限流
type HTTPClient struct {
	client  *http.Client
	limiter *rate.Limiter
}

func NewHTTPClient(cfg config.ChannelsConfig) *HTTPClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &HTTPClient{client: &http.Client{Timeout: timeout}}
	if cfg.RatePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	}
	return c
}

type response struct {
	StatusCode int
	Body       []byte
}

func (r *response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decoded returns the body as JSON when it parses, otherwise as a string.
func (r *response) Decoded() any {
	var v any
	if err := json.Unmarshal(r.Body, &v); err == nil {
		return v
	}
	return string(r.Body)
}

func (c *HTTPClient) do(ctx context.Context, method, url string, headers map[string]string, payload any) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &response{StatusCode: resp.StatusCode, Body: data}, nil
}

// doJSON decodes a JSON response into out regardless of status code.
func (c *HTTPClient) doJSON(ctx context.Context, method, url string, payload, out any) (*response, error) {
	resp, err := c.do(ctx, method, url, nil, payload)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return resp, fmt.Errorf("unexpected response (HTTP %d): %w", resp.StatusCode, err)
	}
	return resp, nil
}
