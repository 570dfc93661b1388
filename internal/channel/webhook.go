package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/notify/scheduler/internal/biz/task"
	"github.com/spf13/cast"
)

// WebhookSender 通用 URL 回调
type WebhookSender struct {
	client *HTTPClient
}

func NewWebhookSender(client *HTTPClient) *WebhookSender {
	return &WebhookSender{client: client}
}

func (s *WebhookSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	cfg, err := configAs[task.URLConfig](msg.Task)
	if err != nil {
		return nil, err
	}

	method := cfg.MethodOrDefault()
	target := Render(cfg.URL, msg.Vars)
	headers := RenderHeaders(cfg.Headers, msg.Vars)
	var body map[string]any
	if cfg.Body != nil {
		body = RenderValue(cfg.Body, msg.Vars).(map[string]any)
	}

	request := map[string]any{"url": target, "method": method, "headers": headers, "body": body}

	var payload any
	if method == http.MethodGet {
		target, err = withQuery(target, body)
		if err != nil {
			return failed(request, "invalid url %q: %v", target, err), nil
		}
		request["url"] = target
	} else if body != nil {
		payload = body
	}

	resp, err := s.client.do(ctx, method, target, headers, payload)
	if err != nil {
		return failed(request, "webhook: %v", err), nil
	}
	if !resp.OK() {
		return &Result{Message: fmt.Sprintf("HTTP %d", resp.StatusCode), Data: resp.Decoded(), Request: request}, nil
	}
	return &Result{Success: true, Message: fmt.Sprintf("HTTP %d", resp.StatusCode), Data: resp.Decoded(), Request: request}, nil
}

// withQuery appends body fields to the URL query; nested values are sent as JSON.
func withQuery(target string, body map[string]any) (string, error) {
	if len(body) == 0 {
		return target, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return target, err
	}
	q := u.Query()
	for k, v := range body {
		switch v.(type) {
		case map[string]any, []any:
			data, _ := json.Marshal(v)
			q.Set(k, string(data))
		default:
			q.Set(k, cast.ToString(v))
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
