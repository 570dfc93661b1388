package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/notify/scheduler/internal/biz/task"
	"github.com/spf13/cast"
)

const (
	feishuTokenPath   = "/open-apis/auth/v3/tenant_access_token/internal"
	feishuMessagePath = "/open-apis/im/v1/messages?receive_id_type=user_id"
)

// FeishuSender 飞书文本消息，每次发送都重新获取 tenant_access_token
type FeishuSender struct {
	client  *HTTPClient
	baseURL string
}

func NewFeishuSender(client *HTTPClient, baseURL string) *FeishuSender {
	return &FeishuSender{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type feishuTokenResp struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
}

type feishuMessageResp struct {
	Code int            `json:"code"`
	Msg  string         `json:"msg"`
	Data map[string]any `json:"data"`
}

func (s *FeishuSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	cfg, err := configAs[task.FeishuConfig](msg.Task)
	if err != nil {
		return nil, err
	}

	text := feishuText(msg.Task.Content)
	content, _ := json.Marshal(map[string]string{"text": text})
	payload := map[string]any{
		"receive_id": cfg.UserID,
		"msg_type":   "text",
		"content":    string(content),
	}

	token, err := s.tenantToken(ctx, cfg)
	if err != nil {
		return failed(payload, "feishu token: %v", err), nil
	}

	var out feishuMessageResp
	resp, err := s.client.do(ctx, http.MethodPost, s.baseURL+feishuMessagePath,
		map[string]string{"Authorization": "Bearer " + token}, payload)
	if err != nil {
		return failed(payload, "feishu send: %v", err), nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return &Result{Message: "feishu send: unexpected response", Data: resp.Decoded(), Request: payload}, nil
	}
	if out.Code != 0 {
		return &Result{Message: out.Msg, Data: out, Request: payload}, nil
	}
	return &Result{Success: true, Message: "ok", Data: out, Request: payload}, nil
}

func (s *FeishuSender) tenantToken(ctx context.Context, cfg task.FeishuConfig) (string, error) {
	var out feishuTokenResp
	_, err := s.client.doJSON(ctx, http.MethodPost, s.baseURL+feishuTokenPath, map[string]string{
		"app_id":     cfg.AppID,
		"app_secret": cfg.AppSecret,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Code != 0 {
		return "", &remoteError{code: out.Code, msg: out.Msg}
	}
	return out.TenantAccessToken, nil
}

// feishuText joins title and text with a newline when both are present.
func feishuText(content map[string]any) string {
	title := cast.ToString(content["title"])
	text := cast.ToString(content["text"])
	switch {
	case title != "" && text != "":
		return title + "\n" + text
	case title != "":
		return title
	default:
		return text
	}
}
