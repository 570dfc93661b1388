package channel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/notify/scheduler/internal/biz/account"
	"github.com/notify/scheduler/internal/biz/task"
	derr "github.com/notify/scheduler/internal/domain/error"
	"github.com/spf13/cast"
)

const (
	wechatTokenPath      = "/cgi-bin/token"
	wechatSubscribePath  = "/cgi-bin/message/subscribe/send"
	wechatTemplatePath   = "/cgi-bin/message/template/send"
	defaultTemplateColor = "#173177"
)

type wechatTokenResp struct {
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type wechatSendResp struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
	MsgID   int64  `json:"msgid,omitempty"`
}

// wechatClient 小程序订阅消息和公众号模板消息共用的调用流程
type wechatClient struct {
	client      *HTTPClient
	credentials CredentialLookup
	baseURL     string
}

// resolve looks up the account credential and the recipient openid; both
// failures are configuration errors.
func (c *wechatClient) resolve(ctx context.Context, tpl task.WechatTemplate, recipient *account.UserProfile) (*account.WechatCredential, string, error) {
	cred, err := c.credentials.WechatCredential(ctx, tpl.AccountID)
	if err != nil {
		return nil, "", err
	}
	if recipient == nil || recipient.OpenID == "" {
		return nil, "", derr.ErrRecipientNotBound
	}
	return cred, recipient.OpenID, nil
}

func (c *wechatClient) accessToken(ctx context.Context, cred *account.WechatCredential) (string, error) {
	q := url.Values{}
	q.Set("grant_type", "client_credential")
	q.Set("appid", cred.AppID)
	q.Set("secret", cred.AppSecret)

	var out wechatTokenResp
	if _, err := c.client.doJSON(ctx, http.MethodGet, c.baseURL+wechatTokenPath+"?"+q.Encode(), nil, &out); err != nil {
		return "", err
	}
	if out.ErrCode != 0 || out.AccessToken == "" {
		return "", &remoteError{code: out.ErrCode, msg: out.ErrMsg}
	}
	return out.AccessToken, nil
}

func (c *wechatClient) post(ctx context.Context, cred *account.WechatCredential, path string, payload map[string]any) *Result {
	token, err := c.accessToken(ctx, cred)
	if err != nil {
		return failed(payload, "wechat token: %v", err)
	}

	var out wechatSendResp
	resp, err := c.client.doJSON(ctx, http.MethodPost, c.baseURL+path+"?access_token="+url.QueryEscape(token), payload, &out)
	if err != nil {
		if resp != nil {
			return &Result{Message: err.Error(), Data: resp.Decoded(), Request: payload}
		}
		return failed(payload, "wechat send: %v", err)
	}
	if out.ErrCode != 0 {
		return &Result{Message: out.ErrMsg, Data: out, Request: payload}
	}
	return &Result{Success: true, Message: "ok", Data: out, Request: payload}
}

type WechatMiniSender struct {
	wechatClient
}

func NewWechatMiniSender(client *HTTPClient, credentials CredentialLookup, baseURL string) *WechatMiniSender {
	return &WechatMiniSender{wechatClient{client: client, credentials: credentials, baseURL: strings.TrimRight(baseURL, "/")}}
}

func (s *WechatMiniSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	cfg, err := configAs[task.WechatMiniConfig](msg.Task)
	if err != nil {
		return nil, err
	}
	cred, openID, err := s.resolve(ctx, cfg.WechatTemplate, msg.Recipient)
	if err != nil {
		return nil, fmt.Errorf("wechat mini task %d: %w", msg.Task.ID, err)
	}

	payload := map[string]any{
		"touser":      openID,
		"template_id": cfg.TemplateID,
		"data":        MiniProgramData(cfg.Data),
	}
	if cfg.Page != "" {
		payload["page"] = cfg.Page
	}
	return s.post(ctx, cred, wechatSubscribePath, payload), nil
}

type WechatMpSender struct {
	wechatClient
}

func NewWechatMpSender(client *HTTPClient, credentials CredentialLookup, baseURL string) *WechatMpSender {
	return &WechatMpSender{wechatClient{client: client, credentials: credentials, baseURL: strings.TrimRight(baseURL, "/")}}
}

func (s *WechatMpSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	cfg, err := configAs[task.WechatMpConfig](msg.Task)
	if err != nil {
		return nil, err
	}
	cred, openID, err := s.resolve(ctx, cfg.WechatTemplate, msg.Recipient)
	if err != nil {
		return nil, fmt.Errorf("wechat mp task %d: %w", msg.Task.ID, err)
	}

	payload := map[string]any{
		"touser":      openID,
		"template_id": cfg.TemplateID,
		"data":        OfficialAccountData(cfg.Data),
	}
	if cfg.URL != "" {
		payload["url"] = cfg.URL
	}
	return s.post(ctx, cred, wechatTemplatePath, payload), nil
}

type templateValue struct {
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

// MiniProgramData wraps every field as {value: "<string>"}. A field that is
// already {value: ...} keeps its value.
func MiniProgramData(data map[string]any) map[string]templateValue {
	out := make(map[string]templateValue, len(data))
	for k, v := range data {
		value, _ := splitField(v)
		out[k] = templateValue{Value: value}
	}
	return out
}

// OfficialAccountData is MiniProgramData plus a color, defaulting to #173177.
func OfficialAccountData(data map[string]any) map[string]templateValue {
	out := make(map[string]templateValue, len(data))
	for k, v := range data {
		value, color := splitField(v)
		if color == "" {
			color = defaultTemplateColor
		}
		out[k] = templateValue{Value: value, Color: color}
	}
	return out
}

func splitField(v any) (value, color string) {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["value"]; ok {
			return stringify(inner), cast.ToString(m["color"])
		}
	}
	return stringify(v), ""
}

// stringify 与 JSON 保持一致，null 发送为 "null"
func stringify(v any) string {
	if v == nil {
		return "null"
	}
	return cast.ToString(v)
}
