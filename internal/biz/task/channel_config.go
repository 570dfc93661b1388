package task

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	derr "github.com/notify/scheduler/internal/domain/error"
)

// ChannelConfig is the transport configuration variant selected by Channel.
type ChannelConfig interface {
	Channel() Channel
	Validate() error
}

type FeishuConfig struct {
	AppID     string `json:"appId"`
	AppSecret string `json:"appSecret"`
	UserID    string `json:"userId"`
}

// WechatTemplate is shared by the mini program and official account variants.
// AccountID resolves to {appId, appSecret} through the credential lookup.
type WechatTemplate struct {
	AccountID  string         `json:"accountId"`
	TemplateID string         `json:"templateId"`
	Data       map[string]any `json:"data"`
}

type WechatMiniConfig struct {
	WechatTemplate
	Page string `json:"page,omitempty"`
}

type WechatMpConfig struct {
	WechatTemplate
	URL string `json:"url,omitempty"`
}

type URLConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    map[string]any    `json:"body,omitempty"`
}

func (FeishuConfig) Channel() Channel     { return ChannelFeishu }
func (WechatMiniConfig) Channel() Channel { return ChannelWechatMini }
func (WechatMpConfig) Channel() Channel   { return ChannelWechatMp }
func (URLConfig) Channel() Channel        { return ChannelURL }

func (c FeishuConfig) Validate() error {
	if c.AppID == "" || c.AppSecret == "" || c.UserID == "" {
		return derr.Validation("feishu config requires appId, appSecret and userId")
	}
	return nil
}

func (c WechatTemplate) Validate() error {
	if c.AccountID == "" || c.TemplateID == "" {
		return derr.Validation("wechat config requires accountId and templateId")
	}
	return nil
}

func (c URLConfig) Validate() error {
	u, err := url.Parse(c.URL)
	if c.URL == "" || err != nil {
		return derr.Validation(fmt.Sprintf("url config has invalid url %q", c.URL))
	}
	// placeholders may stand in for the host, so only explicit foreign schemes are rejected
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return derr.Validation(fmt.Sprintf("url scheme %q is not supported", u.Scheme))
	}
	return nil
}

// MethodOrDefault returns the upper-cased HTTP method, POST when unset.
func (c URLConfig) MethodOrDefault() string {
	if c.Method == "" {
		return "POST"
	}
	return strings.ToUpper(c.Method)
}

// DecodeChannelConfig unmarshals a persisted or submitted config into the variant for ch.
func DecodeChannelConfig(ch Channel, raw []byte) (ChannelConfig, error) {
	var (
		cfg ChannelConfig
		err error
	)
	switch ch {
	case ChannelFeishu:
		var c FeishuConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	case ChannelWechatMini:
		var c WechatMiniConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	case ChannelWechatMp:
		var c WechatMpConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	case ChannelURL:
		var c URLConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	default:
		return nil, derr.Validation(fmt.Sprintf("unknown channel %q", ch))
	}
	if err != nil {
		return nil, derr.NewBusinessError(derr.CodeValidation, fmt.Sprintf("decode %s channel config", ch), err)
	}
	return cfg, nil
}
