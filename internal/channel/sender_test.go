package channel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/notify/scheduler/internal/biz/account"
	"github.com/notify/scheduler/internal/biz/task"
	derr "github.com/notify/scheduler/internal/domain/error"
	"github.com/notify/scheduler/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captured struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   map[string]any
}

// recordingServer answers every request with the handler's JSON and keeps the requests.
func recordingServer(t *testing.T, handler func(path string) (int, any)) (*httptest.Server, *[]captured) {
	t.Helper()
	var reqs []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := captured{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Header: r.Header.Clone()}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &c.Body)
		}
		reqs = append(reqs, c)

		status, resp := handler(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func testClient() *HTTPClient {
	return NewHTTPClient(config.ChannelsConfig{HTTPTimeout: 5 * time.Second})
}

type stubCredentials map[string]*account.WechatCredential

func (s stubCredentials) WechatCredential(_ context.Context, id string) (*account.WechatCredential, error) {
	if len(s) == 0 {
		return nil, derr.ErrCredentialStoreEmpty
	}
	cred, ok := s[id]
	if !ok {
		return nil, derr.ErrAccountNotFound
	}
	return cred, nil
}

func urlTask(cfg task.URLConfig, content map[string]any) *task.NotificationTask {
	return &task.NotificationTask{ID: 1, Channel: task.ChannelURL, ChannelConfig: cfg, Content: content}
}

func TestWebhookSubstitutesPlaceholders(t *testing.T) {
	srv, reqs := recordingServer(t, func(string) (int, any) { return 200, map[string]any{"ok": true} })

	msg := &Message{
		Task: urlTask(task.URLConfig{
			URL:     srv.URL + "/x/{userId}",
			Headers: map[string]string{"X-Name": "{name}"},
			Body:    map[string]any{"m": "hi {name}", "keep": "{missing}"},
		}, nil),
		Vars: map[string]any{"userId": "1", "name": "Jo"},
	}

	res, err := NewWebhookSender(testClient()).Send(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, map[string]any{"ok": true}, res.Data)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/x/1", got.Path)
	assert.Equal(t, "Jo", got.Header.Get("X-Name"))
	assert.Equal(t, map[string]any{"m": "hi Jo", "keep": "{missing}"}, got.Body)
}

func TestWebhookGetSendsBodyAsQuery(t *testing.T) {
	srv, reqs := recordingServer(t, func(string) (int, any) { return 200, "done" })

	msg := &Message{
		Task: urlTask(task.URLConfig{URL: srv.URL + "/hook", Method: "get", Body: map[string]any{"user": "{username}", "n": 2}}, nil),
		Vars: map[string]any{"username": "jo"},
	}

	res, err := NewWebhookSender(testClient()).Send(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, res.Success)

	got := (*reqs)[0]
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Nil(t, got.Body)
	assert.Equal(t, []string{"jo"}, got.Query["user"])
	assert.Equal(t, []string{"2"}, got.Query["n"])
}

func TestWebhookNon2xxIsFailure(t *testing.T) {
	srv, _ := recordingServer(t, func(string) (int, any) { return 502, map[string]any{"error": "bad gateway"} })

	res, err := NewWebhookSender(testClient()).Send(context.Background(),
		&Message{Task: urlTask(task.URLConfig{URL: srv.URL}, nil), Vars: map[string]any{}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "HTTP 502", res.Message)
}

func TestWebhookNetworkErrorIsFailure(t *testing.T) {
	srv, _ := recordingServer(t, func(string) (int, any) { return 200, nil })
	srv.Close()

	res, err := NewWebhookSender(testClient()).Send(context.Background(),
		&Message{Task: urlTask(task.URLConfig{URL: srv.URL}, nil), Vars: map[string]any{}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
}

func feishuTask() *task.NotificationTask {
	return &task.NotificationTask{
		ID:            2,
		Channel:       task.ChannelFeishu,
		ChannelConfig: task.FeishuConfig{AppID: "cli_a", AppSecret: "sec", UserID: "ou_1"},
		Content:       map[string]any{"title": "Daily", "text": "standup at 10"},
	}
}

func TestFeishuSend(t *testing.T) {
	srv, reqs := recordingServer(t, func(path string) (int, any) {
		if path == feishuTokenPath {
			return 200, map[string]any{"code": 0, "tenant_access_token": "t-123"}
		}
		return 200, map[string]any{"code": 0, "msg": "success", "data": map[string]any{"message_id": "om_1"}}
	})

	res, err := NewFeishuSender(testClient(), srv.URL).Send(context.Background(), &Message{Task: feishuTask()})
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.Len(t, *reqs, 2)
	assert.Equal(t, map[string]any{"app_id": "cli_a", "app_secret": "sec"}, (*reqs)[0].Body)

	send := (*reqs)[1]
	assert.Equal(t, "/open-apis/im/v1/messages", send.Path)
	assert.Equal(t, []string{"user_id"}, send.Query["receive_id_type"])
	assert.Equal(t, "Bearer t-123", send.Header.Get("Authorization"))
	assert.Equal(t, "ou_1", send.Body["receive_id"])
	assert.Equal(t, "text", send.Body["msg_type"])
	assert.JSONEq(t, `{"text":"Daily\nstandup at 10"}`, send.Body["content"].(string))
}

func TestFeishuRemoteErrorIsFailure(t *testing.T) {
	srv, _ := recordingServer(t, func(path string) (int, any) {
		if path == feishuTokenPath {
			return 200, map[string]any{"code": 0, "tenant_access_token": "t-123"}
		}
		return 200, map[string]any{"code": 230001, "msg": "invalid receive_id"}
	})

	res, err := NewFeishuSender(testClient(), srv.URL).Send(context.Background(), &Message{Task: feishuTask()})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "invalid receive_id", res.Message)
}

func TestFeishuTokenFailure(t *testing.T) {
	srv, reqs := recordingServer(t, func(string) (int, any) {
		return 200, map[string]any{"code": 10003, "msg": "invalid app_secret"}
	})

	res, err := NewFeishuSender(testClient(), srv.URL).Send(context.Background(), &Message{Task: feishuTask()})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "invalid app_secret")
	assert.Len(t, *reqs, 1)
}

func TestFeishuText(t *testing.T) {
	assert.Equal(t, "a\nb", feishuText(map[string]any{"title": "a", "text": "b"}))
	assert.Equal(t, "a", feishuText(map[string]any{"title": "a"}))
	assert.Equal(t, "b", feishuText(map[string]any{"text": "b"}))
}

func wechatServer(t *testing.T, sendResp any) (*httptest.Server, *[]captured) {
	return recordingServer(t, func(path string) (int, any) {
		if path == wechatTokenPath {
			return 200, map[string]any{"access_token": "wx-token", "expires_in": 7200}
		}
		return 200, sendResp
	})
}

func TestWechatMiniStringifiesData(t *testing.T) {
	srv, reqs := wechatServer(t, map[string]any{"errcode": 0, "errmsg": "ok"})
	creds := stubCredentials{"acc": {AccountID: "acc", AppID: "wx1", AppSecret: "s1"}}

	msg := &Message{
		Task: &task.NotificationTask{
			ID:      3,
			Channel: task.ChannelWechatMini,
			ChannelConfig: task.WechatMiniConfig{
				WechatTemplate: task.WechatTemplate{
					AccountID:  "acc",
					TemplateID: "tpl",
					Data:       map[string]any{"n": 3, "pi": 1.5, "ok": true, "none": nil, "s": "x"},
				},
				Page: "pages/index",
			},
		},
		Recipient: &account.UserProfile{ID: 1, OpenID: "openid-1"},
	}

	res, err := NewWechatMiniSender(testClient(), creds, srv.URL).Send(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.Len(t, *reqs, 2)
	token := (*reqs)[0]
	assert.Equal(t, []string{"wx1"}, token.Query["appid"])
	assert.Equal(t, []string{"s1"}, token.Query["secret"])

	send := (*reqs)[1]
	assert.Equal(t, wechatSubscribePath, send.Path)
	assert.Equal(t, []string{"wx-token"}, send.Query["access_token"])
	assert.Equal(t, "openid-1", send.Body["touser"])
	assert.Equal(t, "pages/index", send.Body["page"])
	assert.Equal(t, map[string]any{
		"n":    map[string]any{"value": "3"},
		"pi":   map[string]any{"value": "1.5"},
		"ok":   map[string]any{"value": "true"},
		"none": map[string]any{"value": "null"},
		"s":    map[string]any{"value": "x"},
	}, send.Body["data"])
}

func TestWechatMpColors(t *testing.T) {
	srv, reqs := wechatServer(t, map[string]any{"errcode": 0, "errmsg": "ok", "msgid": 99})
	creds := stubCredentials{"acc": {AccountID: "acc", AppID: "wx1", AppSecret: "s1"}}

	msg := &Message{
		Task: &task.NotificationTask{
			ID:      4,
			Channel: task.ChannelWechatMp,
			ChannelConfig: task.WechatMpConfig{
				WechatTemplate: task.WechatTemplate{
					AccountID:  "acc",
					TemplateID: "tpl",
					Data: map[string]any{
						"first":  "hello",
						"amount": map[string]any{"value": 12, "color": "#FF0000"},
					},
				},
				URL: "https://example.com/detail",
			},
		},
		Recipient: &account.UserProfile{ID: 1, OpenID: "openid-1"},
	}

	res, err := NewWechatMpSender(testClient(), creds, srv.URL).Send(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, res.Success)

	send := (*reqs)[1]
	assert.Equal(t, wechatTemplatePath, send.Path)
	assert.Equal(t, "https://example.com/detail", send.Body["url"])
	assert.Equal(t, map[string]any{
		"first":  map[string]any{"value": "hello", "color": "#173177"},
		"amount": map[string]any{"value": "12", "color": "#FF0000"},
	}, send.Body["data"])
}

func TestWechatErrCodeIsFailure(t *testing.T) {
	srv, _ := wechatServer(t, map[string]any{"errcode": 43101, "errmsg": "user refuse to accept the msg"})
	creds := stubCredentials{"acc": {AccountID: "acc", AppID: "wx1", AppSecret: "s1"}}

	msg := &Message{
		Task: &task.NotificationTask{
			ID:            5,
			Channel:       task.ChannelWechatMini,
			ChannelConfig: task.WechatMiniConfig{WechatTemplate: task.WechatTemplate{AccountID: "acc", TemplateID: "tpl"}},
		},
		Recipient: &account.UserProfile{ID: 1, OpenID: "openid-1"},
	}

	res, err := NewWechatMiniSender(testClient(), creds, srv.URL).Send(context.Background(), msg)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "user refuse to accept the msg", res.Message)
}

func TestWechatConfigurationErrors(t *testing.T) {
	srv, reqs := wechatServer(t, map[string]any{"errcode": 0})
	miniTask := &task.NotificationTask{
		ID:            6,
		Channel:       task.ChannelWechatMini,
		ChannelConfig: task.WechatMiniConfig{WechatTemplate: task.WechatTemplate{AccountID: "acc", TemplateID: "tpl"}},
	}
	bound := &account.UserProfile{ID: 1, OpenID: "openid-1"}

	_, err := NewWechatMiniSender(testClient(), stubCredentials{}, srv.URL).
		Send(context.Background(), &Message{Task: miniTask, Recipient: bound})
	assert.True(t, errors.Is(err, derr.ErrCredentialStoreEmpty))

	creds := stubCredentials{"other": {AccountID: "other", AppID: "wx2"}}
	_, err = NewWechatMiniSender(testClient(), creds, srv.URL).
		Send(context.Background(), &Message{Task: miniTask, Recipient: bound})
	assert.True(t, errors.Is(err, derr.ErrAccountNotFound))

	creds = stubCredentials{"acc": {AccountID: "acc", AppID: "wx1"}}
	_, err = NewWechatMiniSender(testClient(), creds, srv.URL).
		Send(context.Background(), &Message{Task: miniTask, Recipient: &account.UserProfile{ID: 1}})
	assert.True(t, errors.Is(err, derr.ErrRecipientNotBound))

	assert.Empty(t, *reqs)
}

func TestDispatcherRoutesByChannel(t *testing.T) {
	srv, reqs := recordingServer(t, func(string) (int, any) { return 200, map[string]any{} })
	d := NewDispatcher(testClient(), stubCredentials{}, config.ChannelsConfig{}, zap.NewNop())

	user := &account.UserProfile{ID: 9, Username: "jo"}
	msg := NewMessage(urlTask(task.URLConfig{URL: srv.URL + "/u/{userId}/{username}"}, map[string]any{"username": "content"}), user)

	res, err := d.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "/u/9/content", (*reqs)[0].Path)

	_, err = d.Send(context.Background(), &Message{Task: &task.NotificationTask{Channel: "sms"}})
	assert.True(t, derr.IsValidation(err))

	mismatched := &task.NotificationTask{Channel: task.ChannelFeishu, ChannelConfig: task.URLConfig{URL: "https://x"}}
	_, err = d.Send(context.Background(), &Message{Task: mismatched})
	assert.True(t, derr.IsValidation(err))
}
