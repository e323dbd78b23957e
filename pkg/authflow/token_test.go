package authflow

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCall struct {
	method string
	rawURL string
	params url.Values
}

// stubTransport records every call and answers from a handler func.
type stubTransport struct {
	mu      sync.Mutex
	calls   []stubCall
	handler func(method, rawURL string, params url.Values) (*Response, error)
}

func (s *stubTransport) Do(_ context.Context, method, rawURL string, params url.Values) (*Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, stubCall{method: method, rawURL: rawURL, params: params})
	s.mu.Unlock()
	return s.handler(method, rawURL, params)
}

func (s *stubTransport) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func jsonResponse(status int, body string) (*Response, error) {
	return &Response{Status: status, Body: []byte(body)}, nil
}

func wechatFlow(t *testing.T, transport Transport) *Flow {
	t.Helper()
	f, err := NewWeChat("app-id", "app-secret", "https://example.com/cb", WithTransport(transport))
	require.NoError(t, err)
	return f
}

func TestExchange_Success(t *testing.T) {
	transport := &stubTransport{handler: func(method, rawURL string, params url.Values) (*Response, error) {
		assert.Equal(t, http.MethodGet, method)
		assert.Equal(t, wechatTokenURL, rawURL)
		assert.Equal(t, "the-code", params.Get("code"))
		assert.Equal(t, "authorization_code", params.Get("grant_type"))
		assert.Equal(t, "app-id", params.Get("client_id"))
		assert.Equal(t, "app-secret", params.Get("client_secret"))
		return jsonResponse(200, `{"access_token":"T","refresh_token":"R","openid":"O","scope":"a,b,c","expires_in":7200}`)
	}}
	f := wechatFlow(t, transport)

	fc := NewFlowContext(1)
	fc.Code = "the-code"
	token, ferr := f.exchangeCode(context.Background(), fc)
	require.Nil(t, ferr)

	assert.Equal(t, "T", token.AccessToken)
	assert.Equal(t, "R", token.RefreshToken)
	assert.Equal(t, "O", token.SubjectID)
	assert.False(t, token.ExpiresAt.IsZero())
	assert.Equal(t, "a,b,c", token.Raw["scope"])
}

func TestExchange_ProviderError(t *testing.T) {
	transport := &stubTransport{handler: func(_, _ string, _ url.Values) (*Response, error) {
		return jsonResponse(200, `{"errcode":40029,"errmsg":"invalid code"}`)
	}}
	f := wechatFlow(t, transport)

	fc := NewFlowContext(1)
	fc.Code = "bad-code"
	token, ferr := f.exchangeCode(context.Background(), fc)

	assert.Nil(t, token)
	require.NotNil(t, ferr)
	assert.Equal(t, KindProviderError, ferr.Kind)
	assert.Equal(t, "40029", ferr.Code)
	assert.Equal(t, "invalid code", ferr.Message)
}

func TestExchange_TransportFailure(t *testing.T) {
	transport := &stubTransport{handler: func(_, _ string, _ url.Values) (*Response, error) {
		return nil, assert.AnError
	}}
	f := wechatFlow(t, transport)

	fc := NewFlowContext(1)
	fc.Code = "the-code"
	_, ferr := f.exchangeCode(context.Background(), fc)

	require.NotNil(t, ferr)
	assert.Equal(t, KindTransport, ferr.Kind)
}

func TestExchange_NoAccessTokenNoErrorField(t *testing.T) {
	transport := &stubTransport{handler: func(_, _ string, _ url.Values) (*Response, error) {
		return jsonResponse(200, `{"something":"else"}`)
	}}
	f := wechatFlow(t, transport)

	fc := NewFlowContext(1)
	fc.Code = "the-code"
	_, ferr := f.exchangeCode(context.Background(), fc)

	require.NotNil(t, ferr)
	assert.Equal(t, KindProviderError, ferr.Kind)
}

func TestExchange_FormEncodedResponse(t *testing.T) {
	config := ProviderConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		AuthorizeURL: "https://p.example.com/authorize",
		TokenURL:     "https://p.example.com/token",
		UserInfoURL:  "https://p.example.com/userinfo",
		TokenMethod:  MethodPost,
	}
	transport := &stubTransport{handler: func(method, _ string, _ url.Values) (*Response, error) {
		assert.Equal(t, http.MethodPost, method)
		return jsonResponse(200, `access_token=T&token_type=bearer&scope=a`)
	}}
	f, err := NewFlow("generic", config, FlowOptions{UIDField: "id", RedirectURL: "https://example.com/cb"}, WithTransport(transport))
	require.NoError(t, err)

	fc := NewFlowContext(1)
	fc.Code = "c"
	token, ferr := f.exchangeCode(context.Background(), fc)
	require.Nil(t, ferr)
	assert.Equal(t, "T", token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
}

func TestExchange_StandardErrorFields(t *testing.T) {
	config := ProviderConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		AuthorizeURL: "https://p.example.com/authorize",
		TokenURL:     "https://p.example.com/token",
		UserInfoURL:  "https://p.example.com/userinfo",
	}
	transport := &stubTransport{handler: func(_, _ string, _ url.Values) (*Response, error) {
		return jsonResponse(400, `{"error":"invalid_grant","error_description":"code expired"}`)
	}}
	f, err := NewFlow("generic", config, FlowOptions{UIDField: "id", RedirectURL: "https://example.com/cb"}, WithTransport(transport))
	require.NoError(t, err)

	fc := NewFlowContext(1)
	fc.Code = "c"
	_, ferr := f.exchangeCode(context.Background(), fc)
	require.NotNil(t, ferr)
	assert.Equal(t, KindProviderError, ferr.Kind)
	assert.Equal(t, "invalid_grant", ferr.Code)
	assert.Equal(t, "code expired", ferr.Message)
}

func TestRefresh_Success(t *testing.T) {
	transport := &stubTransport{handler: func(method, rawURL string, params url.Values) (*Response, error) {
		assert.Equal(t, wechatRefreshURL, rawURL)
		assert.Equal(t, "refresh_token", params.Get("grant_type"))
		assert.Equal(t, "R", params.Get("refresh_token"))
		return jsonResponse(200, `{"access_token":"T2","refresh_token":"R2","openid":"O","expires_in":7200}`)
	}}
	f := wechatFlow(t, transport)

	token, ferr := f.Refresh(context.Background(), "R")
	require.Nil(t, ferr)
	assert.Equal(t, "T2", token.AccessToken)
	assert.Equal(t, "R2", token.RefreshToken)
}

func TestRefresh_NoRefreshEndpoint(t *testing.T) {
	config := ProviderConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		AuthorizeURL: "https://p.example.com/authorize",
		TokenURL:     "https://p.example.com/token",
		UserInfoURL:  "https://p.example.com/userinfo",
	}
	f, err := NewFlow("generic", config, FlowOptions{UIDField: "id", RedirectURL: "https://example.com/cb"})
	require.NoError(t, err)

	_, ferr := f.Refresh(context.Background(), "R")
	require.NotNil(t, ferr)
	assert.Equal(t, KindConfigError, ferr.Kind)
}
