package authflow

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAuthRedirect(t *testing.T, raw string) (*url.URL, url.Values) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u, u.Query()
}

func TestRequest_BuildsAuthorizationURL(t *testing.T) {
	f, err := NewWeChat("app-id", "app-secret", "https://example.com/auth/wechat/callback")
	require.NoError(t, err)

	fc := NewFlowContext(1)
	fc.Scope = "snsapi_userinfo"
	fc.State = "opaque-state"
	f.Request(fc)

	assert.Equal(t, PhaseAwaitingCallback, fc.Phase())

	u, query := parseAuthRedirect(t, fc.AuthRedirect)
	assert.Equal(t, "open.weixin.qq.com", u.Host)
	assert.Equal(t, "app-id", query.Get("client_id"))
	assert.Equal(t, "snsapi_userinfo", query.Get("scope"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "opaque-state", query.Get("state"))
	assert.Equal(t, "https://example.com/auth/wechat/callback", query.Get("redirect_uri"))
}

func TestRequest_DefaultScopeWhenNoneGiven(t *testing.T) {
	f, err := NewWeChat("app-id", "app-secret", "https://example.com/cb")
	require.NoError(t, err)

	fc := NewFlowContext(1)
	f.Request(fc)

	_, query := parseAuthRedirect(t, fc.AuthRedirect)
	assert.Equal(t, WeChatDefaultScope, query.Get("scope"))
}

func TestRequest_StateOmittedWhenAbsent(t *testing.T) {
	f, err := NewWeChat("app-id", "app-secret", "https://example.com/cb")
	require.NoError(t, err)

	fc := NewFlowContext(1)
	f.Request(fc)

	_, query := parseAuthRedirect(t, fc.AuthRedirect)
	_, present := query["state"]
	assert.False(t, present, "state must be omitted entirely when not supplied")
}

func TestRequest_PerRequestRedirectOverride(t *testing.T) {
	f, err := NewWeChat("app-id", "app-secret", "https://example.com/cb")
	require.NoError(t, err)

	fc := NewFlowContext(1)
	fc.RedirectURL = "https://other.example.com/cb"
	f.Request(fc)

	_, query := parseAuthRedirect(t, fc.AuthRedirect)
	assert.Equal(t, "https://other.example.com/cb", query.Get("redirect_uri"))
}

func TestRequest_AuthorizeURLWithExistingQuery(t *testing.T) {
	config := ProviderConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		AuthorizeURL: "https://provider.example.com/authorize?tenant=a",
		TokenURL:     "https://provider.example.com/token",
		UserInfoURL:  "https://provider.example.com/userinfo",
	}
	f, err := NewFlow("generic", config, FlowOptions{UIDField: "id", RedirectURL: "https://example.com/cb"})
	require.NoError(t, err)

	fc := NewFlowContext(1)
	f.Request(fc)

	_, query := parseAuthRedirect(t, fc.AuthRedirect)
	assert.Equal(t, "a", query.Get("tenant"))
	assert.Equal(t, "id", query.Get("client_id"))
}
