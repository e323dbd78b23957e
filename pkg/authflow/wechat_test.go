package authflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface compliance check.
var _ Strategy = (*Flow)(nil)

func TestNewWeChat_Success(t *testing.T) {
	f, err := NewWeChat("app-id", "app-secret", "https://example.com/cb")
	require.NoError(t, err)
	assert.Equal(t, "wechat", f.Name())
}

func TestNewWeChat_MissingAppID(t *testing.T) {
	_, err := NewWeChat("", "app-secret", "https://example.com/cb")
	require.Error(t, err)

	var ferr FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindConfigError, ferr.Kind)
}

func TestNewWeChat_MissingSecret(t *testing.T) {
	_, err := NewWeChat("app-id", "", "https://example.com/cb")
	require.Error(t, err)
}

func TestNewWeChat_MissingRedirectURL(t *testing.T) {
	_, err := NewWeChat("app-id", "app-secret", "")
	require.Error(t, err)
}

func TestNewWeChat_UIDFieldOverride(t *testing.T) {
	f, err := NewWeChat("app-id", "app-secret", "https://example.com/cb",
		WithUIDField("unionid"))
	require.NoError(t, err)
	assert.Equal(t, "unionid", f.opts.UIDField)
}

func TestNewWeChat_UnknownUIDFieldRejected(t *testing.T) {
	_, err := NewWeChat("app-id", "app-secret", "https://example.com/cb",
		WithUIDField("email"))
	require.Error(t, err)
}

func TestNewWeChat_DefaultScopeOverride(t *testing.T) {
	f, err := NewWeChat("app-id", "app-secret", "https://example.com/cb",
		WithDefaultScope("snsapi_userinfo"))
	require.NoError(t, err)

	fc := NewFlowContext(1)
	f.Request(fc)
	assert.Contains(t, fc.AuthRedirect, "scope=snsapi_userinfo")
}
