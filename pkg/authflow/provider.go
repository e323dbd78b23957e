package authflow

import (
	"errors"
	"fmt"
	"net/http"
)

// TokenMethod is the HTTP method used for the token exchange. Providers
// vary; WeChat wants GET where most of the world uses POST.
type TokenMethod string

const (
	MethodGet  TokenMethod = http.MethodGet
	MethodPost TokenMethod = http.MethodPost
)

// ProviderConfig describes one OAuth2 provider's endpoints and wire
// quirks. It is immutable after NewFlow and safe to share across any
// number of concurrent flows.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string

	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string
	// RefreshURL is optional; empty means the provider has no refresh
	// endpoint and Flow.Refresh reports a config error.
	RefreshURL string

	TokenMethod TokenMethod

	// ErrorCodeKey and ErrorMessageKey name the fields a token response
	// carries when the provider reports an error instead of a token.
	// Defaults are the RFC 6749 "error"/"error_description" pair.
	ErrorCodeKey    string
	ErrorMessageKey string

	// SubjectKey names the token-response field holding the
	// provider-assigned subject id, when the provider returns one there.
	SubjectKey string

	// Query parameter names for the user-info call. An empty
	// UserInfoSubjectParam means the subject id is not sent.
	UserInfoTokenParam   string
	UserInfoSubjectParam string

	// ProfileKeys is the provider's known profile schema. When
	// non-empty, FlowOptions.UIDField is validated against it at
	// construction so a misconfigured uid field fails at startup, not
	// per request.
	ProfileKeys []string

	// InfoKeys maps canonical identity fields ("name", "image") to
	// provider profile keys. Missing profile keys yield absent fields,
	// never errors.
	InfoKeys map[string]string
}

func (c *ProviderConfig) applyDefaults() {
	if c.TokenMethod == "" {
		c.TokenMethod = MethodPost
	}
	if c.ErrorCodeKey == "" {
		c.ErrorCodeKey = "error"
	}
	if c.ErrorMessageKey == "" {
		c.ErrorMessageKey = "error_description"
	}
	if c.UserInfoTokenParam == "" {
		c.UserInfoTokenParam = "access_token"
	}
}

func (c ProviderConfig) validate() error {
	var errs []error
	if c.ClientID == "" {
		errs = append(errs, errors.New("client id is required"))
	}
	if c.ClientSecret == "" {
		errs = append(errs, errors.New("client secret is required"))
	}
	if c.AuthorizeURL == "" {
		errs = append(errs, errors.New("authorize URL is required"))
	}
	if c.TokenURL == "" {
		errs = append(errs, errors.New("token URL is required"))
	}
	if c.UserInfoURL == "" {
		errs = append(errs, errors.New("user-info URL is required"))
	}
	if c.TokenMethod != MethodGet && c.TokenMethod != MethodPost {
		errs = append(errs, fmt.Errorf("unsupported token method %q", c.TokenMethod))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// FlowOptions is the per-strategy tuning layered on top of a
// ProviderConfig: which scope to request by default, which profile
// field is the canonical identifier, and where the provider should send
// the user back.
type FlowOptions struct {
	DefaultScope string
	UIDField     string
	RedirectURL  string
}
