package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// TokenResult is the parsed outcome of a token exchange. Raw keeps
// every response field for consumers who need provider-specific data.
type TokenResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	SubjectID    string
	ExpiresAt    time.Time
	Raw          map[string]string
}

func (f *Flow) exchangeCode(ctx context.Context, fc *FlowContext) (*TokenResult, *FlowError) {
	params := url.Values{}
	params.Set("client_id", f.config.ClientID)
	params.Set("client_secret", f.config.ClientSecret)
	params.Set("code", fc.Code)
	params.Set("grant_type", "authorization_code")
	params.Set("redirect_uri", f.redirectURI(fc))

	return f.requestToken(ctx, f.config.TokenURL, params)
}

// Refresh exchanges a refresh token for a fresh access token. This is a
// single on-demand call; scheduling, if any, belongs to the caller.
func (f *Flow) Refresh(ctx context.Context, refreshToken string) (*TokenResult, *FlowError) {
	if f.config.RefreshURL == "" {
		e := configError("provider has no refresh endpoint")
		return nil, &e
	}

	params := url.Values{}
	params.Set("client_id", f.config.ClientID)
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", refreshToken)

	return f.requestToken(ctx, f.config.RefreshURL, params)
}

// requestToken performs one exchange against a token-shaped endpoint
// and maps the response. A provider-reported error (an error field in a
// body that otherwise parses fine, often with HTTP 200) is an expected,
// recoverable outcome, not an exceptional one. No retries here.
func (f *Flow) requestToken(ctx context.Context, endpoint string, params url.Values) (*TokenResult, *FlowError) {
	resp, err := f.transport.Do(ctx, string(f.config.TokenMethod), endpoint, params)
	if err != nil {
		e := transportError(err.Error())
		return nil, &e
	}

	raw, err := parseTokenBody(resp.Body)
	if err != nil {
		e := transportError("unparseable token response: " + err.Error())
		return nil, &e
	}

	if code, ok := raw[f.config.ErrorCodeKey]; ok && code != "" && code != "0" {
		e := providerError(code, raw[f.config.ErrorMessageKey])
		return nil, &e
	}

	token := &TokenResult{
		AccessToken:  raw["access_token"],
		RefreshToken: raw["refresh_token"],
		TokenType:    raw["token_type"],
		SubjectID:    raw[f.config.SubjectKey],
		Raw:          raw,
	}
	if token.AccessToken == "" {
		e := providerError("", "token endpoint returned no access token")
		return nil, &e
	}
	if secs := raw["expires_in"]; secs != "" {
		if n, convErr := strconv.ParseInt(secs, 10, 64); convErr == nil {
			token.ExpiresAt = time.Now().Add(time.Duration(n) * time.Second)
		}
	}

	return token, nil
}

// parseTokenBody decodes a token response into a flat string map. JSON
// bodies are the norm; some providers still answer form-encoded.
func parseTokenBody(body []byte) (map[string]string, error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var decoded map[string]any
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&decoded); err != nil {
			return nil, err
		}
		raw := make(map[string]string, len(decoded))
		for k, v := range decoded {
			raw[k] = tokenFieldString(v)
		}
		return raw, nil
	}

	values, err := url.ParseQuery(string(trimmed))
	if err != nil {
		return nil, err
	}
	raw := make(map[string]string, len(values))
	for k := range values {
		raw[k] = values.Get(k)
	}
	return raw, nil
}

func tokenFieldString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
