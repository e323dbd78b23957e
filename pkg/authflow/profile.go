package authflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ProfileResult is the raw profile payload from the provider's
// user-info endpoint, owned by the in-flight request.
type ProfileResult struct {
	Fields map[string]any
}

// fetchProfile issues exactly one authenticated GET per callback; there
// is no caching of profile data across requests.
func (f *Flow) fetchProfile(ctx context.Context, token *TokenResult) (*ProfileResult, *FlowError) {
	params := url.Values{}
	params.Set(f.config.UserInfoTokenParam, token.AccessToken)
	if f.config.UserInfoSubjectParam != "" && token.SubjectID != "" {
		params.Set(f.config.UserInfoSubjectParam, token.SubjectID)
	}

	resp, err := f.transport.Do(ctx, http.MethodGet, f.config.UserInfoURL, params)
	if err != nil {
		e := transportError(err.Error())
		return nil, &e
	}

	switch {
	case resp.Status == http.StatusUnauthorized:
		// Token invalid or expired. Recoverable by re-authenticating,
		// never retried automatically.
		e := unauthorizedError("access token rejected by user-info endpoint")
		return nil, &e
	case resp.Status >= 200 && resp.Status < 400:
		var fields map[string]any
		if err := json.Unmarshal(resp.Body, &fields); err != nil {
			e := transportError("unparseable profile response: " + err.Error())
			return nil, &e
		}
		// Some providers report errors inside a 200 body here too.
		if code, ok := fields[f.config.ErrorCodeKey]; ok {
			e := providerError(profileFieldString(code), profileFieldString(fields[f.config.ErrorMessageKey]))
			return nil, &e
		}
		return &ProfileResult{Fields: fields}, nil
	default:
		e := transportError(fmt.Sprintf("user-info endpoint returned status %d", resp.Status))
		return nil, &e
	}
}
