package authflow

import (
	"net/url"
)

// buildAuthorizationURL composes the consent-screen URL. Scope falls
// back to the configured default when the request names none; state is
// forwarded unmodified and omitted entirely when absent.
func (f *Flow) buildAuthorizationURL(fc *FlowContext) string {
	scope := fc.Scope
	if scope == "" {
		scope = f.opts.DefaultScope
	}

	params := url.Values{}
	params.Set("client_id", f.config.ClientID)
	params.Set("redirect_uri", f.redirectURI(fc))
	params.Set("scope", scope)
	params.Set("response_type", "code")
	if fc.State != "" {
		params.Set("state", fc.State)
	}

	return appendQuery(f.config.AuthorizeURL, params)
}
