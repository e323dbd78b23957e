package authflow

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Credentials are the token facts the host hands downstream.
type Credentials struct {
	Token        string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	Expires      bool
	Scopes       []string
}

// Extra retains the unprocessed payloads for consumers who need
// provider-specific fields the normalizer does not surface.
type Extra struct {
	RawToken   map[string]string
	RawProfile map[string]any
}

// Identity is the normalized result of a successful flow, read-only
// once produced.
type Identity struct {
	UID         string
	Info        map[string]string
	Credentials Credentials
	Extra       Extra
}

// normalize maps raw token and profile data into an Identity. Pure and
// total given valid inputs; no I/O. The uid field was validated against
// the profile schema at startup, so a profile payload missing it is a
// provider/config mismatch surfaced as config_error.
func (f *Flow) normalize(token *TokenResult, profile *ProfileResult) (*Identity, *FlowError) {
	uidValue, ok := profile.Fields[f.opts.UIDField]
	if !ok {
		e := configError(fmt.Sprintf("uid field %q not present in profile payload", f.opts.UIDField))
		return nil, &e
	}

	info := make(map[string]string, len(f.config.InfoKeys))
	for canonical, key := range f.config.InfoKeys {
		if v, present := profile.Fields[key]; present {
			info[canonical] = profileFieldString(v)
		}
	}

	return &Identity{
		UID:  profileFieldString(uidValue),
		Info: info,
		Credentials: Credentials{
			Token:        token.AccessToken,
			RefreshToken: token.RefreshToken,
			TokenType:    token.TokenType,
			ExpiresAt:    token.ExpiresAt,
			Expires:      !token.ExpiresAt.IsZero(),
			Scopes:       splitScopes(token.Raw["scope"]),
		},
		Extra: Extra{
			RawToken:   token.Raw,
			RawProfile: profile.Fields,
		},
	}, nil
}

// splitScopes splits a comma-delimited scope string. An empty string
// yields an empty slice, never [""].
func splitScopes(scope string) []string {
	if scope == "" {
		return []string{}
	}
	parts := strings.Split(scope, ",")
	scopes := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			scopes = append(scopes, trimmed)
		}
	}
	return scopes
}

func profileFieldString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
