// Package authflow implements a provider-agnostic OAuth2
// authorization-code flow: build the consent redirect, exchange the
// callback code for a token, fetch the profile, and normalize the
// result into one identity shape. Provider quirks (token exchange
// method, error field names, profile schema) live entirely in
// ProviderConfig so a new provider is a constructor, not a fork.
package authflow

import (
	"context"
	"net/http"
	"strings"

	"socialauth/pkg/logger"
)

// Strategy is the lifecycle contract a host drives: one Request or
// Callback per inbound interaction, always followed by exactly one
// Cleanup. Implementations must hold no mutable state of their own so
// concurrent flows never interfere.
type Strategy interface {
	Name() string
	Request(fc *FlowContext)
	Callback(ctx context.Context, fc *FlowContext)
	Cleanup(fc *FlowContext)
}

// Flow is the generic Strategy implementation. All per-request state
// lives on the FlowContext; a Flow itself is read-only after NewFlow.
type Flow struct {
	name      string
	config    ProviderConfig
	opts      FlowOptions
	transport Transport
	logger    logger.Client
}

type Option func(*Flow)

func WithTransport(t Transport) Option {
	return func(f *Flow) { f.transport = t }
}

func WithHTTPClient(client *http.Client) Option {
	return func(f *Flow) { f.transport = NewHTTPTransport(client) }
}

func WithLogger(l logger.Client) Option {
	return func(f *Flow) { f.logger = l }
}

func WithDefaultScope(scope string) Option {
	return func(f *Flow) { f.opts.DefaultScope = scope }
}

// WithUIDField overrides which profile field is the canonical
// identifier. The field is validated against the provider's known
// profile schema.
func WithUIDField(field string) Option {
	return func(f *Flow) { f.opts.UIDField = field }
}

func NewFlow(name string, config ProviderConfig, opts FlowOptions, fns ...Option) (*Flow, error) {
	config.applyDefaults()

	f := &Flow{
		name:      name,
		config:    config,
		opts:      opts,
		transport: NewHTTPTransport(nil),
		logger:    logger.Nop(),
	}
	for _, fn := range fns {
		fn(f)
	}

	if err := f.config.validate(); err != nil {
		return nil, configError(err.Error())
	}
	if f.opts.RedirectURL == "" {
		return nil, configError("redirect URL is required")
	}
	if f.opts.UIDField == "" {
		return nil, configError("uid field is required")
	}
	if len(f.config.ProfileKeys) > 0 && !containsKey(f.config.ProfileKeys, f.opts.UIDField) {
		return nil, configError("uid field " + f.opts.UIDField + " is not part of the provider profile schema")
	}

	return f, nil
}

func (f *Flow) Name() string {
	return f.name
}

// Request emits the redirect instruction for the consent screen. Pure
// construction; no network call happens in this phase.
func (f *Flow) Request(fc *FlowContext) {
	fc.AuthRedirect = f.buildAuthorizationURL(fc)
	fc.phase = PhaseAwaitingCallback
	f.logger.Debug("authorization redirect built",
		logger.Field{Key: "flow_id", Value: fc.ID},
		logger.Field{Key: "provider", Value: f.name},
	)
}

// Callback runs exchange, profile fetch, and normalization in order,
// short-circuiting to PhaseFailed on the first error. A missing code
// fails immediately without touching the network.
func (f *Flow) Callback(ctx context.Context, fc *FlowContext) {
	if fc.phase == PhaseIdle {
		// Callback may arrive on a different process than Request;
		// state correlation already happened upstream.
		fc.phase = PhaseAwaitingCallback
	}

	if strings.TrimSpace(fc.Code) == "" {
		fc.fail(missingCodeError())
		return
	}

	token, ferr := f.exchangeCode(ctx, fc)
	if ferr != nil {
		f.logFailure(fc, "token exchange failed", *ferr)
		fc.fail(*ferr)
		return
	}
	fc.Token = token

	profile, ferr := f.fetchProfile(ctx, token)
	if ferr != nil {
		f.logFailure(fc, "profile fetch failed", *ferr)
		fc.fail(*ferr)
		return
	}
	fc.Profile = profile

	identity, ferr := f.normalize(token, profile)
	if ferr != nil {
		f.logFailure(fc, "normalization failed", *ferr)
		fc.fail(*ferr)
		return
	}
	fc.Identity = identity
	fc.phase = PhaseSucceeded

	f.logger.Info("authentication succeeded",
		logger.Field{Key: "flow_id", Value: fc.ID},
		logger.Field{Key: "provider", Value: f.name},
		logger.Field{Key: "uid", Value: identity.UID},
	)
}

// Cleanup discards token and profile scratch state and resets the
// phase. The identity, once produced, stays readable for the host.
func (f *Flow) Cleanup(fc *FlowContext) {
	fc.Token = nil
	fc.Profile = nil
	fc.phase = PhaseIdle
}

func (f *Flow) logFailure(fc *FlowContext, msg string, ferr FlowError) {
	f.logger.Warn(msg,
		logger.Field{Key: "flow_id", Value: fc.ID},
		logger.Field{Key: "provider", Value: f.name},
		logger.Field{Key: "kind", Value: string(ferr.Kind)},
		logger.Field{Key: "code", Value: ferr.Code},
	)
}

func (f *Flow) redirectURI(fc *FlowContext) string {
	if fc.RedirectURL != "" {
		return fc.RedirectURL
	}
	return f.opts.RedirectURL
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
