package authflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialauth/pkg/idgen"
	"socialauth/pkg/logger"
)

var ErrStrategyNotFound = errors.New("authflow: strategy not found")

// Manager routes inbound interactions to registered strategies and owns
// the host-side concerns around them: state correlation, guaranteed
// cleanup, and session summaries. Strategies themselves stay stateless.
type Manager struct {
	strategies map[string]Strategy
	states     StateStore
	sessions   SessionStore
	ids        idgen.Generator
	logger     logger.Client
	stateTTL   time.Duration
	sessionTTL time.Duration
}

type ManagerOption func(*Manager)

func WithStateTTL(d time.Duration) ManagerOption {
	return func(m *Manager) { m.stateTTL = d }
}

func WithSessionTTL(d time.Duration) ManagerOption {
	return func(m *Manager) { m.sessionTTL = d }
}

func NewManager(states StateStore, sessions SessionStore, ids idgen.Generator, log logger.Client, fns ...ManagerOption) *Manager {
	m := &Manager{
		strategies: make(map[string]Strategy),
		states:     states,
		sessions:   sessions,
		ids:        ids,
		logger:     log,
		stateTTL:   10 * time.Minute,
		sessionTTL: 24 * time.Hour,
	}
	if m.logger == nil {
		m.logger = logger.Nop()
	}
	for _, fn := range fns {
		fn(m)
	}
	return m
}

func (m *Manager) Register(s Strategy) {
	m.strategies[s.Name()] = s
}

// Begin runs the request phase: persist a one-time state token and
// return the consent redirect. A caller-supplied state is forwarded
// unmodified; otherwise one is generated.
func (m *Manager) Begin(ctx context.Context, provider, scope, state string) (string, error) {
	strategy, ok := m.strategies[provider]
	if !ok {
		return "", ErrStrategyNotFound
	}

	if state == "" {
		var err error
		state, err = generateToken()
		if err != nil {
			return "", err
		}
	}
	if err := m.states.Save(ctx, state, m.stateTTL); err != nil {
		return "", fmt.Errorf("failed to save state: %w", err)
	}

	fc := NewFlowContext(m.ids.GenerateID())
	fc.Scope = scope
	fc.State = state
	defer strategy.Cleanup(fc)

	strategy.Request(fc)

	m.logger.Debug("auth flow started",
		logger.Field{Key: "flow_id", Value: fc.ID},
		logger.Field{Key: "provider", Value: provider},
	)

	return fc.AuthRedirect, nil
}

// Complete runs the callback phase end to end and guarantees exactly
// one Cleanup regardless of outcome. The returned error list is
// ordered; empty means identity and session are both set.
func (m *Manager) Complete(ctx context.Context, provider, code, state string) (*Identity, *Session, []FlowError) {
	strategy, ok := m.strategies[provider]
	if !ok {
		return nil, nil, []FlowError{configError("unknown provider: " + provider)}
	}

	if err := m.states.Consume(ctx, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, nil, []FlowError{invalidStateError()}
		}
		return nil, nil, []FlowError{transportError("state store: " + err.Error())}
	}

	fc := NewFlowContext(m.ids.GenerateID())
	fc.Code = code
	fc.State = state
	defer strategy.Cleanup(fc)

	strategy.Callback(ctx, fc)

	if fc.Identity == nil {
		errs := fc.Errors
		if len(errs) == 0 {
			errs = []FlowError{transportError("flow produced neither identity nor errors")}
		}
		m.logger.Warn("auth flow failed",
			logger.Field{Key: "flow_id", Value: fc.ID},
			logger.Field{Key: "provider", Value: provider},
			logger.Field{Key: "kind", Value: string(errs[0].Kind)},
		)
		return nil, nil, errs
	}

	session, err := m.sessions.Create(ctx, provider, fc.Identity, m.sessionTTL)
	if err != nil {
		return nil, nil, []FlowError{transportError("session store: " + err.Error())}
	}

	return fc.Identity, session, nil
}

func (m *Manager) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return m.sessions.Get(ctx, sessionID)
}

func (m *Manager) DeleteSession(ctx context.Context, sessionID string) error {
	return m.sessions.Delete(ctx, sessionID)
}
