package authflow

// Phase is the per-request progress of a single authentication flow.
// It says nothing about any long-lived process state; a fresh
// FlowContext starts at PhaseIdle for every inbound interaction.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingCallback
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingCallback:
		return "awaiting_callback"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FlowContext carries the scratch state of one flow through the three
// lifecycle hooks. It is owned by a single inbound request and must be
// discarded after Cleanup; correlation between the request and callback
// phases happens only through the state token, never through memory.
type FlowContext struct {
	ID int64

	// Inputs. Scope and State come from the inbound query; Code is
	// present only on the callback leg. RedirectURL, when set,
	// overrides the configured default for this request.
	Scope       string
	State       string
	Code        string
	RedirectURL string

	// Outputs. AuthRedirect after the request phase; the rest after a
	// successful callback phase.
	AuthRedirect string
	Token        *TokenResult
	Profile      *ProfileResult
	Identity     *Identity
	Errors       []FlowError

	phase Phase
}

func NewFlowContext(id int64) *FlowContext {
	return &FlowContext{ID: id, phase: PhaseIdle}
}

func (fc *FlowContext) Phase() Phase {
	return fc.phase
}

func (fc *FlowContext) Failed() bool {
	return fc.phase == PhaseFailed
}

func (fc *FlowContext) fail(e FlowError) {
	fc.Errors = append(fc.Errors, e)
	fc.phase = PhaseFailed
}
