package session

// State identifies the phase of the event lifecycle the client is in.
type State int

const (
	// StateLoading means identity resolution is still pending.
	StateLoading State = iota

	// StateCreateForm means no event is selected; the user can create one.
	StateCreateForm

	// StateJoinForm means an event is loaded but the user is not registered
	// on it yet.
	StateJoinForm

	// StateActive means the user is registered and sees the room view.
	StateActive
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateCreateForm:
		return "create-form"
	case StateJoinForm:
		return "join-form"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Snapshot captures the facts the current phase is derived from: whether
// identity resolution finished, whether an event id token is present, whether
// the event document loaded, and whether the user is registered on it.
type Snapshot struct {
	IdentityResolved bool
	EventID          string
	EventLoaded      bool
	Registered       bool
}

// Next is the pure transition function from a snapshot to the phase it
// implies. Keeping it free of I/O makes every lifecycle transition testable
// without a store.
func Next(s Snapshot) State {
	switch {
	case !s.IdentityResolved:
		return StateLoading
	case s.EventID == "" || !s.EventLoaded:
		return StateCreateForm
	case !s.Registered:
		return StateJoinForm
	default:
		return StateActive
	}
}
