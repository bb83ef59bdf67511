package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/example/breakout-rooms/internal/event"
	"github.com/example/breakout-rooms/internal/identity"
	"github.com/example/breakout-rooms/internal/membership"
)

// Error codes surfaced through CurrentView for the presentation layer to map
// to user-visible messages. Every condition here is recoverable by
// re-attempting the triggering action.
const (
	ErrCodeAuthFailed       = "anonymous-auth-failed"
	ErrCodeEventNotFound    = "event-not-found"
	ErrCodeEventGetFail     = "event-get-fail"
	ErrCodeEventNameMissing = "event-name-required"
	ErrCodeUserNameMissing  = "user-name-required"
	ErrCodePasswordMissing  = "event-password-required"
	ErrCodeCreateFailed     = "create-event-failed"
	ErrCodeWrongPassword    = "wrong-password"
	ErrCodeAssignFailed     = "assignment-failed"
)

// Engine captures the membership operations the session drives.
type Engine interface {
	CreateEvent(ctx context.Context, params membership.CreateEventParams) (event.Event, error)
	GetEvent(ctx context.Context, eventID string) (event.Event, error)
	CheckMembership(ev event.Event, userID string) membership.Registration
	Join(ctx context.Context, params membership.JoinParams) (event.Event, error)
	Reassign(ctx context.Context, params membership.ReassignParams) (event.Event, error)
}

// View is the read-only projection the presentation layer renders from.
type View struct {
	Phase     State
	ErrorCode string
	EventID   string
	UserID    string
	Event     *event.Event
	User      *event.User
	Roster    map[string][]string
}

// Session drives one client's walk through the event lifecycle: resolve
// identity, resolve the shared event id token, and hand mutations from the
// presentation layer into the membership engine. Operations compose
// sequentially; the mutex only guards against callers that ignore the
// single-goroutine model.
type Session struct {
	mu       sync.Mutex
	provider identity.Provider
	engine   Engine
	logger   *slog.Logger

	identityResolved bool
	creating         bool
	userID           string
	eventID          string
	errorCode        string
	ev               *event.Event
	user             *event.User
}

// New constructs a session in StateLoading.
func New(provider identity.Provider, engine Engine, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{provider: provider, engine: engine, logger: logger}
}

// Start resolves identity and, when an event id token is present (a shared
// link or a reload), resolves the event and the user's membership on it.
func (s *Session) Start(ctx context.Context, eventID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.provider.Authenticate(ctx)
	s.identityResolved = true
	if err != nil {
		s.logger.ErrorContext(ctx, "identity resolution failed", "error", err)
		s.errorCode = ErrCodeAuthFailed
		return s.stateLocked()
	}
	s.userID = userID
	s.eventID = eventID
	s.resolveLocked(ctx)
	return s.stateLocked()
}

// SetEventID swaps the shared event id token (a different link pasted in) and
// re-derives the session from it.
func (s *Session) SetEventID(ctx context.Context, eventID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eventID = eventID
	s.errorCode = ""
	s.resolveLocked(ctx)
	return s.stateLocked()
}

// Refresh re-reads the event so the view converges on the store's committed
// state. Clients poll this between their own mutations.
func (s *Session) Refresh(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolveLocked(ctx)
	return s.stateLocked()
}

// CreateEvent submits the create form. Once a create is in flight or an event
// is already resolved, further submits are ignored, so a rapid double submit
// cannot create two events. A retained token whose event never loaded does
// not block; a fresh create replaces it.
func (s *Session) CreateEvent(ctx context.Context, eventName, password, userName string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.creating || s.ev != nil {
		return s.stateLocked()
	}
	s.creating = true
	defer func() { s.creating = false }()

	ev, err := s.engine.CreateEvent(ctx, membership.CreateEventParams{
		EventName:   eventName,
		Password:    password,
		FounderID:   s.userID,
		FounderName: userName,
	})
	if err != nil {
		s.errorCode = createErrorCode(err)
		return s.stateLocked()
	}

	s.errorCode = ""
	s.eventID = ev.ID
	s.ev = &ev
	s.resolveUserLocked()
	return s.stateLocked()
}

// Join submits the join form against the currently resolved event.
func (s *Session) Join(ctx context.Context, userName, password string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.eventID == "" {
		return s.stateLocked()
	}

	ev, err := s.engine.Join(ctx, membership.JoinParams{
		EventID:  s.eventID,
		UserID:   s.userID,
		UserName: userName,
		Password: password,
	})
	switch {
	case err == nil:
		s.errorCode = ""
		s.ev = &ev
		s.resolveUserLocked()
	case errors.Is(err, membership.ErrWrongPassword):
		s.errorCode = ErrCodeWrongPassword
	case errors.Is(err, membership.ErrNotFound):
		// The event vanished between read and write; fall back to the create
		// form with the token cleared.
		s.errorCode = ErrCodeEventNotFound
		s.clearEventLocked()
	default:
		var vErr *membership.ValidationError
		if errors.As(err, &vErr) {
			s.errorCode = joinErrorCode(vErr)
		} else {
			s.errorCode = ErrCodeEventGetFail
		}
	}
	return s.stateLocked()
}

// Reassign hands a drop intent to the engine: move the user to the target
// room, or back to the unassigned pool when roomID is empty. The engine
// re-reads after writing, so the session's view reflects whichever
// assignment won the store's last-write-wins race.
func (s *Session) Reassign(ctx context.Context, userID, roomID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.eventID == "" || s.user == nil {
		return s.stateLocked()
	}

	ev, err := s.engine.Reassign(ctx, membership.ReassignParams{
		EventID: s.eventID,
		UserID:  userID,
		RoomID:  roomID,
	})
	if err != nil {
		// No retry here; the user re-drags.
		s.errorCode = ErrCodeAssignFailed
		return s.stateLocked()
	}
	s.errorCode = ""
	s.ev = &ev
	return s.stateLocked()
}

// Close leaves the event: the token and resolved event are dropped while the
// session's identity is kept, returning to the create form.
func (s *Session) Close() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errorCode = ""
	s.clearEventLocked()
	return s.stateLocked()
}

// CurrentView returns a copy of everything the presentation layer renders.
func (s *Session) CurrentView() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		Phase:     s.stateLocked(),
		ErrorCode: s.errorCode,
		EventID:   s.eventID,
		UserID:    s.userID,
	}
	if s.ev != nil {
		ev := s.ev.Clone()
		view.Event = &ev
		view.Roster = event.Roster(ev)
	}
	if s.user != nil {
		user := *s.user
		view.User = &user
	}
	return view
}

func (s *Session) stateLocked() State {
	return Next(Snapshot{
		IdentityResolved: s.identityResolved,
		EventID:          s.eventID,
		EventLoaded:      s.ev != nil,
		Registered:       s.user != nil,
	})
}

// resolveLocked fetches the event named by the token and derives the user's
// membership, implementing the token-driven transition of the lifecycle.
func (s *Session) resolveLocked(ctx context.Context) {
	if s.eventID == "" {
		s.ev = nil
		s.user = nil
		return
	}

	ev, err := s.engine.GetEvent(ctx, s.eventID)
	switch {
	case err == nil:
		s.errorCode = ""
		s.ev = &ev
		s.resolveUserLocked()
	case errors.Is(err, membership.ErrNotFound):
		s.errorCode = ErrCodeEventNotFound
		s.clearEventLocked()
	default:
		// Transient store failure: keep the token so the next refresh can
		// retry, but no event state is set.
		s.errorCode = ErrCodeEventGetFail
		s.ev = nil
		s.user = nil
	}
}

func (s *Session) resolveUserLocked() {
	s.user = nil
	if s.ev == nil {
		return
	}
	if s.engine.CheckMembership(*s.ev, s.userID) != membership.Registered {
		return
	}
	if user, ok := s.ev.UserByID(s.userID); ok {
		s.user = &user
	}
}

func (s *Session) clearEventLocked() {
	s.eventID = ""
	s.ev = nil
	s.user = nil
}

// joinErrorCode maps the join form's per-field validation errors. A missing
// user id means identity never resolved, not a form mistake.
func joinErrorCode(vErr *membership.ValidationError) string {
	if _, ok := vErr.FieldErrors["userId"]; ok {
		return ErrCodeAuthFailed
	}
	return ErrCodeUserNameMissing
}

func createErrorCode(err error) string {
	var vErr *membership.ValidationError
	if errors.As(err, &vErr) {
		if _, ok := vErr.FieldErrors["eventName"]; ok {
			return ErrCodeEventNameMissing
		}
		if _, ok := vErr.FieldErrors["userName"]; ok {
			return ErrCodeUserNameMissing
		}
		if _, ok := vErr.FieldErrors["eventPassword"]; ok {
			return ErrCodePasswordMissing
		}
	}
	return ErrCodeCreateFailed
}
