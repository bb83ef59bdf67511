package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/breakout-rooms/internal/docstore"
	"github.com/example/breakout-rooms/internal/event"
	"github.com/example/breakout-rooms/internal/logging"
	"github.com/example/breakout-rooms/internal/repository"
)

// Registration is the membership status of a user id on an event.
type Registration int

const (
	// Unregistered means the user must pass the join gate first.
	Unregistered Registration = iota
	// Registered means the user is on the event's roster and goes straight to
	// the in-room view.
	Registered
)

// String returns the string representation of a Registration.
func (r Registration) String() string {
	switch r {
	case Registered:
		return "registered"
	case Unregistered:
		return "unregistered"
	default:
		return "unknown"
	}
}

// Repository captures the persistence operations needed by the engine.
type Repository interface {
	CreateEvent(ctx context.Context, ev event.Event) error
	GetEvent(ctx context.Context, eventID string) (event.Event, error)
	RegisterUser(ctx context.Context, eventID string, user event.User) (event.Event, error)
	AssignUserToRoom(ctx context.Context, eventID, userID, roomID string) error
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	EventName   string
	Password    string
	FounderID   string
	FounderName string
}

// JoinParams wraps the data required to join an existing event.
type JoinParams struct {
	EventID  string
	UserID   string
	UserName string
	Password string
}

// ReassignParams wraps the data required to move a user between rooms.
type ReassignParams struct {
	EventID string
	UserID  string
	RoomID  string
}

// Service is the coordination core: it validates joins, enforces the roster
// and room invariants, and decides whether a requested mutation is legal
// before handing it to the repository.
type Service struct {
	repo        Repository
	roomNames   []string
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewService constructs the engine. Rooms are fixed at event creation from
// roomNames; idGenerator supplies event and room ids.
func NewService(repo Repository, roomNames []string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Service {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, roomNames: roomNames, idGenerator: idGenerator, now: now, logger: logger}
}

func (s *Service) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = s.logger
	}
	pairs := append([]any{"service", "MembershipService", "operation", operation}, attrs...)
	return logger.With(pairs...)
}

// CreateEvent validates input, hashes the shared password, and persists a new
// event with the founder pre-registered and every configured room. The whole
// aggregate lands in one document write, so creation never partially applies.
func (s *Service) CreateEvent(ctx context.Context, params CreateEventParams) (ev event.Event, err error) {
	logger := s.loggerWith(ctx, "CreateEvent", "founder_id", params.FounderID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", ev.ID).InfoContext(ctx, "event created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(params.EventName) == "" {
		vErr.add("eventName", "event name is required")
	}
	if strings.TrimSpace(params.FounderName) == "" {
		vErr.add("userName", "user name is required")
	}
	if params.Password == "" {
		vErr.add("eventPassword", "event password is required")
	}
	if strings.TrimSpace(params.FounderID) == "" {
		vErr.add("userId", "user id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return
	}

	ev = event.Event{
		ID:           s.idGenerator(),
		Name:         strings.TrimSpace(params.EventName),
		PasswordHash: hash,
		Users:        []event.User{{ID: params.FounderID, Name: strings.TrimSpace(params.FounderName)}},
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	for _, name := range s.roomNames {
		ev.Rooms = append(ev.Rooms, event.Room{ID: s.idGenerator(), Name: name})
	}

	if err = s.repo.CreateEvent(ctx, ev); err != nil {
		err = mapStoreError(err)
		ev = event.Event{}
		return
	}
	return
}

// GetEvent fetches the current aggregate for polling reads.
func (s *Service) GetEvent(ctx context.Context, eventID string) (event.Event, error) {
	ev, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return event.Event{}, mapStoreError(err)
	}
	return ev, nil
}

// CheckMembership reports whether the user id is registered on the event.
func (s *Service) CheckMembership(ev event.Event, userID string) Registration {
	if ev.HasUser(userID) {
		return Registered
	}
	return Unregistered
}

// Join validates the shared password and registers the user on the event.
// Wrong passwords reject before any store write; registration is idempotent
// so a repeated join with the same user id leaves one roster entry.
func (s *Service) Join(ctx context.Context, params JoinParams) (ev event.Event, err error) {
	logger := s.loggerWith(ctx, "Join", "event_id", params.EventID, "user_id", params.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "join rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user joined")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(params.UserID) == "" {
		vErr.add("userId", "user id is required")
	}
	if strings.TrimSpace(params.UserName) == "" {
		vErr.add("userName", "user name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	current, err := s.repo.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapStoreError(err)
		return
	}

	if err = VerifyPassword(current.PasswordHash, params.Password); err != nil {
		if !errors.Is(err, ErrWrongPassword) {
			err = fmt.Errorf("verify event password: %w", err)
		}
		return
	}

	ev, err = s.repo.RegisterUser(ctx, params.EventID, event.User{
		ID:   params.UserID,
		Name: strings.TrimSpace(params.UserName),
	})
	if err != nil {
		err = mapStoreError(err)
		ev = event.Event{}
		return
	}
	return
}

// Reassign moves the user to the target room and re-reads the aggregate so
// the caller's view converges on the authoritative state within one round
// trip. Concurrent reassignments of the same user resolve last-write-wins in
// the repository; a superseded write is not rolled back, the re-read simply
// reports whichever assignment committed last.
func (s *Service) Reassign(ctx context.Context, params ReassignParams) (ev event.Event, err error) {
	logger := s.loggerWith(ctx, "Reassign",
		"event_id", params.EventID,
		"user_id", params.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reassign user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user reassigned")
	}()

	if err = s.repo.AssignUserToRoom(ctx, params.EventID, params.UserID, params.RoomID); err != nil {
		err = mapStoreError(err)
		return
	}

	ev, err = s.repo.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapStoreError(err)
		return
	}
	return
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docstore.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, docstore.ErrExists):
		// Event id collision on create; opaque ids make this a store-level
		// anomaly rather than a user-correctable condition.
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	case errors.Is(err, docstore.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	case errors.Is(err, repository.ErrUnknownUser):
		return fmt.Errorf("%w: %v", ErrUnknownUser, err)
	case errors.Is(err, repository.ErrUnknownRoom):
		return fmt.Errorf("%w: %v", ErrUnknownRoom, err)
	default:
		return err
	}
}
