package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/breakout-rooms/internal/docstore"
	"github.com/example/breakout-rooms/internal/event"
	"github.com/example/breakout-rooms/internal/logging"
)

var (
	// ErrUnknownUser is returned when an assignment references a user id that
	// is not registered on the event.
	ErrUnknownUser = errors.New("repository: unknown user")
	// ErrUnknownRoom is returned when an assignment references a room id that
	// does not belong to the event.
	ErrUnknownRoom = errors.New("repository: unknown room")
)

// EventRepository translates event operations into document-store calls.
// Store-level sentinels (docstore.ErrNotFound, docstore.ErrExists,
// docstore.ErrUnavailable) pass through so callers can tell a bad link from a
// transient failure.
type EventRepository struct {
	store  docstore.Store
	logger *slog.Logger
}

// NewEventRepository constructs a repository over the given store.
func NewEventRepository(store docstore.Store, logger *slog.Logger) *EventRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventRepository{store: store, logger: logger}
}

func (r *EventRepository) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = r.logger
	}
	pairs := append([]any{"repository", "EventRepository", "operation", operation}, attrs...)
	return logger.With(pairs...)
}

// CreateEvent writes the aggregate as a new document in a single atomic
// write. An id collision fails with docstore.ErrExists rather than
// overwriting the existing event.
func (r *EventRepository) CreateEvent(ctx context.Context, ev event.Event) error {
	body, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if err := r.store.Create(ctx, ev.ID, body); err != nil {
		return err
	}
	r.log(ctx, "CreateEvent", "event_id", ev.ID).InfoContext(ctx, "event created")
	return nil
}

// GetEvent point-reads the aggregate.
func (r *EventRepository) GetEvent(ctx context.Context, eventID string) (event.Event, error) {
	body, err := r.store.Get(ctx, eventID)
	if err != nil {
		return event.Event{}, err
	}
	return decodeEvent(body)
}

// RegisterUser appends a user to the event inside a transactional
// read-modify-write. Registration is idempotent on the user id, so a retried
// or raced join never duplicates an entry. The committed aggregate is
// returned.
func (r *EventRepository) RegisterUser(ctx context.Context, eventID string, user event.User) (event.Event, error) {
	body, err := r.store.Apply(ctx, eventID, func(current []byte) ([]byte, error) {
		ev, err := decodeEvent(current)
		if err != nil {
			return nil, err
		}
		return encodeEvent(ev.WithUser(user))
	})
	if err != nil {
		return event.Event{}, err
	}

	r.log(ctx, "RegisterUser", "event_id", eventID, "user_id", user.ID).InfoContext(ctx, "user registered")
	return decodeEvent(body)
}

// AssignUserToRoom upserts the user's room assignment, replacing any prior
// entry for that user. Referential integrity is checked against the committed
// document inside the same transaction, so an invalid id never partially
// writes. Assigning to event.UnassignedRoomID clears the assignment.
//
// Concurrent assignments for the same user resolve last-write-wins: each
// write replaces the user's single entry wholesale, so a lost race can undo a
// drag but never leave duplicate or dangling entries.
func (r *EventRepository) AssignUserToRoom(ctx context.Context, eventID, userID, roomID string) error {
	_, err := r.store.Apply(ctx, eventID, func(current []byte) ([]byte, error) {
		ev, err := decodeEvent(current)
		if err != nil {
			return nil, err
		}
		if !ev.HasUser(userID) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
		}
		if roomID != event.UnassignedRoomID && !ev.HasRoom(roomID) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
		}
		return encodeEvent(ev.WithAssignment(userID, roomID))
	})
	if err != nil {
		return err
	}

	r.log(ctx, "AssignUserToRoom", "event_id", eventID, "user_id", userID, "room_id", roomID).
		InfoContext(ctx, "assignment updated")
	return nil
}
