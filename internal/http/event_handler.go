package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/breakout-rooms/internal/event"
	"github.com/example/breakout-rooms/internal/membership"
)

type membershipService interface {
	CreateEvent(ctx context.Context, params membership.CreateEventParams) (event.Event, error)
	GetEvent(ctx context.Context, eventID string) (event.Event, error)
	Join(ctx context.Context, params membership.JoinParams) (event.Event, error)
	Reassign(ctx context.Context, params membership.ReassignParams) (event.Event, error)
}

// EventHandler exposes the membership engine's operations to remote clients.
type EventHandler struct {
	service   membershipService
	responder responder
	logger    *slog.Logger
}

// NewEventHandler constructs the handler.
func NewEventHandler(service membershipService, logger *slog.Logger) *EventHandler {
	base := orDefault(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return scopedLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

type createEventRequest struct {
	EventName string `json:"eventName"`
	Password  string `json:"eventPassword"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
}

type joinEventRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Password string `json:"eventPassword"`
}

type assignRequest struct {
	RoomID string `json:"roomId"`
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

// Create handles POST /events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode create request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "founder_id", req.UserID)

	ev, err := h.service.CreateEvent(r.Context(), membership.CreateEventParams{
		EventName:   req.EventName,
		Password:    req.Password,
		FounderID:   req.UserID,
		FounderName: req.UserName,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", membership.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", ev.ID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: toEventDTO(ev)})
}

// Get handles GET /events/{eventId}, the polling read every client converges
// through.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	ev, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		h.log(r.Context(), "Get", "event_id", eventID).ErrorContext(r.Context(), "event fetch failed", "error", err, "error_kind", membership.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(ev)})
}

// Join handles POST /events/{eventId}/join.
func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req joinEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Join", "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode join request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Join", "event_id", eventID, "user_id", req.UserID)

	ev, err := h.service.Join(r.Context(), membership.JoinParams{
		EventID:  eventID,
		UserID:   req.UserID,
		UserName: req.UserName,
		Password: req.Password,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "join failed", "error", err, "error_kind", membership.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user joined")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(ev)})
}

// Assign handles PUT /events/{eventId}/assignments/{userId}. An empty roomId
// returns the user to the unassigned pool.
func (h *EventHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}
	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Assign", "event_id", eventID, "user_id", userID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode assignment", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Assign", "event_id", eventID, "user_id", userID, "room_id", req.RoomID)

	ev, err := h.service.Reassign(r.Context(), membership.ReassignParams{
		EventID: eventID,
		UserID:  userID,
		RoomID:  req.RoomID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reassignment failed", "error", err, "error_kind", membership.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user reassigned")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(ev)})
}

// Roster handles GET /events/{eventId}/roster.
func (h *EventHandler) Roster(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	ev, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		h.log(r.Context(), "Roster", "event_id", eventID).ErrorContext(r.Context(), "event fetch failed", "error", err, "error_kind", membership.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRosterDTO(event.GroupedRoster(ev)))
}
