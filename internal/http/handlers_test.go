package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/breakout-rooms/internal/event"
	"github.com/example/breakout-rooms/internal/membership"
)

type serviceStub struct {
	createFunc   func(ctx context.Context, params membership.CreateEventParams) (event.Event, error)
	getFunc      func(ctx context.Context, eventID string) (event.Event, error)
	joinFunc     func(ctx context.Context, params membership.JoinParams) (event.Event, error)
	reassignFunc func(ctx context.Context, params membership.ReassignParams) (event.Event, error)
}

func (s *serviceStub) CreateEvent(ctx context.Context, params membership.CreateEventParams) (event.Event, error) {
	if s.createFunc == nil {
		return event.Event{}, errors.New("unexpected CreateEvent call")
	}
	return s.createFunc(ctx, params)
}

func (s *serviceStub) GetEvent(ctx context.Context, eventID string) (event.Event, error) {
	if s.getFunc == nil {
		return event.Event{}, errors.New("unexpected GetEvent call")
	}
	return s.getFunc(ctx, eventID)
}

func (s *serviceStub) Join(ctx context.Context, params membership.JoinParams) (event.Event, error) {
	if s.joinFunc == nil {
		return event.Event{}, errors.New("unexpected Join call")
	}
	return s.joinFunc(ctx, params)
}

func (s *serviceStub) Reassign(ctx context.Context, params membership.ReassignParams) (event.Event, error) {
	if s.reassignFunc == nil {
		return event.Event{}, errors.New("unexpected Reassign call")
	}
	return s.reassignFunc(ctx, params)
}

type issuerStub struct {
	id  string
	err error
}

func (s *issuerStub) Issue() (string, error) {
	return s.id, s.err
}

func newTestRouter(service *serviceStub, issuer *issuerStub) http.Handler {
	cfg := RouterConfig{Events: NewEventHandler(service, nil)}
	if issuer != nil {
		cfg.Identities = NewIdentityHandler(issuer, nil)
	}
	return NewRouter(cfg)
}

func sampleEvent() event.Event {
	return event.Event{
		ID:   "event-1",
		Name: "Planning Day",
		Users: []event.User{
			{ID: "user-1", Name: "Alice"},
			{ID: "user-2", Name: "Bobby"},
		},
		Rooms: []event.Room{
			{ID: "room-1", Name: "Room 1"},
			{ID: "room-2", Name: "Room 2"},
		},
		Assignments: []event.Assignment{
			{UserID: "user-2", RoomID: "room-1"},
		},
	}
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

func TestEventHandler_Create(t *testing.T) {

	t.Run("creates an event and returns 201", func(t *testing.T) {
		var captured membership.CreateEventParams
		service := &serviceStub{
			createFunc: func(_ context.Context, params membership.CreateEventParams) (event.Event, error) {
				captured = params
				return sampleEvent(), nil
			},
		}
		router := newTestRouter(service, nil)

		body := `{"eventName":"Planning Day","eventPassword":"open-sesame","userId":"user-1","userName":"Alice"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body)))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
		if captured.FounderID != "user-1" || captured.Password != "open-sesame" {
			t.Fatalf("unexpected params passed to the service: %+v", captured)
		}

		var resp eventResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Event.EventID != "event-1" || len(resp.Event.Users) != 2 {
			t.Fatalf("unexpected event payload: %+v", resp.Event)
		}
	})

	t.Run("returns 400 for a malformed body", func(t *testing.T) {
		router := newTestRouter(&serviceStub{}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("{not json")))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("returns 422 with field errors for invalid input", func(t *testing.T) {
		vErr := &membership.ValidationError{FieldErrors: map[string]string{
			"eventName": "An event name is required.",
		}}
		service := &serviceStub{
			createFunc: func(context.Context, membership.CreateEventParams) (event.Event, error) {
				return event.Event{}, vErr
			},
		}
		router := newTestRouter(service, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{}`)))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", rec.Code)
		}
		body := decodeErrorResponse(t, rec)
		if body.Errors["eventName"] == "" {
			t.Fatalf("expected an eventName field error, got %+v", body)
		}
	})

	t.Run("rejects non-POST methods", func(t *testing.T) {
		router := newTestRouter(&serviceStub{}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
			t.Fatalf("expected Allow: POST, got %q", allow)
		}
	})
}

func TestEventHandler_Get(t *testing.T) {

	t.Run("returns the event for a known id", func(t *testing.T) {
		service := &serviceStub{
			getFunc: func(_ context.Context, eventID string) (event.Event, error) {
				if eventID != "event-1" {
					t.Fatalf("unexpected event id: %q", eventID)
				}
				return sampleEvent(), nil
			},
		}
		router := newTestRouter(service, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/event-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var resp eventResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Event.EventName != "Planning Day" {
			t.Fatalf("unexpected event payload: %+v", resp.Event)
		}
	})

	t.Run("returns 404 for an unknown event", func(t *testing.T) {
		service := &serviceStub{
			getFunc: func(context.Context, string) (event.Event, error) {
				return event.Event{}, membership.ErrNotFound
			},
		}
		router := newTestRouter(service, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/missing", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
		if body := decodeErrorResponse(t, rec); body.ErrorCode != "EVENT_NOT_FOUND" {
			t.Fatalf("unexpected error code: %q", body.ErrorCode)
		}
	})

	t.Run("returns 503 when the store is unavailable", func(t *testing.T) {
		service := &serviceStub{
			getFunc: func(context.Context, string) (event.Event, error) {
				return event.Event{}, membership.ErrStoreUnavailable
			},
		}
		router := newTestRouter(service, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/event-1", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", rec.Code)
		}
		if body := decodeErrorResponse(t, rec); body.ErrorCode != "STORE_UNAVAILABLE" {
			t.Fatalf("unexpected error code: %q", body.ErrorCode)
		}
	})
}

func TestEventHandler_Join(t *testing.T) {

	t.Run("joins an event with a matching password", func(t *testing.T) {
		var captured membership.JoinParams
		service := &serviceStub{
			joinFunc: func(_ context.Context, params membership.JoinParams) (event.Event, error) {
				captured = params
				return sampleEvent(), nil
			},
		}
		router := newTestRouter(service, nil)

		body := `{"userId":"user-3","userName":"Carol","eventPassword":"open-sesame"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/event-1/join", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if captured.EventID != "event-1" || captured.UserID != "user-3" {
			t.Fatalf("unexpected params passed to the service: %+v", captured)
		}
	})

	t.Run("returns 403 for a wrong password", func(t *testing.T) {
		service := &serviceStub{
			joinFunc: func(context.Context, membership.JoinParams) (event.Event, error) {
				return event.Event{}, membership.ErrWrongPassword
			},
		}
		router := newTestRouter(service, nil)

		body := `{"userId":"user-3","userName":"Carol","eventPassword":"nope"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/event-1/join", strings.NewReader(body)))

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", rec.Code)
		}
		if body := decodeErrorResponse(t, rec); body.ErrorCode != "WRONG_PASSWORD" {
			t.Fatalf("unexpected error code: %q", body.ErrorCode)
		}
	})
}

func TestEventHandler_Assign(t *testing.T) {

	t.Run("moves a user to the requested room", func(t *testing.T) {
		var captured membership.ReassignParams
		service := &serviceStub{
			reassignFunc: func(_ context.Context, params membership.ReassignParams) (event.Event, error) {
				captured = params
				return sampleEvent(), nil
			},
		}
		router := newTestRouter(service, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/events/event-1/assignments/user-2", strings.NewReader(`{"roomId":"room-2"}`))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if captured.EventID != "event-1" || captured.UserID != "user-2" || captured.RoomID != "room-2" {
			t.Fatalf("unexpected params passed to the service: %+v", captured)
		}
	})

	t.Run("accepts an empty room id to clear the assignment", func(t *testing.T) {
		var captured membership.ReassignParams
		service := &serviceStub{
			reassignFunc: func(_ context.Context, params membership.ReassignParams) (event.Event, error) {
				captured = params
				return sampleEvent(), nil
			},
		}
		router := newTestRouter(service, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/events/event-1/assignments/user-2", strings.NewReader(`{"roomId":""}`))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if captured.RoomID != "" {
			t.Fatalf("expected an empty room id, got %q", captured.RoomID)
		}
	})

	t.Run("returns 422 for an unknown user", func(t *testing.T) {
		service := &serviceStub{
			reassignFunc: func(context.Context, membership.ReassignParams) (event.Event, error) {
				return event.Event{}, membership.ErrUnknownUser
			},
		}
		router := newTestRouter(service, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/events/event-1/assignments/ghost", strings.NewReader(`{"roomId":"room-1"}`))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", rec.Code)
		}
		if body := decodeErrorResponse(t, rec); body.ErrorCode != "UNKNOWN_USER" {
			t.Fatalf("unexpected error code: %q", body.ErrorCode)
		}
	})

	t.Run("returns 422 for an unknown room", func(t *testing.T) {
		service := &serviceStub{
			reassignFunc: func(context.Context, membership.ReassignParams) (event.Event, error) {
				return event.Event{}, membership.ErrUnknownRoom
			},
		}
		router := newTestRouter(service, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/events/event-1/assignments/user-2", strings.NewReader(`{"roomId":"basement"}`))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", rec.Code)
		}
		if body := decodeErrorResponse(t, rec); body.ErrorCode != "UNKNOWN_ROOM" {
			t.Fatalf("unexpected error code: %q", body.ErrorCode)
		}
	})

	t.Run("rejects nested assignment paths", func(t *testing.T) {
		router := newTestRouter(&serviceStub{}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/events/event-1/assignments/user-2/extra", strings.NewReader(`{}`))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestEventHandler_Roster(t *testing.T) {

	t.Run("returns the grouped roster", func(t *testing.T) {
		service := &serviceStub{
			getFunc: func(context.Context, string) (event.Event, error) {
				return sampleEvent(), nil
			},
		}
		router := newTestRouter(service, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/event-1/roster", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var resp rosterDTO
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode roster: %v", err)
		}
		if len(resp.Rooms) != 2 {
			t.Fatalf("expected 2 rooms, got %d", len(resp.Rooms))
		}
		if len(resp.Rooms[0].Users) != 1 || resp.Rooms[0].Users[0].UserID != "user-2" {
			t.Fatalf("unexpected occupants of the first room: %+v", resp.Rooms[0])
		}
		if len(resp.Unassigned) != 1 || resp.Unassigned[0].UserID != "user-1" {
			t.Fatalf("unexpected unassigned users: %+v", resp.Unassigned)
		}
	})
}

func TestIdentityHandler_Issue(t *testing.T) {

	t.Run("issues a fresh id", func(t *testing.T) {
		router := newTestRouter(&serviceStub{}, &issuerStub{id: "anon-1"})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/identities", nil))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}

		var resp identityResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.UserID != "anon-1" {
			t.Fatalf("unexpected user id: %q", resp.UserID)
		}
	})

	t.Run("returns 503 when issuing fails", func(t *testing.T) {
		router := newTestRouter(&serviceStub{}, &issuerStub{err: errors.New("provider is down")})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/identities", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", rec.Code)
		}
		if body := decodeErrorResponse(t, rec); body.ErrorCode != "AUTH_FAILED" {
			t.Fatalf("unexpected error code: %q", body.ErrorCode)
		}
	})
}
