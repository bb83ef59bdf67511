package http

import (
	"context"
	"log/slog"
	"net/http"
)

type identityIssuer interface {
	Issue() (string, error)
}

// IdentityHandler issues anonymous user ids. Clients call it once at startup
// and keep the id for the whole session.
type IdentityHandler struct {
	issuer    identityIssuer
	responder responder
	logger    *slog.Logger
}

// NewIdentityHandler constructs the handler.
func NewIdentityHandler(issuer identityIssuer, logger *slog.Logger) *IdentityHandler {
	base := orDefault(logger)
	return &IdentityHandler{issuer: issuer, responder: newResponder(base), logger: base}
}

func (h *IdentityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return scopedLogger(ctx, h.logger, "IdentityHandler", operation, attrs...)
}

type identityResponse struct {
	UserID string `json:"userId"`
}

// Issue handles POST /identities.
func (h *IdentityHandler) Issue(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.issuer == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, err := h.issuer.Issue()
	if err != nil {
		h.log(r.Context(), "Issue").ErrorContext(r.Context(), "failed to issue identity", "error", err)
		h.responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, errorResponse{
			ErrorCode: "AUTH_FAILED",
			Message:   "Could not issue an anonymous identity. Please retry.",
		})
		return
	}

	h.log(r.Context(), "Issue", "user_id", userID).InfoContext(r.Context(), "identity issued")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, identityResponse{UserID: userID})
}
