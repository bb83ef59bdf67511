package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires the handlers the router dispatches to.
type RouterConfig struct {
	Identities *IdentityHandler
	Events     *EventHandler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP surface: identity issuance, event creation, the
// polling read, the join gate, assignment upserts, and the derived roster.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Identities != nil {
		mux.HandleFunc("/identities", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Identities.Issue(w, r)
		})
	}

	if cfg.Events != nil {
		mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Events.Create(w, r)
		})
		mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
			eventID, rest, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/events/"), "/")
			if eventID == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithEventID(r.Context(), eventID))

			switch {
			case rest == "":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Events.Get(w, r)
			case rest == "join":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Events.Join(w, r)
			case rest == "roster":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Events.Roster(w, r)
			case strings.HasPrefix(rest, "assignments/"):
				userID := strings.TrimPrefix(rest, "assignments/")
				if userID == "" || strings.Contains(userID, "/") {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				r = r.WithContext(ContextWithUserID(r.Context(), userID))
				cfg.Events.Assign(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
