package membership

import "errors"

var (
	// ErrNotFound is returned when the requested event does not exist. It is
	// kept distinct from ErrStoreUnavailable so callers can tell a bad link
	// from a transient failure.
	ErrNotFound = errors.New("membership: event not found")
	// ErrStoreUnavailable is returned when the document store cannot complete
	// an operation. The engine never retries; the user re-attempts the action.
	ErrStoreUnavailable = errors.New("membership: store unavailable")
	// ErrWrongPassword is returned when a join supplies a password that does
	// not match the event's.
	ErrWrongPassword = errors.New("membership: wrong password")
	// ErrUnknownUser is returned when a reassignment targets a user that is
	// not registered on the event.
	ErrUnknownUser = errors.New("membership: unknown user")
	// ErrUnknownRoom is returned when a reassignment targets a room that does
	// not belong to the event.
	ErrUnknownRoom = errors.New("membership: unknown room")
)

// ValidationError captures field level validation issues that callers can
// surface to users. These are detected before any store call.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrWrongPassword):
		return "wrong_password"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrUnknownRoom):
		return "unknown_room"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
