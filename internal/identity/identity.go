package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrAuthFailed is returned when no user id could be issued.
var ErrAuthFailed = errors.New("identity: authentication failed")

// Provider issues an anonymous, stable user id for the current session. The
// same provider instance always resolves to the same id, mirroring a browser
// session's anonymous credential.
type Provider interface {
	Authenticate(ctx context.Context) (string, error)
}

// AnonymousProvider mints one id on first use and hands it back on every
// subsequent call.
type AnonymousProvider struct {
	mu       sync.Mutex
	generate func() string
	userID   string
}

// NewAnonymousProvider constructs a provider backed by the given id source.
func NewAnonymousProvider(generate func() string) *AnonymousProvider {
	return &AnonymousProvider{generate: generate}
}

// Authenticate returns the session's user id, issuing it on first call.
func (p *AnonymousProvider) Authenticate(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.userID != "" {
		return p.userID, nil
	}
	if p.generate == nil {
		return "", ErrAuthFailed
	}
	id := strings.TrimSpace(p.generate())
	if id == "" {
		return "", ErrAuthFailed
	}
	p.userID = id
	return p.userID, nil
}

// Issuer mints a fresh anonymous user id per request. It backs the identity
// endpoint that remote clients call once at startup, after which they hold
// their id for the whole session.
type Issuer struct {
	generate func() string
}

// NewIssuer constructs an issuer backed by the given id source.
func NewIssuer(generate func() string) *Issuer {
	return &Issuer{generate: generate}
}

// Issue returns a new user id.
func (i *Issuer) Issue() (string, error) {
	if i == nil || i.generate == nil {
		return "", ErrAuthFailed
	}
	id := strings.TrimSpace(i.generate())
	if id == "" {
		return "", ErrAuthFailed
	}
	return id, nil
}
