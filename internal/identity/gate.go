package identity

import (
	"context"

	apperrors "github.com/spec-kit/team-service/pkg/util"
)

// MaxUsernameLen bounds the identity claim; longer names are rejected
// before any store is touched.
const MaxUsernameLen = 50

// Gate validates caller-supplied usernames against format rules and the
// external session store.
type Gate struct {
	sessions SessionStore
}

// NewGate constructs the gate.
func NewGate(sessions SessionStore) *Gate {
	return &Gate{sessions: sessions}
}

// Validate returns the username unchanged when it is well formed and has an
// active session. Failures carry wire codes 104 and 2 respectively; session
// store outages collapse to the internal code.
func (g *Gate) Validate(ctx context.Context, username string) (string, error) {
	if !ValidName(username) {
		return "", apperrors.NewInvalidUsername()
	}
	active, err := g.sessions.IsActive(ctx, username)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if !active {
		return "", apperrors.NewSessionMissing()
	}
	return username, nil
}

// ValidName reports whether a name satisfies the shared format rule:
// non-empty and at most MaxUsernameLen characters.
func ValidName(name string) bool {
	return name != "" && len(name) <= MaxUsernameLen
}
