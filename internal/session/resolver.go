package session

import (
	"context"
	"errors"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/user"
)

// ErrUnauthenticated covers every way a session can fail to resolve:
// missing cookie, malformed token, or a token naming a user that does not
// exist. Callers must not let the three cases produce different responses.
var ErrUnauthenticated = errors.New("unauthenticated")

// Resolver extracts the active user identity from a session credential.
type Resolver struct {
	users user.Repository
}

// NewResolver builds a session resolver over the user repository.
func NewResolver(users user.Repository) *Resolver {
	return &Resolver{users: users}
}

// Resolve turns a raw cookie value into the user aggregate it names. A
// stale or forged token is indistinguishable from a missing one.
func (r *Resolver) Resolve(ctx context.Context, rawCookie string) (user.User, error) {
	cred := ParseCredential(rawCookie)
	if cred.State != StateValid {
		return user.User{}, ErrUnauthenticated
	}

	u, err := r.users.FindByID(ctx, cred.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return user.User{}, ErrUnauthenticated
	}
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}
