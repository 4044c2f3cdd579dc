package domain

import "context"

// Identity is the user identity bound to one connection. Anonymous
// connections are valid; they may receive broadcasts but their sends are
// silently ignored.
type Identity struct {
	Username      string
	Authenticated bool
}

// Anonymous is the identity used when no token is presented or the token
// cannot be resolved.
var Anonymous = Identity{}

// IdentityProvider resolves an opaque auth token into an Identity. The
// actual provider is an external service; this core only consumes it.
type IdentityProvider interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}
