package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/roomcast/internal/domain"
)

// IdentityContextKey is the echo context key under which the resolved
// identity is stored.
const IdentityContextKey = "identity"

// Identity creates a middleware that resolves the connection's user identity
// from its auth token. Identity is supplied by an external provider; absence
// of authentication is a valid state, so resolution failures degrade to an
// anonymous identity instead of rejecting the request. Whether an anonymous
// session may do anything beyond listening is the session layer's call.
func Identity(provider domain.IdentityProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c)
			identity := domain.Anonymous

			if token != "" && provider != nil {
				resolved, err := provider.Resolve(c.Request().Context(), token)
				if err != nil {
					slog.Debug("Identity resolution failed, continuing as anonymous", "error", err)
				} else {
					identity = resolved
				}
			}

			c.Set(IdentityContextKey, identity)
			return next(c)
		}
	}
}

// IdentityFromEcho returns the identity resolved for this request, or the
// anonymous identity when the middleware did not run.
func IdentityFromEcho(c echo.Context) domain.Identity {
	if identity, ok := c.Get(IdentityContextKey).(domain.Identity); ok {
		return identity
	}
	return domain.Anonymous
}

// tokenFromRequest extracts the opaque auth token. Browser clients send it
// as a cookie; programmatic clients may use a bearer header.
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie("auth_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	auth := c.Request().Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}
