package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// SessionCookie is the cookie the web client stores its session token in.
const SessionCookie = "__session"

// Identity is who a request acts for.
type Identity struct {
	UserID    string
	SessionID string
	Username  string
	Token     string
}

type ctxKey struct{}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity attached by the auth middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// TokenFromRequest looks for a token in the Authorization header, then the session
// cookie. The "token" query parameter is read only on websocket upgrades, since
// browsers cannot set headers there.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if websocket.IsWebSocketUpgrade(r) {
		return strings.TrimSpace(r.URL.Query().Get("token"))
	}
	return ""
}
