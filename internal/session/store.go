// Package session keys shopping carts by a cookie-carried session ID.
package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/suoapvs/alexcoffee/internal/cart"
)

// CookieName is the storefront session cookie.
const CookieName = "cart_session"

type contextKey struct{}

// Store keeps one shopping cart per session ID.
type Store interface {
	// Get returns the cart for the session, creating an empty one if
	// the session is new or has expired.
	Get(ctx context.Context, sessionID string) (*cart.ShoppingCart, error)
	// Save persists the cart. Backends with shared in-process state may
	// treat this as a no-op.
	Save(ctx context.Context, sessionID string, c *cart.ShoppingCart) error
	// Delete drops the session's cart.
	Delete(ctx context.Context, sessionID string) error
	// Count returns the number of live sessions holding a non-empty cart.
	Count(ctx context.Context) (int, error)
	// Close releases backend resources.
	Close() error
}

// Manager issues session cookies and resolves the request's session ID.
type Manager struct {
	secure bool
	maxAge int
}

// NewManager builds a cookie manager. maxAgeSeconds bounds the cookie
// lifetime; the store applies its own TTL independently.
func NewManager(secure bool, maxAgeSeconds int) *Manager {
	return &Manager{secure: secure, maxAge: maxAgeSeconds}
}

// Ensure returns the request's session ID, minting a new one and
// setting the cookie when the request carries none.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// WithSessionID records the session ID on the request context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IDFromContext returns the session ID recorded by the middleware.
func IDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}
