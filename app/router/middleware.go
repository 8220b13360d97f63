package router

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-checkout/service"
)

const (
	DeviceCookie  = "storefront_device"
	SessionCookie = "storefront_session"

	deviceCookieMaxAge = 365 * 24 * time.Hour
)

// ShopperMiddleware identifies the device and the browser session of each request and
// binds the device's cart store to the request context.
// The device cookie is long-lived so the cart survives restarts; the session cookie
// lives as long as the browser session and scopes the checkout snapshot.
type ShopperMiddleware struct {
	carts  *service.CartRegistry
	secure bool
	log    logrus.FieldLogger
}

// NewShopperMiddleware creates a new ShopperMiddleware. secure marks cookies Secure.
func NewShopperMiddleware(carts *service.CartRegistry, secure bool, log logrus.FieldLogger) *ShopperMiddleware {
	return &ShopperMiddleware{carts: carts, secure: secure, log: log}
}

func (m *ShopperMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := m.ensureCookie(w, r, DeviceCookie, deviceCookieMaxAge)
		sessionID := m.ensureCookie(w, r, SessionCookie, 0)

		ctx := service.ContextWithSessionID(r.Context(), sessionID)
		ctx = service.ContextWithCart(ctx, m.carts.Open(ctx, deviceID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ensureCookie returns the cookie value, issuing a new ID when absent or not a UUID
func (m *ShopperMiddleware) ensureCookie(w http.ResponseWriter, r *http.Request, name string, maxAge time.Duration) string {
	if c, err := r.Cookie(name); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	cookie := &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		cookie.MaxAge = int(maxAge.Seconds())
	}
	http.SetCookie(w, cookie)
	m.log.Debugf("🔍 Issued %s cookie %s", name, id)
	return id
}
