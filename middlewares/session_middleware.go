package middlewares

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/campus-canteen/cart"
	"github.com/yeremiapane/campus-canteen/utils"
)

const (
	SessionCookie  = "canteen_session"
	IdentityCookie = "canteen_identity"

	SessionIDKey = "session_id"
	CartKey      = "cart"
	PhoneKey     = "phone"
)

// SessionMiddleware attaches the caller's cart store, creating a session when
// the cookie is missing or stale. A valid identity cookie logs the new store in.
func SessionMiddleware(registry *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			store *cart.Store
			ok    bool
		)

		sessionID, err := c.Cookie(SessionCookie)
		if err == nil && sessionID != "" {
			store, ok = registry.Get(sessionID)
		}
		if !ok {
			sessionID, store = registry.Create()
			setCookie(c, SessionCookie, sessionID, 0)
		}

		if _, loggedIn := store.Phone(); !loggedIn {
			if token, err := c.Cookie(IdentityCookie); err == nil && token != "" {
				if claims, err := utils.ParseIdentityToken(token); err == nil {
					store.Hydrate(claims.Phone)
				}
			}
		}

		c.Set(SessionIDKey, sessionID)
		c.Set(CartKey, store)
		c.Next()
	}
}

// CartFrom returns the store attached by SessionMiddleware.
func CartFrom(c *gin.Context) *cart.Store {
	return c.MustGet(CartKey).(*cart.Store)
}

// RequireLogin rejects sessions without a phone number.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		phone, ok := CartFrom(c).Phone()
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Please log in to continue"))
			c.Abort()
			return
		}
		c.Set(PhoneKey, phone)
		c.Next()
	}
}

// KitchenAuth checks the shared kitchen key from the X-Kitchen-Key header, or
// the "key" query parameter for websocket upgrades.
func KitchenAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Kitchen-Key")
		if key == "" {
			key = c.Query("key")
		}

		if apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid kitchen key"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CookieIdentitySink persists the identity as a signed token cookie.
type CookieIdentitySink struct {
	C *gin.Context
}

func (s CookieIdentitySink) Save(phone string, ttl time.Duration) error {
	token, err := utils.GenerateIdentityToken(phone, ttl)
	if err != nil {
		return err
	}
	setCookie(s.C, IdentityCookie, token, int(ttl.Seconds()))
	return nil
}

// Delete expires the cookie and revokes the token it carried.
func (s CookieIdentitySink) Delete() error {
	if token, err := s.C.Cookie(IdentityCookie); err == nil && token != "" {
		until := time.Now().Add(utils.IdentityTTL)
		if claims, err := utils.ParseIdentityToken(token); err == nil && claims.ExpiresAt != nil {
			until = claims.ExpiresAt.Time
		}
		utils.RevokeToken(token, until)
	}
	setCookie(s.C, IdentityCookie, "", -1)
	return nil
}

func setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", c.Request.TLS != nil, true)
}
