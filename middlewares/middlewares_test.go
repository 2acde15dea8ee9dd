package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/campus-canteen/cart"
	"github.com/yeremiapane/campus-canteen/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func sessionRouter(registry *cart.Registry) *gin.Engine {
	r := gin.New()
	r.Use(SessionMiddleware(registry))
	r.GET("/whoami", func(c *gin.Context) {
		phone, _ := CartFrom(c).Phone()
		c.String(http.StatusOK, phone)
	})
	r.GET("/private", RequireLogin(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(PhoneKey))
	})
	return r
}

func TestSessionMiddlewareCreatesAndReusesSession(t *testing.T) {
	registry := cart.NewRegistry(time.Hour)
	r := sessionRouter(registry)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	session := findCookie(w.Result(), SessionCookie)
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Nil(t, findCookie(w.Result(), SessionCookie))
	assert.Equal(t, 1, registry.Len())
}

func TestSessionMiddlewareHydratesIdentity(t *testing.T) {
	r := sessionRouter(cart.NewRegistry(time.Hour))
	token, err := utils.GenerateIdentityToken("9876543210", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: IdentityCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9876543210", w.Body.String())
}

func TestRequireLoginRejectsAnonymous(t *testing.T) {
	r := sessionRouter(cart.NewRegistry(time.Hour))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCookieIdentitySinkDeleteRevokes(t *testing.T) {
	token, err := utils.GenerateIdentityToken("9876543210", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/logout", nil)
	c.Request.AddCookie(&http.Cookie{Name: IdentityCookie, Value: token})

	require.NoError(t, CookieIdentitySink{C: c}.Delete())

	assert.True(t, utils.IsTokenRevoked(token))
	cookie := findCookie(w.Result(), IdentityCookie)
	require.NotNil(t, cookie)
	assert.True(t, cookie.MaxAge < 0)
}

func TestKitchenAuth(t *testing.T) {
	r := gin.New()
	r.GET("/kitchen", KitchenAuth("secret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"header", "secret", "", http.StatusOK},
		{"query", "", "?key=secret", http.StatusOK},
		{"wrong", "nope", "", http.StatusUnauthorized},
		{"missing", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/kitchen"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("X-Kitchen-Key", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestKitchenAuthDisabledWithoutKey(t *testing.T) {
	r := gin.New()
	r.GET("/kitchen", KitchenAuth(""), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/kitchen", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Now()

	assert.True(t, rl.allow("1.2.3.4", now))
	assert.True(t, rl.allow("1.2.3.4", now))
	assert.False(t, rl.allow("1.2.3.4", now))
	assert.True(t, rl.allow("5.6.7.8", now))
	assert.True(t, rl.allow("1.2.3.4", now.Add(2*time.Minute)))
}

func TestStrictRateLimiterPerIP(t *testing.T) {
	sl := NewStrictRateLimiter(time.Minute, 1)
	r := gin.New()
	r.POST("/login", sl.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimiterForgetsIdleIPs(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Now()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		assert.True(t, rl.allow(ip, now))
	}
	assert.Equal(t, 3, rl.trackedIPs())

	assert.True(t, rl.allow("10.0.0.4", now.Add(2*time.Minute)))
	assert.Equal(t, 1, rl.trackedIPs())
}

func TestStrictRateLimiterForgetsRefilledBuckets(t *testing.T) {
	sl := NewStrictRateLimiter(time.Minute, 2)
	now := time.Now()

	assert.True(t, sl.allow("10.0.0.1", now))
	assert.True(t, sl.allow("10.0.0.1", now))
	assert.False(t, sl.allow("10.0.0.1", now))
	assert.True(t, sl.allow("10.0.0.2", now))
	assert.Equal(t, 2, sl.trackedIPs())

	// Still inside the refill window: the exhausted bucket is kept.
	assert.False(t, sl.allow("10.0.0.1", now.Add(30*time.Second)))
	assert.Equal(t, 2, sl.trackedIPs())

	later := now.Add(5 * time.Minute)
	assert.True(t, sl.allow("10.0.0.3", later))
	assert.Equal(t, 1, sl.trackedIPs())
	assert.True(t, sl.allow("10.0.0.1", later))
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddlewares("http://localhost:3000"))
	r.POST("/cart/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/cart/items", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
