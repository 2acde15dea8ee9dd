package middlewares

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddlewares allows the storefront origin to call the API with cookies.
// An empty or "*" origin allows any origin without credentials.
func CORSMiddlewares(allowedOrigin string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods: []string{"POST", "OPTIONS", "GET", "PUT", "PATCH", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding",
			"X-Kitchen-Key", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:   []string{"Content-Length"},
		AllowWebSockets: true,
		MaxAge:          12 * time.Hour,
	}

	if allowedOrigin == "" || allowedOrigin == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = []string{allowedOrigin}
		config.AllowCredentials = true
	}
	return cors.New(config)
}
