package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/campus-canteen/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"ip":      c.ClientIP(),
		})
		if sessionID, ok := c.Get(SessionIDKey); ok {
			entry = entry.WithField("session", sessionID)
		}
		if len(c.Errors) > 0 {
			entry.Warn(path + " " + c.Errors.String())
			return
		}
		entry.Info(path)
	}
}
