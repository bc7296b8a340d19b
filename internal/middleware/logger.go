package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger middleware logs HTTP requests
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		level := "INFO"
		switch {
		case status >= 500:
			level = "ERROR"
		case status >= 400:
			level = "WARN"
		}

		msg := ""
		if len(c.Errors) > 0 {
			msg = " " + c.Errors.String()
		}

		log.Printf("[HTTP] %s %s %s %s %d %v%s",
			level,
			c.Request.Method,
			path,
			c.ClientIP(),
			status,
			time.Since(start),
			msg,
		)
	}
}
