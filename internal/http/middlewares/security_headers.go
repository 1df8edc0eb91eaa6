package middlewares

import (
	"github.com/gin-gonic/gin"
)

// The pages here are self-contained HTML with no scripts or external assets.
const defaultCSP = "default-src 'none'; form-action 'self'; base-uri 'none'; frame-ancestors 'none'"

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("X-XSS-Protection", "0")
		c.Header("Content-Security-Policy", defaultCSP)
		c.Next()
	}
}
