package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeaderName = "X-Request-ID"

// RequestID attaches a unique ID to each request for log correlation. An
// incoming X-Request-ID from a trusted proxy is reused, otherwise a fresh
// UUID is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeaderName)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set("RequestID", requestID)
		c.Header(RequestIDHeaderName, requestID)
		c.Next()
	}
}
