package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Chyrain/LLMGateway/common/ctxkey"
)

// RequestId attaches a per-request correlation id and start time to the
// gin.Context, echoed back in the X-Request-Id response header.
func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(ctxkey.RequestId, id)
		c.Set(ctxkey.StartTime, time.Now())
		c.Header("X-Request-Id", id)
		c.Next()
	}
}
