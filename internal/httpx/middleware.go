package httpx

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ridKey = "rid"

// RequestID tags every request with X-Request-ID, reusing the caller's value.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ridKey, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

func RID(c *gin.Context) string { return c.GetString(ridKey) }

// Logger writes one line per request once the handler chain is done.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		uid := "-"
		if p := Principal(c); p != nil {
			uid = p.UserID
		}
		log.Printf("[http] rid=%s %s %s status=%d user=%s dur=%s",
			RID(c), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), uid, time.Since(start))
	}
}
