package middleware

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/dentiqcloud/dentiq-backend/internal/requestdata"
)

// Allocate mints the identifier a resource will be created under before any
// bytes are written, so storage keys are computable ahead of persistence.
// uuid.New panics on entropy exhaustion, which is the intended process-fatal
// behavior: id generation has no request-level failure mode.
func Allocate() uuid.UUID {
  return uuid.New()
}

// PreGenerateID attaches a freshly allocated id to the request context. One
// allocation per request; a failed request simply orphans the id, it is never
// recycled.
func PreGenerateID() gin.HandlerFunc {
  return func(c *gin.Context) {
    ctx := c.Request.Context()
    rd := requestdata.GetRequestData(ctx)
    if rd == nil {
      rd = &requestdata.RequestData{}
      ctx = requestdata.WithRequestData(ctx, rd)
      c.Request = c.Request.WithContext(ctx)
    }
    rd.PreGeneratedID = Allocate()
    c.Next()
  }
}
