package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/pkg/ctxutil"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

// Emitter delivers realtime messages to subscribers.
type Emitter interface {
	Emit(ctx context.Context, msgs ...realtime.SSEMessage)
}

// AttachRequestContext gives every request an SSEData collector and, once the
// handler has succeeded, hands the collected messages to emitter. Failed
// requests drop their messages.
func AttachRequestContext(emitter Emitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithSSEData(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if emitter == nil || c.Writer.Status() >= 400 {
			return
		}
		ssd := ctxutil.GetSSEData(ctx)
		if ssd == nil || len(ssd.Messages) == 0 {
			return
		}
		emitter.Emit(context.WithoutCancel(ctx), ssd.Messages...)
	}
}
