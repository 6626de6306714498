package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quidz-backend/internal/pkg/ctxutil"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

// quietRoutes are polled or long-lived; successful requests on them log at debug.
var quietRoutes = map[string]bool{
	"/healthcheck":    true,
	"/readyz":         true,
	"/api/sse/stream": true,
}

// RequestLogger writes one line per request: route, status, latency, the
// trace ids and, once authenticated, the caller and its role.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx := c.Request.Context()

		fields := []any{
			"method", strings.ToUpper(c.Request.Method),
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		}
		fields = append(fields, ctxutil.GetTraceData(ctx).LogFields()...)
		if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
			fields = append(fields, "user_id", rd.UserID.String(), "role", roleLabel(rd))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case quietRoutes[route]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func roleLabel(rd *ctxutil.RequestData) string {
	switch {
	case rd.Roles.IsAdmin:
		return "admin"
	case rd.Roles.IsCoach:
		return "coach"
	default:
		return "participant"
	}
}
