package ctxutil

import (
	"context"

	"github.com/yungbote/quidz-backend/internal/realtime"
)

type sseDataKey struct{}

// SSEData collects realtime messages produced while handling one request.
type SSEData struct {
	Messages []realtime.SSEMessage
}

func WithSSEData(ctx context.Context) context.Context {
	data := &SSEData{
		Messages: make([]realtime.SSEMessage, 0),
	}
	return with(ctx, sseDataKey{}, data)
}

func GetSSEData(ctx context.Context) *SSEData {
	if ctx == nil {
		return nil
	}
	ssd, ok := ctx.Value(sseDataKey{}).(*SSEData)
	if !ok {
		return nil
	}
	return ssd
}

func (d *SSEData) AppendMessage(msg realtime.SSEMessage) {
	d.Messages = append(d.Messages, msg)
}
