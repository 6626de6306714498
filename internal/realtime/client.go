package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	closeMu  sync.Once
	Logger   *logger.Logger

	// closed is guarded by the hub's mu.
	closed bool
}
