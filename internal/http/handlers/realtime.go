package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/pkg/ctxutil"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]*realtime.SSEClient // key: SessionID (UserToken.ID)
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /api/sse/stream
// Every session is subscribed to its user channel, and staff sessions to the
// staff channel as well.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return
	}
	if rd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing session id"))
		return
	}
	h.log.Info("SSEStream open", "user_id", rd.UserID.String(), "session_id", rd.SessionID.String())

	h.mu.Lock()
	// A session has one stream; a reconnect replaces the old one.
	if existing, ok := h.clients[rd.SessionID]; ok {
		h.hub.CloseClient(existing)
		delete(h.clients, rd.SessionID)
	}
	client := h.hub.NewSSEClient(rd.UserID)
	h.clients[rd.SessionID] = client
	h.mu.Unlock()

	h.hub.AddChannel(client, rd.UserID.String())
	if rd.Roles.IsStaff {
		h.hub.AddChannel(client, realtime.StaffChannel)
	}

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	if h.clients[rd.SessionID] == client {
		delete(h.clients, rd.SessionID)
	}
	h.mu.Unlock()
	h.hub.CloseClient(client)
}

// POST /api/sse/subscribe
// body: { "channel": "..." }
func (h *RealtimeHandler) SSESubscribe(c *gin.Context) {
	client, channel, ok := h.resolve(c)
	if !ok {
		return
	}
	if !h.hub.AddChannel(client, channel) {
		response.RespondError(c, http.StatusConflict, "no_stream", errors.New("SSE connection closed"))
		return
	}
	response.RespondOK(c, gin.H{"message": "subscribed", "channel": channel})
}

// POST /api/sse/unsubscribe
// body: { "channel": "..." }
func (h *RealtimeHandler) SSEUnsubscribe(c *gin.Context) {
	client, channel, ok := h.resolve(c)
	if !ok {
		return
	}
	h.hub.RemoveChannel(client, channel)
	response.RespondOK(c, gin.H{"message": "unsubscribed", "channel": channel})
}

// resolve finds the caller's open stream and checks the requested channel.
// Participants may only use their own channel; staff may use any.
func (h *RealtimeHandler) resolve(c *gin.Context) (*realtime.SSEClient, string, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil || rd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return nil, "", false
	}
	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Channel) == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_channel", errors.New("channel required"))
		return nil, "", false
	}
	channel := strings.TrimSpace(req.Channel)
	if !rd.Roles.IsStaff && channel != rd.UserID.String() {
		response.RespondError(c, http.StatusForbidden, "channel_forbidden", errors.New("channel not allowed"))
		return nil, "", false
	}

	h.mu.RLock()
	client, exists := h.clients[rd.SessionID]
	h.mu.RUnlock()
	if !exists {
		response.RespondError(c, http.StatusConflict, "no_stream", errors.New("no active SSE connection for this session"))
		return nil, "", false
	}
	return client, channel, true
}
