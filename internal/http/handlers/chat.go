package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// POST /api/chat/messages
// body: { "recipient_id": "...", "content": "..." }
func (h *ChatHandler) Send(c *gin.Context) {
	var req services.SendMessageInput
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.chatService.Send(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"message": msg})
}

// GET /api/chat/conversations/:peer_id/messages?before=&limit=
// Messages come back oldest first; pass the oldest created_at as before to
// page backwards.
func (h *ChatHandler) ListWith(c *gin.Context) {
	peerID, ok := pathID(c, "peer_id")
	if !ok {
		return
	}
	var before *time.Time
	if raw := strings.TrimSpace(c.Query("before")); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		before = &t
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	msgs, err := h.chatService.ListWith(c.Request.Context(), peerID, before, limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}

// GET /api/chat/conversations?limit=
func (h *ChatHandler) ListConversations(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	convs, err := h.chatService.ListConversations(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": convs})
}

// GET /api/chat/unread
func (h *ChatHandler) CountUnread(c *gin.Context) {
	n, err := h.chatService.CountUnread(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"unread": n})
}

// PATCH /api/chat/messages/:id
func (h *ChatHandler) Edit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.EditMessageInput
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.chatService.Edit(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": msg})
}

// DELETE /api/chat/messages/:id
func (h *ChatHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.chatService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/chat/conversations/:peer_id/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	peerID, ok := pathID(c, "peer_id")
	if !ok {
		return
	}
	n, err := h.chatService.MarkRead(c.Request.Context(), peerID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"marked": n})
}
