package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type AssistantHandler struct {
	assistantService services.AssistantService
}

func NewAssistantHandler(assistantService services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

// POST /api/assistant/messages
// body: { "content": "..." }
// The reply is persisted; clients refetch the thread.
func (h *AssistantHandler) Send(c *gin.Context) {
	var req services.AssistantMessageInput
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.assistantService.Send(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, reply)
}

// GET /api/assistant/messages?limit=
func (h *AssistantHandler) ListThread(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	msgs, err := h.assistantService.ListThread(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}

// DELETE /api/assistant/messages
func (h *AssistantHandler) ClearThread(c *gin.Context) {
	n, err := h.assistantService.ClearThread(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": n})
}
