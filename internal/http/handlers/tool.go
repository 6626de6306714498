package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type ToolHandler struct {
	toolService services.ToolService
}

func NewToolHandler(toolService services.ToolService) *ToolHandler {
	return &ToolHandler{toolService: toolService}
}

// GET /api/tools?category_id=
func (h *ToolHandler) List(c *gin.Context) {
	categoryID, ok := queryUUID(c, "category_id")
	if !ok {
		return
	}
	rows, err := h.toolService.List(c.Request.Context(), categoryID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tools": rows})
}

// POST /api/tools
func (h *ToolHandler) Create(c *gin.Context) {
	var req services.ToolInput
	if !bindJSON(c, &req) {
		return
	}
	tool, err := h.toolService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"tool": tool})
}

// PATCH /api/tools/:id
func (h *ToolHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateToolInput
	if !bindJSON(c, &req) {
		return
	}
	tool, err := h.toolService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tool": tool})
}

// DELETE /api/tools/:id
func (h *ToolHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.toolService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
