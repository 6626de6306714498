package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type BadgeHandler struct {
	badgeService services.BadgeService
}

func NewBadgeHandler(badgeService services.BadgeService) *BadgeHandler {
	return &BadgeHandler{badgeService: badgeService}
}

// GET /api/badges/mine
func (h *BadgeHandler) ListMine(c *gin.Context) {
	rows, err := h.badgeService.ListMine(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"badges": rows})
}

// GET /api/users/:id/badges
func (h *BadgeHandler) ListForUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.badgeService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"badges": rows})
}

// POST /api/badges
// body: { "user_id": "...", "badge_type": "..." }
func (h *BadgeHandler) Award(c *gin.Context) {
	var req services.AwardBadgeInput
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.badgeService.Award(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"badge": b})
}

// DELETE /api/users/:id/badges/:type
func (h *BadgeHandler) Revoke(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.badgeService.Revoke(c.Request.Context(), userID, c.Param("type")); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
