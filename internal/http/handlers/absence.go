package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type AbsenceHandler struct {
	absenceService services.AbsenceService
}

func NewAbsenceHandler(absenceService services.AbsenceService) *AbsenceHandler {
	return &AbsenceHandler{absenceService: absenceService}
}

// POST /api/absences
func (h *AbsenceHandler) Create(c *gin.Context) {
	var req services.CreateAbsenceInput
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.absenceService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"absence": a})
}

// GET /api/absences/mine?from=&to=
func (h *AbsenceHandler) ListMine(c *gin.Context) {
	p, ok := queryPeriod(c)
	if !ok {
		return
	}
	rows, err := h.absenceService.ListMine(c.Request.Context(), p)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"absences": rows})
}

// GET /api/absences?user_id=&status=pending|approved|rejected&from=&to=&limit=&offset=
func (h *AbsenceHandler) List(c *gin.Context) {
	userID, ok := queryUUID(c, "user_id")
	if !ok {
		return
	}
	p, ok := queryPeriod(c)
	if !ok {
		return
	}
	limit, offset, ok := queryPage(c)
	if !ok {
		return
	}
	rows, err := h.absenceService.List(c.Request.Context(), services.ListAbsencesInput{
		UserID: userID,
		Status: c.Query("status"),
		Period: p,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"absences": rows})
}

// POST /api/absences/:id/review
// body: { "approved": true }
func (h *AbsenceHandler) Review(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.absenceService.Review(c.Request.Context(), id, *req.Approved)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"absence": a})
}

// DELETE /api/absences/:id
func (h *AbsenceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.absenceService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
