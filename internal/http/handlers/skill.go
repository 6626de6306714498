package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type SkillHandler struct {
	skillService services.SkillService
}

func NewSkillHandler(skillService services.SkillService) *SkillHandler {
	return &SkillHandler{skillService: skillService}
}

// POST /api/skills
func (h *SkillHandler) Create(c *gin.Context) {
	var req services.CreateSkillInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.skillService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"skill": s})
}

// GET /api/skills/mine?status=
func (h *SkillHandler) ListMine(c *gin.Context) {
	rows, err := h.skillService.ListMine(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skills": rows})
}

// GET /api/skills?user_id=&status=&limit=&offset=
func (h *SkillHandler) List(c *gin.Context) {
	userID, ok := queryUUID(c, "user_id")
	if !ok {
		return
	}
	limit, offset, ok := queryPage(c)
	if !ok {
		return
	}
	rows, err := h.skillService.List(c.Request.Context(), services.ListSkillsInput{
		UserID: userID,
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skills": rows})
}

// GET /api/skills/:id
func (h *SkillHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.skillService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skill": s})
}

// PATCH /api/skills/:id
func (h *SkillHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateSkillInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.skillService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skill": s})
}

// POST /api/skills/:id/proof (multipart/form-data, field "file")
func (h *SkillHandler) UploadProof(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	up, closeFn, ok := formUpload(c, "file")
	if !ok {
		return
	}
	defer closeFn()
	s, err := h.skillService.UploadProof(c.Request.Context(), id, up)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skill": s})
}

// POST /api/skills/:id/review
func (h *SkillHandler) Review(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ReviewSkillInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.skillService.Review(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skill": s})
}

// DELETE /api/skills/:id
func (h *SkillHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.skillService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
