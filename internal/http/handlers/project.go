package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.ProjectInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.projectService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"project": p})
}

// GET /api/projects/mine
func (h *ProjectHandler) ListMine(c *gin.Context) {
	rows, err := h.projectService.ListMine(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": rows})
}

// GET /api/users/:id/projects
func (h *ProjectHandler) ListForUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.projectService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": rows})
}

// GET /api/projects/gallery?category=&featured=true&limit=&offset=
func (h *ProjectHandler) Gallery(c *gin.Context) {
	limit, offset, ok := queryPage(c)
	if !ok {
		return
	}
	items, err := h.projectService.Gallery(c.Request.Context(), services.GalleryInput{
		Category:     c.Query("category"),
		FeaturedOnly: c.Query("featured") == "true",
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": items})
}

// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.projectService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": p})
}

// PATCH /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProjectInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.projectService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": p})
}

// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/projects/:id/image (multipart/form-data, field "file")
func (h *ProjectHandler) UploadImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	up, closeFn, ok := formUpload(c, "file")
	if !ok {
		return
	}
	defer closeFn()
	p, err := h.projectService.UploadImage(c.Request.Context(), id, up)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": p})
}

// PUT /api/projects/:id/like
func (h *ProjectHandler) Like(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projectService.Like(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /api/projects/:id/like
func (h *ProjectHandler) Unlike(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projectService.Unlike(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PUT /api/projects/:id/featured
// body: { "featured": true }
func (h *ProjectHandler) SetFeatured(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Featured bool `json:"featured"`
	}
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.projectService.SetFeatured(c.Request.Context(), id, req.Featured)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": p})
}

// PUT /api/projects/:id/skills/:skill_id
func (h *ProjectHandler) LinkSkill(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	skillID, ok := pathID(c, "skill_id")
	if !ok {
		return
	}
	ids, err := h.projectService.LinkSkill(c.Request.Context(), projectID, skillID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skill_ids": ids})
}

// DELETE /api/projects/:id/skills/:skill_id
func (h *ProjectHandler) UnlinkSkill(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	skillID, ok := pathID(c, "skill_id")
	if !ok {
		return
	}
	ids, err := h.projectService.UnlinkSkill(c.Request.Context(), projectID, skillID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skill_ids": ids})
}
