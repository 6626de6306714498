package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

const headerIdempotencyKey = "Idempotency-Key"

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// POST /api/tasks
// A repeated Idempotency-Key returns the rows created by the first request.
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.CreateTaskInput
	if !bindJSON(c, &req) {
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(headerIdempotencyKey))
	tasks, err := h.taskService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"tasks": tasks})
}

// GET /api/tasks/mine?status=
func (h *TaskHandler) ListMine(c *gin.Context) {
	tasks, err := h.taskService.ListMine(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tasks": tasks})
}

// GET /api/tasks?assigned_to=&status=&limit=&offset=
func (h *TaskHandler) List(c *gin.Context) {
	assignee, ok := queryUUID(c, "assigned_to")
	if !ok {
		return
	}
	limit, offset, ok := queryPage(c)
	if !ok {
		return
	}
	tasks, err := h.taskService.List(c.Request.Context(), services.ListTasksInput{
		AssignedTo: assignee,
		Status:     c.Query("status"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tasks": tasks})
}

// GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.taskService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"task": task})
}

// PATCH /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateTaskInput
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.taskService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"task": task})
}

// PATCH /api/tasks/:id/status
// body: { "status": "in_progress" }
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.taskService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"task": task})
}

// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.taskService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/tasks/:id/attachment (multipart/form-data, field "file")
func (h *TaskHandler) UploadAttachment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	up, closeFn, ok := formUpload(c, "file")
	if !ok {
		return
	}
	defer closeFn()
	task, err := h.taskService.UploadAttachment(c.Request.Context(), id, up)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"task": task})
}

// PUT /api/tasks/:id/skills/:skill_id
func (h *TaskHandler) LinkSkill(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	skillID, ok := pathID(c, "skill_id")
	if !ok {
		return
	}
	ids, err := h.taskService.LinkSkill(c.Request.Context(), taskID, skillID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skill_ids": ids})
}

// DELETE /api/tasks/:id/skills/:skill_id
func (h *TaskHandler) UnlinkSkill(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	skillID, ok := pathID(c, "skill_id")
	if !ok {
		return
	}
	ids, err := h.taskService.UnlinkSkill(c.Request.Context(), taskID, skillID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skill_ids": ids})
}
