package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type FlashcardHandler struct {
	flashcardService services.FlashcardService
}

func NewFlashcardHandler(flashcardService services.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{flashcardService: flashcardService}
}

// listInput reads ?category_id=&tag_id=&mine=true&limit=&offset=.
func listInput(c *gin.Context) (services.ListFlashcardsInput, bool) {
	categoryID, ok := queryUUID(c, "category_id")
	if !ok {
		return services.ListFlashcardsInput{}, false
	}
	tagID, ok := queryUUID(c, "tag_id")
	if !ok {
		return services.ListFlashcardsInput{}, false
	}
	limit, offset, ok := queryPage(c)
	if !ok {
		return services.ListFlashcardsInput{}, false
	}
	return services.ListFlashcardsInput{
		CategoryID: categoryID,
		TagID:      tagID,
		Mine:       c.Query("mine") == "true",
		Limit:      limit,
		Offset:     offset,
	}, true
}

// POST /api/flashcards
func (h *FlashcardHandler) Create(c *gin.Context) {
	var req services.FlashcardInput
	if !bindJSON(c, &req) {
		return
	}
	card, err := h.flashcardService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"flashcard": card})
}

// GET /api/flashcards
func (h *FlashcardHandler) List(c *gin.Context) {
	in, ok := listInput(c)
	if !ok {
		return
	}
	cards, err := h.flashcardService.List(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"flashcards": cards})
}

// GET /api/flashcards/:id
func (h *FlashcardHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	card, err := h.flashcardService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"flashcard": card})
}

// PATCH /api/flashcards/:id
func (h *FlashcardHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateFlashcardInput
	if !bindJSON(c, &req) {
		return
	}
	card, err := h.flashcardService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"flashcard": card})
}

// DELETE /api/flashcards/:id
func (h *FlashcardHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.flashcardService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/flashcards/:id/answers
// body: { "knew_answer": true }
func (h *FlashcardHandler) RecordAnswer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.AnswerInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.flashcardService.RecordAnswer(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// PUT /api/flashcards/:id/feedback
func (h *FlashcardHandler) RecordFeedback(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.FlashcardFeedbackInput
	if !bindJSON(c, &req) {
		return
	}
	if err := h.flashcardService.RecordFeedback(c.Request.Context(), id, req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/flashcards/:id/feedback
func (h *FlashcardHandler) ListFeedback(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.flashcardService.ListFeedback(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"feedback": rows})
}

// GET /api/categories
func (h *FlashcardHandler) ListCategories(c *gin.Context) {
	rows, err := h.flashcardService.ListCategories(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": rows})
}

// POST /api/categories
func (h *FlashcardHandler) CreateCategory(c *gin.Context) {
	var req services.NameInput
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.flashcardService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"category": cat})
}

// PATCH /api/categories/:id
func (h *FlashcardHandler) RenameCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.NameInput
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.flashcardService.RenameCategory(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"category": cat})
}

// DELETE /api/categories/:id
func (h *FlashcardHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.flashcardService.DeleteCategory(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/tags
func (h *FlashcardHandler) ListTags(c *gin.Context) {
	rows, err := h.flashcardService.ListTags(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tags": rows})
}

// POST /api/tags
func (h *FlashcardHandler) CreateTag(c *gin.Context) {
	var req services.NameInput
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.flashcardService.CreateTag(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"tag": tag})
}

// DELETE /api/tags/:id
func (h *FlashcardHandler) DeleteTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.flashcardService.DeleteTag(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
