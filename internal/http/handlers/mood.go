package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type MoodHandler struct {
	moodService     services.MoodService
	feedbackService services.FeedbackService
}

func NewMoodHandler(moodService services.MoodService, feedbackService services.FeedbackService) *MoodHandler {
	return &MoodHandler{moodService: moodService, feedbackService: feedbackService}
}

// POST /api/mood
// body: { "mood_value": 1..5, "note": "..." }
func (h *MoodHandler) Record(c *gin.Context) {
	var req services.MoodInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.moodService.Record(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"entry": entry})
}

// GET /api/mood?user_id=&from=&to=
func (h *MoodHandler) List(c *gin.Context) {
	userID, ok := queryUUID(c, "user_id")
	if !ok {
		return
	}
	p, ok := queryPeriod(c)
	if !ok {
		return
	}
	rows, err := h.moodService.List(c.Request.Context(), userID, p)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": rows})
}

// GET /api/feedback/questions/open
func (h *MoodHandler) ListOpenQuestions(c *gin.Context) {
	rows, err := h.feedbackService.ListOpen(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"questions": rows})
}

// POST /api/feedback/questions/:id/answer
func (h *MoodHandler) Answer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.AnswerQuestionInput
	if !bindJSON(c, &req) {
		return
	}
	ans, err := h.feedbackService.Answer(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"answer": ans})
}

// GET /api/feedback/questions
func (h *MoodHandler) ListQuestions(c *gin.Context) {
	rows, err := h.feedbackService.ListQuestions(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"questions": rows})
}

// POST /api/feedback/questions
func (h *MoodHandler) CreateQuestion(c *gin.Context) {
	var req services.QuestionInput
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.feedbackService.CreateQuestion(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"question": q})
}

// PUT /api/feedback/questions/:id
func (h *MoodHandler) UpdateQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.QuestionInput
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.feedbackService.UpdateQuestion(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"question": q})
}

// DELETE /api/feedback/questions/:id
func (h *MoodHandler) DeleteQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.feedbackService.DeleteQuestion(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/feedback/answers?question_id=
func (h *MoodHandler) ListAnswers(c *gin.Context) {
	questionID, ok := queryUUID(c, "question_id")
	if !ok {
		return
	}
	rows, err := h.feedbackService.ListAnswers(c.Request.Context(), questionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"answers": rows})
}
