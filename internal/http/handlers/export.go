package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) send(c *gin.Context, file *services.ExportFile, err error) {
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondFile(c, file.Filename, file.ContentType, file.Body)
}

// GET /api/exports/portfolio.pdf?user_id=
func (h *ExportHandler) PortfolioPDF(c *gin.Context) {
	userID, ok := queryUUID(c, "user_id")
	if !ok {
		return
	}
	file, err := h.exportService.PortfolioPDF(c.Request.Context(), userID)
	h.send(c, file, err)
}

// GET /api/exports/flashcards.pdf?category_id=&tag_id=&mine=
func (h *ExportHandler) FlashcardsPDF(c *gin.Context) {
	in, ok := listInput(c)
	if !ok {
		return
	}
	file, err := h.exportService.FlashcardsPDF(c.Request.Context(), in)
	h.send(c, file, err)
}

// GET /api/exports/flashcards.csv?category_id=&tag_id=&mine=
func (h *ExportHandler) FlashcardsCSV(c *gin.Context) {
	in, ok := listInput(c)
	if !ok {
		return
	}
	file, err := h.exportService.FlashcardsCSV(c.Request.Context(), in)
	h.send(c, file, err)
}

// GET /api/reports/:id/pdf
func (h *ExportHandler) ReportPDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	file, err := h.exportService.ReportPDF(c.Request.Context(), id)
	h.send(c, file, err)
}

// GET /api/exports/feedback.csv?question_id=
func (h *ExportHandler) FeedbackAnswersCSV(c *gin.Context) {
	questionID, ok := queryUUID(c, "question_id")
	if !ok {
		return
	}
	file, err := h.exportService.FeedbackAnswersCSV(c.Request.Context(), questionID)
	h.send(c, file, err)
}
