package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// POST /api/reports
// body: { "user_id": "...", "period_start": "YYYY-MM-DD", "period_end": "YYYY-MM-DD", "program_type": "..." }
func (h *ReportHandler) Create(c *gin.Context) {
	var req services.CreateReportInput
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.reportService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"report": r})
}

// GET /api/reports?user_id=&status=&limit=&offset=
func (h *ReportHandler) List(c *gin.Context) {
	userID, ok := queryUUID(c, "user_id")
	if !ok {
		return
	}
	limit, offset, ok := queryPage(c)
	if !ok {
		return
	}
	rows, err := h.reportService.List(c.Request.Context(), services.ListReportsInput{
		UserID: userID,
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reports": rows})
}

// GET /api/reports/:id
// Drafts are recomputed on every load; final reports come back as stored.
func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.reportService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": r})
}

// PUT /api/reports/:id
// body: section notes plus optional "finalize": true
func (h *ReportHandler) Save(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.SaveReportInput
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.reportService.Save(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": r})
}

// POST /api/reports/:id/finalize
func (h *ReportHandler) Finalize(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.reportService.Finalize(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": r})
}

// DELETE /api/reports/:id
func (h *ReportHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reportService.DeleteDraft(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
