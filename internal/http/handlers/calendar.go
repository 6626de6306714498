package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

// defaultCalendarWindow is the range listed when the client sends no bounds.
const defaultCalendarWindow = 31 * 24 * time.Hour

type CalendarHandler struct {
	calendarService services.CalendarService
}

func NewCalendarHandler(calendarService services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// GET /api/calendar?from=&until=&user_id=
func (h *CalendarHandler) List(c *gin.Context) {
	from, ok := queryTime(c, "from", time.Now().UTC().Truncate(24*time.Hour))
	if !ok {
		return
	}
	until, ok := queryTime(c, "until", from.Add(defaultCalendarWindow))
	if !ok {
		return
	}
	userID, ok := queryUUID(c, "user_id")
	if !ok {
		return
	}
	events, err := h.calendarService.List(c.Request.Context(), from, until, userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"events": events})
}

// POST /api/calendar
func (h *CalendarHandler) Create(c *gin.Context) {
	var req services.CalendarEventInput
	if !bindJSON(c, &req) {
		return
	}
	ev, err := h.calendarService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"event": ev})
}

// PATCH /api/calendar/:id
func (h *CalendarHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateCalendarEventInput
	if !bindJSON(c, &req) {
		return
	}
	ev, err := h.calendarService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"event": ev})
}

// DELETE /api/calendar/:id
func (h *CalendarHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.calendarService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
