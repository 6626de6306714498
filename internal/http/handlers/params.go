package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
	"github.com/yungbote/quidz-backend/internal/services"
)

// maxUploadBytes caps every multipart file the API accepts.
const maxUploadBytes = 25 << 20

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("%s must be a uuid", name))
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID returns nil when the parameter is absent.
func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("%s must be a uuid", name))
		return nil, false
	}
	return &id, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_query", fmt.Errorf("%s must be a non-negative integer", name))
		return 0, false
	}
	return n, true
}

func queryPage(c *gin.Context) (limit, offset int, ok bool) {
	if limit, ok = queryInt(c, "limit"); !ok {
		return 0, 0, false
	}
	offset, ok = queryInt(c, "offset")
	return limit, offset, ok
}

// queryPeriod reads ?from=YYYY-MM-DD&to=YYYY-MM-DD; neither set means nil.
func queryPeriod(c *gin.Context) (*period.Period, bool) {
	p, err := period.Parse(c.Query("from"), c.Query("to"))
	if err != nil {
		code := "invalid_period"
		if !errors.Is(err, period.ErrInverted) {
			code = "invalid_date"
		}
		response.RespondError(c, http.StatusBadRequest, code, err)
		return nil, false
	}
	return p, true
}

// queryTime reads an RFC 3339 instant or a YYYY-MM-DD day.
func queryTime(c *gin.Context, name string, fallback time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(period.DateLayout, raw); err == nil {
		return t, true
	}
	response.RespondError(c, http.StatusBadRequest, "invalid_date", fmt.Errorf("%s must be RFC 3339 or YYYY-MM-DD", name))
	return time.Time{}, false
}

// formUpload opens the multipart file in field. The caller must invoke the
// returned close func.
func formUpload(c *gin.Context, field string) (services.Upload, func(), bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return services.Upload{}, nil, false
	}
	if fh.Size > maxUploadBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("max %d bytes", maxUploadBytes))
		return services.Upload{}, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "open_file_failed", err)
		return services.Upload{}, nil, false
	}
	return services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, true
}
