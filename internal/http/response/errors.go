package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/quidz-backend/internal/pkg/errors"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
)

// RespondServiceError renders err with the status and code it carries.
// Errors without one fall back to the sentinel they wrap, then to 500.
func RespondServiceError(c *gin.Context, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr)
		return
	}
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, pkgerrors.ErrForbidden):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	default:
		c.Error(err)
		RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal error"))
	}
}
