package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yungbote/quidz-backend/internal/pkg/errors"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error", apierr.Conflict("report_finalized", nil), http.StatusConflict, "report_finalized"},
		{"wrapped api error", fmt.Errorf("save: %w", apierr.NotFound("task_not_found")), http.StatusNotFound, "task_not_found"},
		{"sentinel", fmt.Errorf("lookup: %w", pkgerrors.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"unknown", fmt.Errorf("dial tcp: refused"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondServiceError(c, tc.err)

			require.Equal(t, tc.status, rec.Code)
			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			require.Equal(t, tc.code, env.Error.Code)
		})
	}
}

func TestRespondServiceErrorHidesInternalMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondServiceError(c, fmt.Errorf("password=hunter2"))
	require.NotContains(t, rec.Body.String(), "hunter2")
}
