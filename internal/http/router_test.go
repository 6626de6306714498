package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	"github.com/yungbote/quidz-backend/internal/data/repos/testutil"
	"github.com/yungbote/quidz-backend/internal/domain/user"
	httpH "github.com/yungbote/quidz-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quidz-backend/internal/http/middleware"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/realtime"
	"github.com/yungbote/quidz-backend/internal/services"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (r *recordingEmitter) Emit(_ context.Context, msgs ...realtime.SSEMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msgs...)
}

func (r *recordingEmitter) sent(event realtime.SSEEvent, channel string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.Event == event && m.Channel == channel {
			return true
		}
	}
	return false
}

type testAPI struct {
	t       *testing.T
	engine  *gin.Engine
	roles   repos.UserRoleRepo
	emitter *recordingEmitter
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := testutil.DB(t)
	log := testutil.Logger(t)

	profiles := repos.NewProfileRepo(gdb, log)
	roles := repos.NewUserRoleRepo(gdb, log)
	tokens := repos.NewUserTokenRepo(gdb, log)
	tasks := repos.NewTaskRepo(gdb, log)
	absences := repos.NewAbsenceRepo(gdb, log)
	skills := repos.NewSkillRepo(gdb, log)
	moods := repos.NewMoodRepo(gdb, log)
	learning := repos.NewLearningProgressRepo(gdb, log)
	badges := repos.NewBadgeRepo(gdb, log)
	reports := repos.NewReportRepo(gdb, log)
	cards := repos.NewFlashcardRepo(gdb, log)
	cats := repos.NewCategoryRepo(gdb, log)

	authSvc := services.NewAuthService(gdb, log, profiles, roles, tokens, nil, "test-secret", time.Hour, 24*time.Hour)
	progressSvc := services.NewProgressService(gdb, log, tasks, absences, skills, learning, moods)
	userSvc := services.NewUserService(gdb, log, profiles, roles, nil, progressSvc)
	taskSvc := services.NewTaskService(gdb, log, tasks, skills, profiles, nil)
	reportSvc := services.NewReportService(gdb, log, reports, profiles, progressSvc)
	flashSvc := services.NewFlashcardService(gdb, log, cards, cats, repos.NewTagRepo(gdb, log), learning, repos.NewFlashcardFeedbackRepo(gdb, log), badges, nil)
	dashSvc := services.NewDashboardService(log, progressSvc, tasks, badges, profiles, absences, skills, moods, reports)
	exportSvc := services.NewExportService(log, profiles, repos.NewProjectRepo(gdb, log), skills, cats, flashSvc, reportSvc, nil)

	emitter := &recordingEmitter{}
	engine := NewRouter(RouterConfig{
		Log:              log,
		Emitter:          emitter,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, authSvc),
		HealthHandler:    httpH.NewHealthHandler(nil),
		AuthHandler:      httpH.NewAuthHandler(authSvc),
		UserHandler:      httpH.NewUserHandler(userSvc),
		TaskHandler:      httpH.NewTaskHandler(taskSvc),
		ReportHandler:    httpH.NewReportHandler(reportSvc),
		FlashcardHandler: httpH.NewFlashcardHandler(flashSvc),
		DashboardHandler: httpH.NewDashboardHandler(dashSvc),
		ExportHandler:    httpH.NewExportHandler(exportSvc),
	})
	return &testAPI{t: t, engine: engine, roles: roles, emitter: emitter}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

// signup registers and logs in a user, returning its id and access token.
func (a *testAPI) signup(email string) (uuid.UUID, string) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/register", "", gin.H{"email": email, "password": "geheim123", "full_name": "Erika Muster"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg struct {
		UserID uuid.UUID `json:"user_id"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &reg))

	rec = a.do(http.MethodPost, "/api/login", "", gin.H{"email": email, "password": "geheim123"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var tokens services.AuthTokens
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	require.NotEmpty(a.t, tokens.AccessToken)
	return reg.UserID, tokens.AccessToken
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Error.Code
}

func TestRouterAuthAndRoleGates(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signup("teilnehmer@example.com")

	rec := api.do(http.MethodGet, "/api/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/me", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Me struct {
			IsAdmin bool     `json:"is_admin"`
			IsStaff bool     `json:"is_staff"`
			Roles   []string `json:"roles"`
		} `json:"me"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.False(t, me.Me.IsAdmin)
	require.False(t, me.Me.IsStaff)
	require.Equal(t, []string{user.RoleUser}, me.Me.Roles)

	rec = api.do(http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "staff_only", errorCode(t, rec))

	rec = api.do(http.MethodGet, "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterTaskFlowDeliversEventsAfterSuccess(t *testing.T) {
	api := newTestAPI(t)
	participantID, participant := api.signup("p@example.com")
	coachID, coach := api.signup("coach@example.com")
	require.NoError(t, api.roles.Grant(dbctx.Context{Ctx: context.Background()}, coachID, user.RoleCoach))

	rec := api.do(http.MethodPost, "/api/tasks", coach, gin.H{"title": "Lebenslauf", "assigned_to": participantID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Tasks []struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created.Tasks, 1)
	require.True(t, api.emitter.sent(realtime.SSEEventTaskAssigned, participantID.String()))

	taskPath := "/api/tasks/" + created.Tasks[0].ID.String()
	rec = api.do(http.MethodPatch, taskPath+"/status", participant, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPatch, taskPath, participant, gin.H{"title": "anders"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/dashboard", participant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash struct {
		Progress struct {
			TasksTotal     int64 `json:"tasks_total"`
			TasksCompleted int64 `json:"tasks_completed"`
		} `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	require.EqualValues(t, 1, dash.Progress.TasksTotal)
	require.EqualValues(t, 1, dash.Progress.TasksCompleted)

	rec = api.do(http.MethodGet, "/api/tasks/not-a-uuid", participant, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_id", errorCode(t, rec))
}

func TestRouterReportValidationAndExport(t *testing.T) {
	api := newTestAPI(t)
	participantID, _ := api.signup("p@example.com")
	coachID, coach := api.signup("coach@example.com")
	require.NoError(t, api.roles.Grant(dbctx.Context{Ctx: context.Background()}, coachID, user.RoleCoach))

	rec := api.do(http.MethodPost, "/api/reports", coach, gin.H{
		"user_id":      participantID,
		"period_start": "2026-03-31",
		"period_end":   "2026-03-01",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_period", errorCode(t, rec))

	rec = api.do(http.MethodPost, "/api/reports", coach, gin.H{
		"user_id":      participantID,
		"period_start": "2026-03-01",
		"period_end":   "2026-03-31",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Report struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "draft", created.Report.Status)

	reportPath := "/api/reports/" + created.Report.ID.String()
	rec = api.do(http.MethodPost, reportPath+"/finalize", coach, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, api.emitter.sent(realtime.SSEEventReportFinalized, participantID.String()))

	rec = api.do(http.MethodPut, reportPath, coach, gin.H{"outlook": "weiter so"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "report_finalized", errorCode(t, rec))

	rec = api.do(http.MethodGet, reportPath+"/pdf", coach, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment; filename=\"bericht-"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestRouterFailedRequestsDropEvents(t *testing.T) {
	api := newTestAPI(t)
	_, participant := api.signup("p@example.com")

	rec := api.do(http.MethodPost, "/api/flashcards", participant, gin.H{"front_text": "Frage", "back_text": "Antwort"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, api.emitter.msgs, 1)

	rec = api.do(http.MethodPost, "/api/flashcards", participant, gin.H{"front_text": " ", "back_text": "Antwort"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation_failed", errorCode(t, rec))
	require.Len(t, api.emitter.msgs, 1)

	rec = api.do(http.MethodGet, "/api/exports/flashcards.csv", participant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
}
