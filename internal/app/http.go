package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http"
	httpH "github.com/yungbote/quidz-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quidz-backend/internal/http/middleware"
	"github.com/yungbote/quidz-backend/internal/observability"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	User      *httpH.UserHandler
	Realtime  *httpH.RealtimeHandler
	Task      *httpH.TaskHandler
	Absence   *httpH.AbsenceHandler
	Skill     *httpH.SkillHandler
	Project   *httpH.ProjectHandler
	Flashcard *httpH.FlashcardHandler
	Document  *httpH.DocumentHandler
	Calendar  *httpH.CalendarHandler
	Tool      *httpH.ToolHandler
	Mood      *httpH.MoodHandler
	Badge     *httpH.BadgeHandler
	Chat      *httpH.ChatHandler
	Assistant *httpH.AssistantHandler
	Report    *httpH.ReportHandler
	Dashboard *httpH.DashboardHandler
	Export    *httpH.ExportHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Auth:      httpH.NewAuthHandler(services.Auth),
		User:      httpH.NewUserHandler(services.User),
		Realtime:  httpH.NewRealtimeHandler(log, sseHub),
		Task:      httpH.NewTaskHandler(services.Task),
		Absence:   httpH.NewAbsenceHandler(services.Absence),
		Skill:     httpH.NewSkillHandler(services.Skill),
		Project:   httpH.NewProjectHandler(services.Project),
		Flashcard: httpH.NewFlashcardHandler(services.Flashcard),
		Document:  httpH.NewDocumentHandler(services.Document),
		Calendar:  httpH.NewCalendarHandler(services.Calendar),
		Tool:      httpH.NewToolHandler(services.Tool),
		Mood:      httpH.NewMoodHandler(services.Mood, services.Feedback),
		Badge:     httpH.NewBadgeHandler(services.Badge),
		Chat:      httpH.NewChatHandler(services.Chat),
		Assistant: httpH.NewAssistantHandler(services.Assistant),
		Report:    httpH.NewReportHandler(services.Report),
		Dashboard: httpH.NewDashboardHandler(services.Dashboard),
		Export:    httpH.NewExportHandler(services.Export),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, emitter httpMW.Emitter, handlers Handlers, middleware Middleware) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = observability.ServiceName(cfg.Otel)
	}
	return http.NewRouter(http.RouterConfig{
		Log:         log,
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,
		Emitter:     emitter,

		AuthMiddleware: middleware.Auth,

		HealthHandler:    handlers.Health,
		AuthHandler:      handlers.Auth,
		UserHandler:      handlers.User,
		RealtimeHandler:  handlers.Realtime,
		TaskHandler:      handlers.Task,
		AbsenceHandler:   handlers.Absence,
		SkillHandler:     handlers.Skill,
		ProjectHandler:   handlers.Project,
		FlashcardHandler: handlers.Flashcard,
		DocumentHandler:  handlers.Document,
		CalendarHandler:  handlers.Calendar,
		ToolHandler:      handlers.Tool,
		MoodHandler:      handlers.Mood,
		BadgeHandler:     handlers.Badge,
		ChatHandler:      handlers.Chat,
		AssistantHandler: handlers.Assistant,
		ReportHandler:    handlers.Report,
		DashboardHandler: handlers.Dashboard,
		ExportHandler:    handlers.Export,
	})
}
