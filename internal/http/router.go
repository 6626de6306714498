package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/quidz-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quidz-backend/internal/http/middleware"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Emitter     httpMW.Emitter

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	AuthHandler      *httpH.AuthHandler
	UserHandler      *httpH.UserHandler
	RealtimeHandler  *httpH.RealtimeHandler
	TaskHandler      *httpH.TaskHandler
	AbsenceHandler   *httpH.AbsenceHandler
	SkillHandler     *httpH.SkillHandler
	ProjectHandler   *httpH.ProjectHandler
	FlashcardHandler *httpH.FlashcardHandler
	DocumentHandler  *httpH.DocumentHandler
	CalendarHandler  *httpH.CalendarHandler
	ToolHandler      *httpH.ToolHandler
	MoodHandler      *httpH.MoodHandler
	BadgeHandler     *httpH.BadgeHandler
	ChatHandler      *httpH.ChatHandler
	AssistantHandler *httpH.AssistantHandler
	ReportHandler    *httpH.ReportHandler
	DashboardHandler *httpH.DashboardHandler
	ExportHandler    *httpH.ExportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.AttachRequestContext(cfg.Emitter))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	if cfg.AuthMiddleware == nil {
		return r
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	staff := protected.Group("/")
	staff.Use(cfg.AuthMiddleware.RequireStaff())
	admin := protected.Group("/")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())

	// Auth (protected)
	if cfg.AuthHandler != nil {
		protected.POST("/logout", cfg.AuthHandler.Logout)
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		protected.POST("/sse/subscribe", cfg.RealtimeHandler.SSESubscribe)
		protected.POST("/sse/unsubscribe", cfg.RealtimeHandler.SSEUnsubscribe)
	}

	// User (Me) and user administration
	if cfg.UserHandler != nil {
		protected.GET("/me", cfg.UserHandler.GetMe)
		protected.PATCH("/me", cfg.UserHandler.UpdateMe)
		protected.POST("/me/avatar", cfg.UserHandler.UploadAvatar)

		staff.GET("/users", cfg.UserHandler.ListUsers)
		staff.GET("/users/:id", cfg.UserHandler.GetParticipant)
		admin.PUT("/users/:id/roles", cfg.UserHandler.SetRoles)
	}

	if cfg.DashboardHandler != nil {
		protected.GET("/dashboard", cfg.DashboardHandler.Participant)
		staff.GET("/admin/stats", cfg.DashboardHandler.AdminStats)
	}

	// Tasks
	if cfg.TaskHandler != nil {
		protected.GET("/tasks/mine", cfg.TaskHandler.ListMine)
		protected.GET("/tasks/:id", cfg.TaskHandler.Get)
		protected.PATCH("/tasks/:id/status", cfg.TaskHandler.UpdateStatus)

		staff.POST("/tasks", cfg.TaskHandler.Create)
		staff.GET("/tasks", cfg.TaskHandler.List)
		staff.PATCH("/tasks/:id", cfg.TaskHandler.Update)
		staff.DELETE("/tasks/:id", cfg.TaskHandler.Delete)
		staff.POST("/tasks/:id/attachment", cfg.TaskHandler.UploadAttachment)
		staff.PUT("/tasks/:id/skills/:skill_id", cfg.TaskHandler.LinkSkill)
		staff.DELETE("/tasks/:id/skills/:skill_id", cfg.TaskHandler.UnlinkSkill)
	}

	// Absences
	if cfg.AbsenceHandler != nil {
		protected.POST("/absences", cfg.AbsenceHandler.Create)
		protected.GET("/absences/mine", cfg.AbsenceHandler.ListMine)
		protected.DELETE("/absences/:id", cfg.AbsenceHandler.Delete)

		staff.GET("/absences", cfg.AbsenceHandler.List)
		staff.POST("/absences/:id/review", cfg.AbsenceHandler.Review)
	}

	// Skills
	if cfg.SkillHandler != nil {
		protected.POST("/skills", cfg.SkillHandler.Create)
		protected.GET("/skills/mine", cfg.SkillHandler.ListMine)
		protected.GET("/skills/:id", cfg.SkillHandler.Get)
		protected.PATCH("/skills/:id", cfg.SkillHandler.Update)
		protected.POST("/skills/:id/proof", cfg.SkillHandler.UploadProof)
		protected.DELETE("/skills/:id", cfg.SkillHandler.Delete)

		staff.GET("/skills", cfg.SkillHandler.List)
		staff.POST("/skills/:id/review", cfg.SkillHandler.Review)
	}

	// Portfolio
	if cfg.ProjectHandler != nil {
		protected.POST("/projects", cfg.ProjectHandler.Create)
		protected.GET("/projects/mine", cfg.ProjectHandler.ListMine)
		protected.GET("/projects/gallery", cfg.ProjectHandler.Gallery)
		protected.GET("/projects/:id", cfg.ProjectHandler.Get)
		protected.PATCH("/projects/:id", cfg.ProjectHandler.Update)
		protected.DELETE("/projects/:id", cfg.ProjectHandler.Delete)
		protected.POST("/projects/:id/image", cfg.ProjectHandler.UploadImage)
		protected.PUT("/projects/:id/like", cfg.ProjectHandler.Like)
		protected.DELETE("/projects/:id/like", cfg.ProjectHandler.Unlike)
		protected.PUT("/projects/:id/skills/:skill_id", cfg.ProjectHandler.LinkSkill)
		protected.DELETE("/projects/:id/skills/:skill_id", cfg.ProjectHandler.UnlinkSkill)

		staff.GET("/users/:id/projects", cfg.ProjectHandler.ListForUser)
		staff.PUT("/projects/:id/featured", cfg.ProjectHandler.SetFeatured)
	}

	// Flashcards, categories, tags
	if cfg.FlashcardHandler != nil {
		protected.POST("/flashcards", cfg.FlashcardHandler.Create)
		protected.GET("/flashcards", cfg.FlashcardHandler.List)
		protected.GET("/flashcards/:id", cfg.FlashcardHandler.Get)
		protected.PATCH("/flashcards/:id", cfg.FlashcardHandler.Update)
		protected.DELETE("/flashcards/:id", cfg.FlashcardHandler.Delete)
		protected.POST("/flashcards/:id/answers", cfg.FlashcardHandler.RecordAnswer)
		protected.PUT("/flashcards/:id/feedback", cfg.FlashcardHandler.RecordFeedback)
		protected.GET("/flashcards/:id/feedback", cfg.FlashcardHandler.ListFeedback)
		protected.GET("/categories", cfg.FlashcardHandler.ListCategories)
		protected.GET("/tags", cfg.FlashcardHandler.ListTags)

		staff.POST("/categories", cfg.FlashcardHandler.CreateCategory)
		staff.PATCH("/categories/:id", cfg.FlashcardHandler.RenameCategory)
		staff.DELETE("/categories/:id", cfg.FlashcardHandler.DeleteCategory)
		staff.POST("/tags", cfg.FlashcardHandler.CreateTag)
		staff.DELETE("/tags/:id", cfg.FlashcardHandler.DeleteTag)
	}

	// Documents
	if cfg.DocumentHandler != nil {
		protected.POST("/documents", cfg.DocumentHandler.Upload)
		protected.GET("/documents", cfg.DocumentHandler.List)
		protected.GET("/documents/:id", cfg.DocumentHandler.Get)
		protected.DELETE("/documents/:id", cfg.DocumentHandler.Delete)
	}

	// Calendar
	if cfg.CalendarHandler != nil {
		protected.GET("/calendar", cfg.CalendarHandler.List)
		staff.POST("/calendar", cfg.CalendarHandler.Create)
		staff.PATCH("/calendar/:id", cfg.CalendarHandler.Update)
		staff.DELETE("/calendar/:id", cfg.CalendarHandler.Delete)
	}

	// Tools
	if cfg.ToolHandler != nil {
		protected.GET("/tools", cfg.ToolHandler.List)
		staff.POST("/tools", cfg.ToolHandler.Create)
		staff.PATCH("/tools/:id", cfg.ToolHandler.Update)
		staff.DELETE("/tools/:id", cfg.ToolHandler.Delete)
	}

	// Mood and feedback
	if cfg.MoodHandler != nil {
		protected.POST("/mood", cfg.MoodHandler.Record)
		protected.GET("/mood", cfg.MoodHandler.List)
		protected.GET("/feedback/questions/open", cfg.MoodHandler.ListOpenQuestions)
		protected.POST("/feedback/questions/:id/answer", cfg.MoodHandler.Answer)

		staff.GET("/feedback/questions", cfg.MoodHandler.ListQuestions)
		staff.POST("/feedback/questions", cfg.MoodHandler.CreateQuestion)
		staff.PUT("/feedback/questions/:id", cfg.MoodHandler.UpdateQuestion)
		staff.DELETE("/feedback/questions/:id", cfg.MoodHandler.DeleteQuestion)
		staff.GET("/feedback/answers", cfg.MoodHandler.ListAnswers)
	}

	// Badges
	if cfg.BadgeHandler != nil {
		protected.GET("/badges/mine", cfg.BadgeHandler.ListMine)
		staff.GET("/users/:id/badges", cfg.BadgeHandler.ListForUser)
		staff.POST("/badges", cfg.BadgeHandler.Award)
		staff.DELETE("/users/:id/badges/:type", cfg.BadgeHandler.Revoke)
	}

	// Chat
	if cfg.ChatHandler != nil {
		protected.POST("/chat/messages", cfg.ChatHandler.Send)
		protected.PATCH("/chat/messages/:id", cfg.ChatHandler.Edit)
		protected.DELETE("/chat/messages/:id", cfg.ChatHandler.Delete)
		protected.GET("/chat/conversations", cfg.ChatHandler.ListConversations)
		protected.GET("/chat/conversations/:peer_id/messages", cfg.ChatHandler.ListWith)
		protected.POST("/chat/conversations/:peer_id/read", cfg.ChatHandler.MarkRead)
		protected.GET("/chat/unread", cfg.ChatHandler.CountUnread)
	}

	// Assistant
	if cfg.AssistantHandler != nil {
		protected.POST("/assistant/messages", cfg.AssistantHandler.Send)
		protected.GET("/assistant/messages", cfg.AssistantHandler.ListThread)
		protected.DELETE("/assistant/messages", cfg.AssistantHandler.ClearThread)
	}

	// Reports
	if cfg.ReportHandler != nil {
		staff.POST("/reports", cfg.ReportHandler.Create)
		staff.GET("/reports", cfg.ReportHandler.List)
		staff.GET("/reports/:id", cfg.ReportHandler.Get)
		staff.PUT("/reports/:id", cfg.ReportHandler.Save)
		staff.POST("/reports/:id/finalize", cfg.ReportHandler.Finalize)
		staff.DELETE("/reports/:id", cfg.ReportHandler.Delete)
	}

	// Exports
	if cfg.ExportHandler != nil {
		protected.GET("/exports/portfolio.pdf", cfg.ExportHandler.PortfolioPDF)
		protected.GET("/exports/flashcards.pdf", cfg.ExportHandler.FlashcardsPDF)
		protected.GET("/exports/flashcards.csv", cfg.ExportHandler.FlashcardsCSV)
		staff.GET("/exports/feedback.csv", cfg.ExportHandler.FeedbackAnswersCSV)
		staff.GET("/reports/:id/pdf", cfg.ExportHandler.ReportPDF)
	}

	return r
}
