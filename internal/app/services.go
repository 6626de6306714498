package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/services"
)

type Services struct {
	Avatar    services.AvatarService
	Auth      services.AuthService
	User      services.UserService
	Progress  services.ProgressService
	Task      services.TaskService
	Absence   services.AbsenceService
	Skill     services.SkillService
	Project   services.ProjectService
	Flashcard services.FlashcardService
	Document  services.DocumentService
	Calendar  services.CalendarService
	Tool      services.ToolService
	Mood      services.MoodService
	Feedback  services.FeedbackService
	Badge     services.BadgeService
	Chat      services.ChatService
	Assistant services.AssistantService
	Report    services.ReportService
	Dashboard services.DashboardService
	Export    services.ExportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	avatarService, err := services.NewAvatarService(log, clients.Bucket, cfg.AvatarColorsPath)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	authService := services.NewAuthService(
		db, log,
		repos.Profile,
		repos.UserRole,
		repos.UserToken,
		avatarService,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	progressService := services.NewProgressService(db, log, repos.Task, repos.Absence, repos.Skill, repos.LearningProgress, repos.Mood)
	userService := services.NewUserService(db, log, repos.Profile, repos.UserRole, avatarService, progressService)

	taskService := services.NewTaskService(db, log, repos.Task, repos.Skill, repos.Profile, clients.Bucket)
	absenceService := services.NewAbsenceService(db, log, repos.Absence)
	skillService := services.NewSkillService(db, log, repos.Skill, clients.Bucket)
	projectService := services.NewProjectService(db, log, repos.Project, repos.Skill, clients.Bucket)
	flashcardService := services.NewFlashcardService(
		db, log,
		repos.Flashcard,
		repos.Category,
		repos.Tag,
		repos.LearningProgress,
		repos.FlashcardFeedback,
		repos.Badge,
		cfg.LearnedBadgeMilestones,
	)
	documentService := services.NewDocumentService(db, log, repos.Document, repos.Profile, clients.Bucket)
	calendarService := services.NewCalendarService(db, log, repos.CalendarEvent)
	toolService := services.NewToolService(db, log, repos.Tool)
	moodService := services.NewMoodService(log, repos.Mood)
	feedbackService := services.NewFeedbackService(db, log, repos.Feedback)
	badgeService := services.NewBadgeService(db, log, repos.Badge, repos.Profile)

	chatService := services.NewChatService(db, log, repos.ChatMessage, repos.Profile, repos.UserRole)
	assistantService := services.NewAssistantService(
		db, log,
		repos.ChatMessage,
		clients.OpenaiClient,
		cfg.AssistantPrompt,
		cfg.AssistantHistory,
	)

	reportService := services.NewReportService(db, log, repos.Report, repos.Profile, progressService)
	dashboardService := services.NewDashboardService(
		log,
		progressService,
		repos.Task,
		repos.Badge,
		repos.Profile,
		repos.Absence,
		repos.Skill,
		repos.Mood,
		repos.Report,
	)
	exportService := services.NewExportService(
		log,
		repos.Profile,
		repos.Project,
		repos.Skill,
		repos.Category,
		flashcardService,
		reportService,
		feedbackService,
	)

	return Services{
		Avatar:    avatarService,
		Auth:      authService,
		User:      userService,
		Progress:  progressService,
		Task:      taskService,
		Absence:   absenceService,
		Skill:     skillService,
		Project:   projectService,
		Flashcard: flashcardService,
		Document:  documentService,
		Calendar:  calendarService,
		Tool:      toolService,
		Mood:      moodService,
		Feedback:  feedbackService,
		Badge:     badgeService,
		Chat:      chatService,
		Assistant: assistantService,
		Report:    reportService,
		Dashboard: dashboardService,
		Export:    exportService,
	}, nil
}
