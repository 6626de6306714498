package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type Repos struct {
	Profile   repos.ProfileRepo
	UserRole  repos.UserRoleRepo
	UserToken repos.UserTokenRepo

	Task          repos.TaskRepo
	Absence       repos.AbsenceRepo
	Skill         repos.SkillRepo
	Mood          repos.MoodRepo
	Feedback      repos.FeedbackRepo
	Report        repos.ReportRepo
	CalendarEvent repos.CalendarEventRepo
	Document      repos.DocumentRepo

	Flashcard         repos.FlashcardRepo
	Category          repos.CategoryRepo
	Tag               repos.TagRepo
	LearningProgress  repos.LearningProgressRepo
	FlashcardFeedback repos.FlashcardFeedbackRepo
	Badge             repos.BadgeRepo
	Tool              repos.ToolRepo

	Project     repos.ProjectRepo
	ChatMessage repos.ChatMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Profile:   repos.NewProfileRepo(db, log),
		UserRole:  repos.NewUserRoleRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),

		Task:          repos.NewTaskRepo(db, log),
		Absence:       repos.NewAbsenceRepo(db, log),
		Skill:         repos.NewSkillRepo(db, log),
		Mood:          repos.NewMoodRepo(db, log),
		Feedback:      repos.NewFeedbackRepo(db, log),
		Report:        repos.NewReportRepo(db, log),
		CalendarEvent: repos.NewCalendarEventRepo(db, log),
		Document:      repos.NewDocumentRepo(db, log),

		Flashcard:         repos.NewFlashcardRepo(db, log),
		Category:          repos.NewCategoryRepo(db, log),
		Tag:               repos.NewTagRepo(db, log),
		LearningProgress:  repos.NewLearningProgressRepo(db, log),
		FlashcardFeedback: repos.NewFlashcardFeedbackRepo(db, log),
		Badge:             repos.NewBadgeRepo(db, log),
		Tool:              repos.NewToolRepo(db, log),

		Project:     repos.NewProjectRepo(db, log),
		ChatMessage: repos.NewChatMessageRepo(db, log),
	}
}
