package repos

import (
	"github.com/yungbote/quidz-backend/internal/data/repos/auth"
	"github.com/yungbote/quidz-backend/internal/data/repos/chat"
	"github.com/yungbote/quidz-backend/internal/data/repos/coaching"
	"github.com/yungbote/quidz-backend/internal/data/repos/learning"
	"github.com/yungbote/quidz-backend/internal/data/repos/portfolio"
	"github.com/yungbote/quidz-backend/internal/data/repos/query"
	"github.com/yungbote/quidz-backend/internal/data/repos/user"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

// Unpaged lifts the default page size from a filter's Limit.
const Unpaged = query.Unpaged

type ProfileRepo = user.ProfileRepo
type ProfileFilter = user.ProfileFilter
type UserRoleRepo = user.UserRoleRepo
type UserTokenRepo = auth.UserTokenRepo

type TaskRepo = coaching.TaskRepo
type TaskFilter = coaching.TaskFilter
type AbsenceRepo = coaching.AbsenceRepo
type AbsenceFilter = coaching.AbsenceFilter
type SkillRepo = coaching.SkillRepo
type SkillFilter = coaching.SkillFilter
type MoodRepo = coaching.MoodRepo
type MoodFilter = coaching.MoodFilter
type FeedbackRepo = coaching.FeedbackRepo
type AnswerRow = coaching.AnswerRow
type ReportRepo = coaching.ReportRepo
type ReportFilter = coaching.ReportFilter
type CalendarEventRepo = coaching.CalendarEventRepo
type DocumentRepo = coaching.DocumentRepo

type FlashcardRepo = learning.FlashcardRepo
type FlashcardFilter = learning.FlashcardFilter
type CategoryRepo = learning.CategoryRepo
type TagRepo = learning.TagRepo
type LearningProgressRepo = learning.LearningProgressRepo
type FlashcardFeedbackRepo = learning.FlashcardFeedbackRepo
type BadgeRepo = learning.BadgeRepo
type ToolRepo = learning.ToolRepo

type ProjectRepo = portfolio.ProjectRepo
type GalleryFilter = portfolio.GalleryFilter

type ChatMessageRepo = chat.ChatMessageRepo

func NewProfileRepo(db *gorm.DB, log *logger.Logger) ProfileRepo { return user.NewProfileRepo(db, log) }
func NewUserRoleRepo(db *gorm.DB, log *logger.Logger) UserRoleRepo {
	return user.NewUserRoleRepo(db, log)
}
func NewUserTokenRepo(db *gorm.DB, log *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, log)
}

func NewTaskRepo(db *gorm.DB, log *logger.Logger) TaskRepo { return coaching.NewTaskRepo(db, log) }
func NewAbsenceRepo(db *gorm.DB, log *logger.Logger) AbsenceRepo {
	return coaching.NewAbsenceRepo(db, log)
}
func NewSkillRepo(db *gorm.DB, log *logger.Logger) SkillRepo { return coaching.NewSkillRepo(db, log) }
func NewMoodRepo(db *gorm.DB, log *logger.Logger) MoodRepo   { return coaching.NewMoodRepo(db, log) }
func NewFeedbackRepo(db *gorm.DB, log *logger.Logger) FeedbackRepo {
	return coaching.NewFeedbackRepo(db, log)
}
func NewReportRepo(db *gorm.DB, log *logger.Logger) ReportRepo { return coaching.NewReportRepo(db, log) }
func NewCalendarEventRepo(db *gorm.DB, log *logger.Logger) CalendarEventRepo {
	return coaching.NewCalendarEventRepo(db, log)
}
func NewDocumentRepo(db *gorm.DB, log *logger.Logger) DocumentRepo {
	return coaching.NewDocumentRepo(db, log)
}

func NewFlashcardRepo(db *gorm.DB, log *logger.Logger) FlashcardRepo {
	return learning.NewFlashcardRepo(db, log)
}
func NewCategoryRepo(db *gorm.DB, log *logger.Logger) CategoryRepo {
	return learning.NewCategoryRepo(db, log)
}
func NewTagRepo(db *gorm.DB, log *logger.Logger) TagRepo { return learning.NewTagRepo(db, log) }
func NewLearningProgressRepo(db *gorm.DB, log *logger.Logger) LearningProgressRepo {
	return learning.NewLearningProgressRepo(db, log)
}
func NewFlashcardFeedbackRepo(db *gorm.DB, log *logger.Logger) FlashcardFeedbackRepo {
	return learning.NewFlashcardFeedbackRepo(db, log)
}
func NewBadgeRepo(db *gorm.DB, log *logger.Logger) BadgeRepo { return learning.NewBadgeRepo(db, log) }
func NewToolRepo(db *gorm.DB, log *logger.Logger) ToolRepo   { return learning.NewToolRepo(db, log) }

func NewProjectRepo(db *gorm.DB, log *logger.Logger) ProjectRepo {
	return portfolio.NewProjectRepo(db, log)
}

func NewChatMessageRepo(db *gorm.DB, log *logger.Logger) ChatMessageRepo {
	return chat.NewChatMessageRepo(db, log)
}
