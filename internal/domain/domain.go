package domain

import (
	"github.com/yungbote/quidz-backend/internal/domain/auth"
	"github.com/yungbote/quidz-backend/internal/domain/chat"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/domain/learning"
	"github.com/yungbote/quidz-backend/internal/domain/portfolio"
	"github.com/yungbote/quidz-backend/internal/domain/user"
)

// Identity
type Profile = user.Profile
type UserRole = user.UserRole
type RoleSet = user.RoleSet
type UserToken = auth.UserToken

// Coaching
type Task = coaching.Task
type SkillTask = coaching.SkillTask
type Absence = coaching.Absence
type Skill = coaching.Skill
type MoodEntry = coaching.MoodEntry
type FeedbackQuestion = coaching.FeedbackQuestion
type FeedbackAnswer = coaching.FeedbackAnswer
type Report = coaching.Report
type ReportNotes = coaching.ReportNotes
type CalendarEvent = coaching.CalendarEvent
type Document = coaching.Document

// Learning content
type Category = learning.Category
type Tag = learning.Tag
type Flashcard = learning.Flashcard
type FlashcardTag = learning.FlashcardTag
type LearningProgress = learning.LearningProgress
type FlashcardFeedback = learning.FlashcardFeedback
type Badge = learning.Badge
type Tool = learning.Tool

// Portfolio
type Project = portfolio.Project
type ProjectLike = portfolio.ProjectLike
type ProjectSkill = portfolio.ProjectSkill
type GalleryItem = portfolio.GalleryItem

// Chat
type ChatMessage = chat.ChatMessage
type Conversation = chat.Conversation

// AllModels lists every persisted model in migration order.
func AllModels() []any {
	return []any{
		&Profile{},
		&UserRole{},
		&UserToken{},

		&Task{},
		&SkillTask{},
		&Absence{},
		&Skill{},
		&MoodEntry{},
		&FeedbackQuestion{},
		&FeedbackAnswer{},
		&Report{},
		&CalendarEvent{},
		&Document{},

		&Category{},
		&Tag{},
		&Flashcard{},
		&FlashcardTag{},
		&LearningProgress{},
		&FlashcardFeedback{},
		&Badge{},
		&Tool{},

		&Project{},
		&ProjectLike{},
		&ProjectSkill{},

		&ChatMessage{},
	}
}
