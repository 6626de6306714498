package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MoodMin = 1
	MoodMax = 5

	FeedbackKindRating = "rating"
	FeedbackKindText   = "text"
)

type MoodEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	MoodValue int       `gorm:"not null;column:mood_value" json:"mood_value"`
	Note      string    `gorm:"type:text;column:note" json:"note"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (MoodEntry) TableName() string { return "mood_entries" }

// FeedbackQuestion is open between ActiveFrom and ActiveUntil (either bound
// optional) and addressed to TargetUserID, or to everyone when nil.
type FeedbackQuestion struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Question     string         `gorm:"type:text;not null;column:question" json:"question"`
	Kind         string         `gorm:"not null;default:'rating';column:kind" json:"kind"`
	ActiveFrom   *time.Time     `gorm:"column:active_from" json:"active_from,omitempty"`
	ActiveUntil  *time.Time     `gorm:"column:active_until" json:"active_until,omitempty"`
	TargetUserID *uuid.UUID     `gorm:"type:uuid;column:target_user_id;index" json:"target_user_id,omitempty"`
	CreatedBy    uuid.UUID      `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FeedbackQuestion) TableName() string { return "feedback_questions" }

// IsActiveAt reports whether the activity window contains t.
func (q *FeedbackQuestion) IsActiveAt(t time.Time) bool {
	if q == nil {
		return false
	}
	if q.ActiveFrom != nil && t.Before(*q.ActiveFrom) {
		return false
	}
	if q.ActiveUntil != nil && t.After(*q.ActiveUntil) {
		return false
	}
	return true
}

type FeedbackAnswer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_answer_question_user,priority:1" json:"question_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_answer_question_user,priority:2;index" json:"user_id"`
	Rating     *int      `gorm:"column:rating" json:"rating,omitempty"`
	Text       string    `gorm:"type:text;column:text" json:"text"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (FeedbackAnswer) TableName() string { return "feedback_answers" }
