package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"not null;uniqueIndex;column:name" json:"name"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string { return "categories" }

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Tag) TableName() string { return "tags" }

type Flashcard struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FrontText  string         `gorm:"type:text;not null;column:front_text" json:"front_text"`
	BackText   string         `gorm:"type:text;not null;column:back_text" json:"back_text"`
	CategoryID *uuid.UUID     `gorm:"type:uuid;column:category_id;index" json:"category_id,omitempty"`
	IsPublic   bool           `gorm:"not null;default:false;column:is_public;index" json:"is_public"`
	CreatedBy  uuid.UUID      `gorm:"type:uuid;not null;column:created_by;index" json:"created_by"`
	Tags       []Tag          `gorm:"many2many:flashcard_tags;joinForeignKey:FlashcardID;joinReferences:TagID" json:"tags,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Flashcard) TableName() string { return "flashcards" }

type FlashcardTag struct {
	FlashcardID uuid.UUID `gorm:"type:uuid;primaryKey" json:"flashcard_id"`
	TagID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"tag_id"`
}

func (FlashcardTag) TableName() string { return "flashcard_tags" }

// LearningProgress is append-only: one row per answered card per session.
type LearningProgress struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	FlashcardID uuid.UUID `gorm:"type:uuid;not null;index" json:"flashcard_id"`
	KnewAnswer  bool      `gorm:"not null;column:knew_answer" json:"knew_answer"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
}

func (LearningProgress) TableName() string { return "learning_progress" }

type FlashcardFeedback struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_flashcard_feedback_user_card,priority:1" json:"user_id"`
	FlashcardID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_flashcard_feedback_user_card,priority:2;index" json:"flashcard_id"`
	Helpful     bool      `gorm:"not null;column:helpful" json:"helpful"`
	Comment     string    `gorm:"type:text;column:comment" json:"comment"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (FlashcardFeedback) TableName() string { return "flashcard_feedback" }
