package learning

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const BadgeFirstFlashcard = "first_flashcard"

// LearnedBadge names the milestone badge for n learned cards.
func LearnedBadge(n int) string { return fmt.Sprintf("learned_%d", n) }

type Badge struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_badge_user_type,priority:1" json:"user_id"`
	BadgeType string     `gorm:"not null;column:badge_type;uniqueIndex:idx_badge_user_type,priority:2" json:"badge_type"`
	EarnedAt  time.Time  `gorm:"not null;column:earned_at" json:"earned_at"`
	AwardedBy *uuid.UUID `gorm:"type:uuid;column:awarded_by" json:"awarded_by,omitempty"`
}

func (Badge) TableName() string { return "badges" }
