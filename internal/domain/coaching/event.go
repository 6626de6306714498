package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CalendarEvent with a nil UserID is visible to everyone.
type CalendarEvent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"not null;column:title" json:"title"`
	Description string         `gorm:"type:text;column:description" json:"description"`
	StartsAt    time.Time      `gorm:"not null;column:starts_at;index" json:"starts_at"`
	EndsAt      time.Time      `gorm:"not null;column:ends_at" json:"ends_at"`
	Location    string         `gorm:"column:location" json:"location"`
	UserID      *uuid.UUID     `gorm:"type:uuid;column:user_id;index" json:"user_id,omitempty"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CalendarEvent) TableName() string { return "calendar_events" }
