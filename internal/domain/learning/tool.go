package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tool struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"not null;column:name" json:"name"`
	Description string         `gorm:"type:text;column:description" json:"description"`
	URL         string         `gorm:"column:url" json:"url"`
	CategoryID  *uuid.UUID     `gorm:"type:uuid;column:category_id;index" json:"category_id,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Tool) TableName() string { return "tools" }
