package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title      string         `gorm:"not null;column:title" json:"title"`
	Category   string         `gorm:"column:category" json:"category"`
	StorageKey string         `gorm:"not null;column:storage_key" json:"-"`
	FileURL    string         `gorm:"not null;column:file_url" json:"file_url"`
	MimeType   string         `gorm:"column:mime_type" json:"mime_type"`
	SizeBytes  int64          `gorm:"column:size_bytes" json:"size_bytes"`
	UploadedBy uuid.UUID      `gorm:"type:uuid;not null;column:uploaded_by" json:"uploaded_by"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Document) TableName() string { return "documents" }
