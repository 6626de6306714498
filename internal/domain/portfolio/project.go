package portfolio

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	Title          string                      `gorm:"not null;column:title" json:"title"`
	Description    string                      `gorm:"type:text;column:description" json:"description"`
	Category       string                      `gorm:"column:category;index" json:"category"`
	Tags           datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	ImageURL       string                      `gorm:"column:image_url" json:"image_url,omitempty"`
	ImageBucketKey string                      `gorm:"column:image_bucket_key" json:"-"`
	Published      bool                        `gorm:"not null;default:false;column:published;index" json:"published"`
	Featured       bool                        `gorm:"not null;default:false;column:featured" json:"featured"`
	CreatedAt      time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }

type ProjectLike struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ProjectLike) TableName() string { return "project_likes" }

type ProjectSkill struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey" json:"project_id"`
	SkillID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"skill_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ProjectSkill) TableName() string { return "project_skills" }

// GalleryItem is a published project with its like counters for one viewer.
type GalleryItem struct {
	Project
	LikeCount int64 `json:"like_count"`
	LikedByMe bool  `json:"liked_by_me"`
}
