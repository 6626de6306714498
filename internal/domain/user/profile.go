package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profile struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email               string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	PasswordHash        string         `gorm:"not null;column:password_hash" json:"-"`
	FullName            string         `gorm:"not null;column:full_name" json:"full_name"`
	AvatarBucketKey     string         `gorm:"column:avatar_bucket_key" json:"-"`
	AvatarURL           string         `gorm:"column:avatar_url" json:"avatar_url"`
	AvatarColor         string         `gorm:"column:avatar_color" json:"avatar_color"`
	OnboardingCompleted bool           `gorm:"not null;default:false;column:onboarding_completed" json:"onboarding_completed"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string { return "profiles" }
