package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SkillStatusInReview            = "in_pruefung"
	SkillStatusIntegrationRelevant = "integrationsrelevant"
	SkillStatusValidated           = "validiert"
	SkillStatusRejected            = "abgelehnt"
)

func IsValidSkillStatus(s string) bool {
	switch s {
	case SkillStatusInReview, SkillStatusIntegrationRelevant, SkillStatusValidated, SkillStatusRejected:
		return true
	default:
		return false
	}
}

type Skill struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title           string         `gorm:"not null;column:title" json:"title"`
	Description     string         `gorm:"type:text;column:description" json:"description"`
	Category        string         `gorm:"column:category;index" json:"category"`
	ProofText       string         `gorm:"type:text;column:proof_text" json:"proof_text"`
	ProofFileURL    string         `gorm:"column:proof_file_url" json:"proof_file_url,omitempty"`
	ProofBucketKey  string         `gorm:"column:proof_bucket_key" json:"-"`
	Status          string         `gorm:"not null;default:'in_pruefung';column:status;index" json:"status"`
	CoachComment    string         `gorm:"type:text;column:coach_comment" json:"coach_comment"`
	CompetenceLevel *int           `gorm:"column:competence_level" json:"competence_level,omitempty"`
	ReviewedBy      *uuid.UUID     `gorm:"type:uuid;column:reviewed_by" json:"reviewed_by,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Skill) TableName() string { return "skills" }
