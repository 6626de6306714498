package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AbsenceStatusPending  = "pending"
	AbsenceStatusApproved = "approved"
	AbsenceStatusRejected = "rejected"
)

// Absence.Approved is nil while pending. Once reviewed it is true or false and
// is never reset to nil.
type Absence struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Date       time.Time      `gorm:"type:date;not null;index" json:"date"`
	Reason     string         `gorm:"not null;column:reason" json:"reason"`
	Comment    string         `gorm:"type:text;column:comment" json:"comment"`
	Approved   *bool          `gorm:"column:approved" json:"approved"`
	ReviewedBy *uuid.UUID     `gorm:"type:uuid;column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time     `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Absence) TableName() string { return "absences" }

func (a *Absence) Status() string {
	switch {
	case a == nil || a.Approved == nil:
		return AbsenceStatusPending
	case *a.Approved:
		return AbsenceStatusApproved
	default:
		return AbsenceStatusRejected
	}
}
