package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

func IsValidTaskStatus(s string) bool {
	return s == TaskStatusOpen || s == TaskStatusInProgress || s == TaskStatusCompleted
}

func IsValidTaskPriority(p string) bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

// Task is one assignment to one participant. An assign-to-all task is stored
// as one row per participant sharing a FanoutKey; (fanout_key, assigned_to)
// is unique so replaying the same fan-out inserts nothing.
type Task struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string         `gorm:"not null;column:title" json:"title"`
	Description   string         `gorm:"type:text;column:description" json:"description"`
	DueDate       *time.Time     `gorm:"type:date;column:due_date;index" json:"due_date,omitempty"`
	Status        string         `gorm:"not null;default:'open';column:status;index" json:"status"`
	Priority      string         `gorm:"not null;default:'medium';column:priority" json:"priority"`
	AssignedTo    *uuid.UUID     `gorm:"type:uuid;column:assigned_to;index;uniqueIndex:idx_task_fanout,priority:2" json:"assigned_to,omitempty"`
	AssignToAll   bool           `gorm:"not null;default:false;column:assign_to_all" json:"assign_to_all"`
	FanoutKey     *string        `gorm:"column:fanout_key;uniqueIndex:idx_task_fanout,priority:1" json:"fanout_key,omitempty"`
	FileURL       string         `gorm:"column:file_url" json:"file_url,omitempty"`
	FileBucketKey string         `gorm:"column:file_bucket_key" json:"-"`
	ImageURL      string         `gorm:"column:image_url" json:"image_url,omitempty"`
	Links         datatypes.JSON `gorm:"column:links" json:"links,omitempty"`
	CreatedBy     uuid.UUID      `gorm:"type:uuid;not null;column:created_by;index" json:"created_by"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }

type SkillTask struct {
	SkillID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"skill_id"`
	TaskID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"task_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (SkillTask) TableName() string { return "skill_tasks" }
