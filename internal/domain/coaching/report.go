package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ReportStatusDraft = "draft"
	ReportStatusFinal = "final"
)

func IsValidReportStatus(s string) bool {
	return s == ReportStatusDraft || s == ReportStatusFinal
}

// Report is a per-period case note. The *Summary columns hold the progress
// snapshot for the period; they are refreshed while the report is a draft and
// frozen once it is final.
type Report struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	CoachID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"coach_id"`
	PeriodStart       time.Time      `gorm:"type:date;not null" json:"period_start"`
	PeriodEnd         time.Time      `gorm:"type:date;not null" json:"period_end"`
	ProgramType       string         `gorm:"column:program_type" json:"program_type"`
	AttendanceSummary datatypes.JSON `gorm:"column:attendance_summary" json:"attendance_summary"`
	TasksSummary      datatypes.JSON `gorm:"column:tasks_summary" json:"tasks_summary"`
	SkillsSummary     datatypes.JSON `gorm:"column:skills_summary" json:"skills_summary"`
	LearningSummary   datatypes.JSON `gorm:"column:learning_summary" json:"learning_summary"`
	MoodSummary       datatypes.JSON `gorm:"column:mood_summary" json:"mood_summary"`
	AttendanceNotes   string         `gorm:"type:text;column:attendance_notes" json:"attendance_notes"`
	TasksNotes        string         `gorm:"type:text;column:tasks_notes" json:"tasks_notes"`
	SkillsNotes       string         `gorm:"type:text;column:skills_notes" json:"skills_notes"`
	LearningNotes     string         `gorm:"type:text;column:learning_notes" json:"learning_notes"`
	BehaviorNotes     string         `gorm:"type:text;column:behavior_notes" json:"behavior_notes"`
	MoodNotes         string         `gorm:"type:text;column:mood_notes" json:"mood_notes"`
	OverallAssessment string         `gorm:"type:text;column:overall_assessment" json:"overall_assessment"`
	Outlook           string         `gorm:"type:text;column:outlook" json:"outlook"`
	Status            string         `gorm:"not null;default:'draft';column:status;index" json:"status"`
	FinalizedAt       *time.Time     `gorm:"column:finalized_at" json:"finalized_at,omitempty"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Report) TableName() string { return "reports" }

func (r *Report) IsFinal() bool { return r != nil && r.Status == ReportStatusFinal }

// ReportNotes is the coach-authored free text of a report, one field per section.
type ReportNotes struct {
	ProgramType       *string `json:"program_type"`
	AttendanceNotes   *string `json:"attendance_notes"`
	TasksNotes        *string `json:"tasks_notes"`
	SkillsNotes       *string `json:"skills_notes"`
	LearningNotes     *string `json:"learning_notes"`
	BehaviorNotes     *string `json:"behavior_notes"`
	MoodNotes         *string `json:"mood_notes"`
	OverallAssessment *string `json:"overall_assessment"`
	Outlook           *string `json:"outlook"`
}

// Updates returns the column updates for the non-nil notes.
func (n ReportNotes) Updates() map[string]any {
	out := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = *v
		}
	}
	set("program_type", n.ProgramType)
	set("attendance_notes", n.AttendanceNotes)
	set("tasks_notes", n.TasksNotes)
	set("skills_notes", n.SkillsNotes)
	set("learning_notes", n.LearningNotes)
	set("behavior_notes", n.BehaviorNotes)
	set("mood_notes", n.MoodNotes)
	set("overall_assessment", n.OverallAssessment)
	set("outlook", n.Outlook)
	return out
}
