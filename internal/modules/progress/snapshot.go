package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gorm.io/datatypes"

	"github.com/yungbote/quidz-backend/internal/domain/coaching"
)

const dateLayout = "2006-01-02"

type AttendanceSection struct {
	AbsencesCount int64    `json:"absences_count"`
	Approved      int64    `json:"approved"`
	Rejected      int64    `json:"rejected"`
	Pending       int64    `json:"pending"`
	Dates         []string `json:"dates"`
}

type TaskItem struct {
	Title   string `json:"title"`
	Status  string `json:"status"`
	DueDate string `json:"due_date,omitempty"`
}

type TasksSection struct {
	Total         int64      `json:"tasks_total"`
	Completed     int64      `json:"tasks_completed"`
	InProgress    int64      `json:"tasks_in_progress"`
	Open          int64      `json:"tasks_open"`
	CompletionPct float64    `json:"task_completion_pct"`
	Items         []TaskItem `json:"items"`
}

type SkillItem struct {
	Title           string `json:"title"`
	Category        string `json:"category,omitempty"`
	Status          string `json:"status"`
	CompetenceLevel *int   `json:"competence_level,omitempty"`
}

type SkillsSection struct {
	Total               int64            `json:"skills_total"`
	Validated           int64            `json:"skills_validated"`
	IntegrationRelevant int64            `json:"skills_integration_relevant"`
	ValidationPct       float64          `json:"skill_validation_pct"`
	ByCategory          map[string]int64 `json:"by_category"`
	Items               []SkillItem      `json:"items"`
}

type LearningSection struct {
	LearnedFlashcardsCount int64   `json:"learned_flashcards_count"`
	AnswersTotal           int64   `json:"answers_total"`
	AnswersCorrect         int64   `json:"answers_correct"`
	AccuracyPct            float64 `json:"accuracy_pct"`
}

type MoodPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type MoodSection struct {
	AverageMood  *float64    `json:"average_mood"`
	EntriesCount int64       `json:"mood_entries_count"`
	Min          *int        `json:"min,omitempty"`
	Max          *int        `json:"max,omitempty"`
	Daily        []MoodPoint `json:"daily"`
}

// Snapshot is the frozen per-section view stored on a report.
type Snapshot struct {
	Summary    Summary           `json:"summary"`
	Attendance AttendanceSection `json:"attendance"`
	Tasks      TasksSection      `json:"tasks"`
	Skills     SkillsSection     `json:"skills"`
	Learning   LearningSection   `json:"learning"`
	Mood       MoodSection       `json:"mood"`
}

func BuildSnapshot(in Inputs) Snapshot {
	sum := Aggregate(in)
	snap := Snapshot{Summary: sum}

	att := AttendanceSection{AbsencesCount: sum.AbsencesCount, Dates: []string{}}
	for _, a := range in.Absences {
		if a == nil {
			continue
		}
		switch a.Status() {
		case coaching.AbsenceStatusApproved:
			att.Approved++
		case coaching.AbsenceStatusRejected:
			att.Rejected++
		default:
			att.Pending++
		}
		att.Dates = append(att.Dates, a.Date.UTC().Format(dateLayout))
	}
	sort.Strings(att.Dates)
	snap.Attendance = att

	tasks := TasksSection{
		Total:         sum.TasksTotal,
		Completed:     sum.TasksCompleted,
		InProgress:    sum.TasksInProgress,
		Open:          sum.TasksOpen,
		CompletionPct: sum.TaskCompletionPct,
		Items:         []TaskItem{},
	}
	for _, t := range in.Tasks {
		if t == nil {
			continue
		}
		item := TaskItem{Title: t.Title, Status: t.Status}
		if t.DueDate != nil {
			item.DueDate = t.DueDate.UTC().Format(dateLayout)
		}
		tasks.Items = append(tasks.Items, item)
	}
	snap.Tasks = tasks

	skills := SkillsSection{
		Total:               sum.SkillsTotal,
		Validated:           sum.SkillsValidated,
		IntegrationRelevant: sum.SkillsIntegrationRelevant,
		ValidationPct:       sum.SkillValidationPct,
		ByCategory:          map[string]int64{},
		Items:               []SkillItem{},
	}
	for _, sk := range in.Skills {
		if sk == nil {
			continue
		}
		cat := sk.Category
		if cat == "" {
			cat = "other"
		}
		skills.ByCategory[cat]++
		skills.Items = append(skills.Items, SkillItem{
			Title:           sk.Title,
			Category:        sk.Category,
			Status:          sk.Status,
			CompetenceLevel: sk.CompetenceLevel,
		})
	}
	snap.Skills = skills

	learn := LearningSection{LearnedFlashcardsCount: sum.LearnedFlashcardsCount}
	for _, p := range in.Progress {
		if p == nil {
			continue
		}
		learn.AnswersTotal++
		if p.KnewAnswer {
			learn.AnswersCorrect++
		}
	}
	learn.AccuracyPct = Percent(learn.AnswersCorrect, learn.AnswersTotal)
	snap.Learning = learn

	snap.Mood = buildMood(in, sum)
	return snap
}

func buildMood(in Inputs, sum Summary) MoodSection {
	mood := MoodSection{AverageMood: sum.AverageMood, EntriesCount: sum.MoodEntriesCount, Daily: []MoodPoint{}}

	type acc struct{ sum, n int }
	byDay := map[string]*acc{}
	for _, m := range in.Moods {
		if m == nil {
			continue
		}
		v := m.MoodValue
		if mood.Min == nil || v < *mood.Min {
			lo := v
			mood.Min = &lo
		}
		if mood.Max == nil || v > *mood.Max {
			hi := v
			mood.Max = &hi
		}
		day := m.CreatedAt.UTC().Format(dateLayout)
		a := byDay[day]
		if a == nil {
			a = &acc{}
			byDay[day] = a
		}
		a.sum += v
		a.n++
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	for _, d := range days {
		a := byDay[d]
		mood.Daily = append(mood.Daily, MoodPoint{Date: d, Value: Round2(float64(a.sum) / float64(a.n))})
	}
	return mood
}

// Columns encodes the snapshot sections for the report's JSON columns.
func (s Snapshot) Columns() (map[string]any, error) {
	enc := func(v any) (datatypes.JSON, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return datatypes.JSON(b), nil
	}
	out := map[string]any{}
	for col, v := range map[string]any{
		"attendance_summary": s.Attendance,
		"tasks_summary":      s.Tasks,
		"skills_summary":     s.Skills,
		"learning_summary":   s.Learning,
		"mood_summary":       s.Mood,
	} {
		b, err := enc(v)
		if err != nil {
			return nil, err
		}
		out[col] = b
	}
	return out, nil
}

// Decode rebuilds a snapshot from stored JSON columns. Missing sections
// decode to their zero value; invalid ones do too and are reported in the
// returned error, which names each failing column.
func Decode(attendance, tasks, skills, learning, mood []byte) (Snapshot, error) {
	var s Snapshot
	var errs []error
	for _, sec := range []struct {
		col string
		raw []byte
		dst any
	}{
		{"attendance_summary", attendance, &s.Attendance},
		{"tasks_summary", tasks, &s.Tasks},
		{"skills_summary", skills, &s.Skills},
		{"learning_summary", learning, &s.Learning},
		{"mood_summary", mood, &s.Mood},
	} {
		if len(sec.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(sec.raw, sec.dst); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sec.col, err))
		}
	}
	s.Summary = Summary{
		TasksTotal:                s.Tasks.Total,
		TasksCompleted:            s.Tasks.Completed,
		TasksInProgress:           s.Tasks.InProgress,
		TasksOpen:                 s.Tasks.Open,
		AbsencesCount:             s.Attendance.AbsencesCount,
		SkillsTotal:               s.Skills.Total,
		SkillsValidated:           s.Skills.Validated,
		SkillsIntegrationRelevant: s.Skills.IntegrationRelevant,
		LearnedFlashcardsCount:    s.Learning.LearnedFlashcardsCount,
		AverageMood:               s.Mood.AverageMood,
		MoodEntriesCount:          s.Mood.EntriesCount,
		TaskCompletionPct:         s.Tasks.CompletionPct,
		SkillValidationPct:        s.Skills.ValidationPct,
	}
	return s, errors.Join(errs...)
}
