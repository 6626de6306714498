// Package progress derives participant counters from pre-loaded rows. It does
// no I/O; callers load the slices already filtered to the period they want.
package progress

import (
	"math"

	"github.com/google/uuid"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
)

type Inputs struct {
	Tasks    []*types.Task
	Absences []*types.Absence
	Skills   []*types.Skill
	Progress []*types.LearningProgress
	Moods    []*types.MoodEntry
}

type Summary struct {
	TasksTotal                int64    `json:"tasks_total"`
	TasksCompleted            int64    `json:"tasks_completed"`
	TasksInProgress           int64    `json:"tasks_in_progress"`
	TasksOpen                 int64    `json:"tasks_open"`
	AbsencesCount             int64    `json:"absences_count"`
	SkillsTotal               int64    `json:"skills_total"`
	SkillsValidated           int64    `json:"skills_validated"`
	SkillsIntegrationRelevant int64    `json:"skills_integration_relevant"`
	LearnedFlashcardsCount    int64    `json:"learned_flashcards_count"`
	AverageMood               *float64 `json:"average_mood"`
	MoodEntriesCount          int64    `json:"mood_entries_count"`
	TaskCompletionPct         float64  `json:"task_completion_pct"`
	SkillValidationPct        float64  `json:"skill_validation_pct"`
}

// Aggregate computes the summary. Every input row is counted; filtering by
// participant and period happens before.
func Aggregate(in Inputs) Summary {
	var s Summary

	for _, t := range in.Tasks {
		if t == nil {
			continue
		}
		s.TasksTotal++
		switch t.Status {
		case coaching.TaskStatusCompleted:
			s.TasksCompleted++
		case coaching.TaskStatusInProgress:
			s.TasksInProgress++
		default:
			s.TasksOpen++
		}
	}

	for _, a := range in.Absences {
		if a != nil {
			s.AbsencesCount++
		}
	}

	for _, sk := range in.Skills {
		if sk == nil {
			continue
		}
		s.SkillsTotal++
		switch sk.Status {
		case coaching.SkillStatusValidated:
			s.SkillsValidated++
		case coaching.SkillStatusIntegrationRelevant:
			s.SkillsIntegrationRelevant++
		}
	}

	s.LearnedFlashcardsCount = int64(LearnedCount(in.Progress))
	s.AverageMood, s.MoodEntriesCount = AverageMood(in.Moods)
	s.TaskCompletionPct = Percent(s.TasksCompleted, s.TasksTotal)
	s.SkillValidationPct = Percent(s.SkillsValidated, s.SkillsTotal)
	return s
}

// Percent returns n/d as a percentage rounded to one decimal, and 0 when d is 0.
func Percent(n, d int64) float64 {
	if d <= 0 {
		return 0
	}
	return Round1(float64(n) * 100 / float64(d))
}

// LearnedCount counts distinct flashcards with at least one correct answer.
func LearnedCount(rows []*types.LearningProgress) int {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, r := range rows {
		if r != nil && r.KnewAnswer {
			seen[r.FlashcardID] = struct{}{}
		}
	}
	return len(seen)
}

// AverageMood is the unweighted mean mood value. It is nil over no entries.
func AverageMood(rows []*types.MoodEntry) (*float64, int64) {
	var sum, n int64
	for _, m := range rows {
		if m == nil {
			continue
		}
		sum += int64(m.MoodValue)
		n++
	}
	if n == 0 {
		return nil, 0
	}
	avg := Round2(float64(sum) / float64(n))
	return &avg, n
}

func Round1(v float64) float64 { return math.Round(v*10) / 10 }

func Round2(v float64) float64 { return math.Round(v*100) / 100 }
