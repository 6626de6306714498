package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	"github.com/yungbote/quidz-backend/internal/modules/progress"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
)

// ProgressService loads a participant's rows for a period and derives the
// counters. Nothing is cached; every call reads the current rows.
type ProgressService interface {
	Compute(ctx context.Context, participantID *uuid.UUID, p *period.Period) (progress.Summary, error)
	Load(dbc dbctx.Context, participantID uuid.UUID, p *period.Period) (progress.Inputs, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	taskRepo     repos.TaskRepo
	absenceRepo  repos.AbsenceRepo
	skillRepo    repos.SkillRepo
	learningRepo repos.LearningProgressRepo
	moodRepo     repos.MoodRepo
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	taskRepo repos.TaskRepo,
	absenceRepo repos.AbsenceRepo,
	skillRepo repos.SkillRepo,
	learningRepo repos.LearningProgressRepo,
	moodRepo repos.MoodRepo,
) ProgressService {
	return &progressService{
		db:           db,
		log:          log.With("service", "ProgressService"),
		taskRepo:     taskRepo,
		absenceRepo:  absenceRepo,
		skillRepo:    skillRepo,
		learningRepo: learningRepo,
		moodRepo:     moodRepo,
	}
}

// Compute returns the summary for participantID, or for the caller when nil.
func (ps *progressService) Compute(ctx context.Context, participantID *uuid.UUID, p *period.Period) (progress.Summary, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return progress.Summary{}, err
	}
	subject, err := c.subject(participantID)
	if err != nil {
		return progress.Summary{}, err
	}
	in, err := ps.Load(dbctx.Context{Ctx: ctx}, subject, p)
	if err != nil {
		return progress.Summary{}, err
	}
	return progress.Aggregate(in), nil
}

// Load reads the five row sets. Outside a transaction they are fetched in
// parallel; a transaction holds one connection, so inside one they are read
// in sequence.
func (ps *progressService) Load(dbc dbctx.Context, participantID uuid.UUID, p *period.Period) (progress.Inputs, error) {
	var in progress.Inputs
	uid := participantID

	loaders := []func(dbctx.Context) error{
		func(d dbctx.Context) (err error) {
			in.Tasks, err = ps.taskRepo.List(d, repos.TaskFilter{AssignedTo: &uid, Period: p, Limit: repos.Unpaged})
			return err
		},
		func(d dbctx.Context) (err error) {
			in.Absences, err = ps.absenceRepo.List(d, repos.AbsenceFilter{UserID: &uid, Period: p, Limit: repos.Unpaged})
			return err
		},
		func(d dbctx.Context) (err error) {
			in.Skills, err = ps.skillRepo.List(d, repos.SkillFilter{UserID: &uid, Period: p, Limit: repos.Unpaged})
			return err
		},
		func(d dbctx.Context) (err error) {
			in.Progress, err = ps.learningRepo.ListByUser(d, uid, p)
			return err
		},
		func(d dbctx.Context) (err error) {
			in.Moods, err = ps.moodRepo.List(d, repos.MoodFilter{UserID: &uid, Period: p, Limit: repos.Unpaged})
			return err
		},
	}

	if dbc.Tx != nil {
		for _, load := range loaders {
			if err := load(dbc); err != nil {
				return progress.Inputs{}, err
			}
		}
		return in, nil
	}

	g, gctx := errgroup.WithContext(dbc.Ctx)
	for _, load := range loaders {
		load := load
		g.Go(func() error { return load(dbctx.Context{Ctx: gctx}) })
	}
	if err := g.Wait(); err != nil {
		ps.log.Warn("progress load failed", "user_id", participantID, "error", err)
		return progress.Inputs{}, err
	}
	return in, nil
}
