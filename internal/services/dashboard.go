package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/modules/progress"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
)

const (
	dashboardTaskPreview = 5
	adminMoodWindowDays  = 30
)

type Dashboard struct {
	Progress  progress.Summary `json:"progress"`
	OpenTasks []*types.Task    `json:"open_tasks"`
	Badges    []*types.Badge   `json:"badges"`
}

type AdminStats struct {
	Participants    int64    `json:"participants"`
	PendingAbsences int64    `json:"pending_absences"`
	SkillsInReview  int64    `json:"skills_in_review"`
	OpenTasks       int64    `json:"open_tasks"`
	AverageMood30d  *float64 `json:"average_mood_30d"`
	DraftReports    int64    `json:"draft_reports"`
}

type DashboardService interface {
	Participant(ctx context.Context) (*Dashboard, error)
	AdminStats(ctx context.Context) (*AdminStats, error)
}

type dashboardService struct {
	log         *logger.Logger
	progress    ProgressService
	taskRepo    repos.TaskRepo
	badgeRepo   repos.BadgeRepo
	profileRepo repos.ProfileRepo
	absenceRepo repos.AbsenceRepo
	skillRepo   repos.SkillRepo
	moodRepo    repos.MoodRepo
	reportRepo  repos.ReportRepo
}

func NewDashboardService(
	log *logger.Logger,
	progressService ProgressService,
	taskRepo repos.TaskRepo,
	badgeRepo repos.BadgeRepo,
	profileRepo repos.ProfileRepo,
	absenceRepo repos.AbsenceRepo,
	skillRepo repos.SkillRepo,
	moodRepo repos.MoodRepo,
	reportRepo repos.ReportRepo,
) DashboardService {
	return &dashboardService{
		log:         log.With("service", "DashboardService"),
		progress:    progressService,
		taskRepo:    taskRepo,
		badgeRepo:   badgeRepo,
		profileRepo: profileRepo,
		absenceRepo: absenceRepo,
		skillRepo:   skillRepo,
		moodRepo:    moodRepo,
		reportRepo:  reportRepo,
	}
}

func (ds *dashboardService) Participant(ctx context.Context) (*Dashboard, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	out := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Progress, err = ds.progress.Compute(gctx, nil, nil)
		return err
	})
	g.Go(func() (err error) {
		out.OpenTasks, err = ds.taskRepo.List(dbctx.Context{Ctx: gctx}, repos.TaskFilter{
			AssignedTo: &c.ID,
			Status:     coaching.TaskStatusOpen,
			Limit:      dashboardTaskPreview,
		})
		return err
	})
	g.Go(func() (err error) {
		out.Badges, err = ds.badgeRepo.ListByUser(dbctx.Context{Ctx: gctx}, c.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminStats runs the six counters concurrently.
func (ds *dashboardService) AdminStats(ctx context.Context) (*AdminStats, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	out := &AdminStats{}
	window := period.LastDays(nowUTC(), adminMoodWindowDays)

	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() (err error) {
		out.Participants, err = ds.profileRepo.CountWithRole(dbc, user.RoleUser)
		return err
	})
	g.Go(func() (err error) {
		out.PendingAbsences, err = ds.absenceRepo.CountPending(dbc)
		return err
	})
	g.Go(func() (err error) {
		out.SkillsInReview, err = ds.skillRepo.CountByStatus(dbc, coaching.SkillStatusInReview)
		return err
	})
	g.Go(func() (err error) {
		out.OpenTasks, err = ds.taskRepo.CountByStatus(dbc, coaching.TaskStatusOpen)
		return err
	})
	g.Go(func() (err error) {
		out.AverageMood30d, err = ds.moodRepo.Average(dbc, repos.MoodFilter{Period: &window})
		return err
	})
	g.Go(func() (err error) {
		out.DraftReports, err = ds.reportRepo.CountByStatus(dbc, coaching.ReportStatusDraft)
		return err
	})
	if err := g.Wait(); err != nil {
		ds.log.Warn("admin stats failed", "error", err)
		return nil, err
	}
	if out.AverageMood30d != nil {
		v := progress.Round2(*out.AverageMood30d)
		out.AverageMood30d = &v
	}
	return out, nil
}
