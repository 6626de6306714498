package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/modules/progress"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

var errReportFinalized = apierr.Conflict("report_finalized", nil)

type CreateReportInput struct {
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	PeriodStart string    `json:"period_start" validate:"required"`
	PeriodEnd   string    `json:"period_end" validate:"required"`
	ProgramType string    `json:"program_type" validate:"max=120"`
}

type SaveReportInput struct {
	types.ReportNotes
	Finalize bool `json:"finalize"`
}

type ListReportsInput struct {
	UserID *uuid.UUID
	Status string
	Limit  int
	Offset int
}

// ReportView is a report with its decoded section snapshot.
type ReportView struct {
	*types.Report
	Snapshot progress.Snapshot `json:"snapshot"`
}

type ReportService interface {
	Create(ctx context.Context, in CreateReportInput) (*ReportView, error)
	Get(ctx context.Context, id uuid.UUID) (*ReportView, error)
	List(ctx context.Context, in ListReportsInput) ([]*types.Report, error)
	Save(ctx context.Context, id uuid.UUID, in SaveReportInput) (*ReportView, error)
	Finalize(ctx context.Context, id uuid.UUID) (*ReportView, error)
	DeleteDraft(ctx context.Context, id uuid.UUID) error
}

type reportService struct {
	db          *gorm.DB
	log         *logger.Logger
	reportRepo  repos.ReportRepo
	profileRepo repos.ProfileRepo
	progress    ProgressService
}

func NewReportService(
	db *gorm.DB,
	log *logger.Logger,
	reportRepo repos.ReportRepo,
	profileRepo repos.ProfileRepo,
	progressService ProgressService,
) ReportService {
	return &reportService{
		db:          db,
		log:         log.With("service", "ReportService"),
		reportRepo:  reportRepo,
		profileRepo: profileRepo,
		progress:    progressService,
	}
}

func (rs *reportService) Create(ctx context.Context, in CreateReportInput) (*ReportView, error) {
	c, err := staffFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	p, err := period.Parse(in.PeriodStart, in.PeriodEnd)
	if err != nil {
		if errors.Is(err, period.ErrInverted) {
			return nil, apierr.BadRequest("invalid_period", err)
		}
		return nil, apierr.BadRequest("invalid_date", err)
	}
	if p == nil {
		return nil, apierr.BadRequest("invalid_period", fmt.Errorf("period required"))
	}

	var out *ReportView
	err = inTx(rs.db, ctx, func(dbc dbctx.Context) error {
		participant, err := rs.profileRepo.GetByID(dbc, in.UserID)
		if err != nil {
			return err
		}
		if participant == nil {
			return apierr.NotFound("user_not_found")
		}
		now := nowUTC()
		r, err := rs.reportRepo.Create(dbc, &types.Report{
			ID:          uuid.New(),
			UserID:      participant.ID,
			CoachID:     c.ID,
			PeriodStart: p.Start,
			PeriodEnd:   p.End,
			ProgramType: strings.TrimSpace(in.ProgramType),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		out, err = rs.refresh(dbc, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	rs.log.Info("report created", "report_id", out.ID, "user_id", out.UserID, "period", fmt.Sprintf("%s..%s",
		out.PeriodStart.Format(period.DateLayout), out.PeriodEnd.Format(period.DateLayout)))
	return out, nil
}

// Get returns a draft with its snapshot recomputed and persisted, or a final
// report exactly as it was frozen.
func (rs *reportService) Get(ctx context.Context, id uuid.UUID) (*ReportView, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	var out *ReportView
	err := inTx(rs.db, ctx, func(dbc dbctx.Context) error {
		r, err := rs.load(dbc, id)
		if err != nil {
			return err
		}
		if r.IsFinal() {
			out = rs.frozen(r)
			return nil
		}
		out, err = rs.refresh(dbc, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (rs *reportService) List(ctx context.Context, in ListReportsInput) ([]*types.Report, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	if in.Status != "" && !coaching.IsValidReportStatus(in.Status) {
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown report status %q", in.Status))
	}
	return rs.reportRepo.List(dbctx.Context{Ctx: ctx}, repos.ReportFilter{
		UserID: in.UserID,
		Status: in.Status,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
}

// Save writes the notes, and with Finalize freezes a fresh snapshot, in one
// guarded update. A final report is never written.
func (rs *reportService) Save(ctx context.Context, id uuid.UUID, in SaveReportInput) (*ReportView, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var out *ReportView
	err := inTx(rs.db, ctx, func(dbc dbctx.Context) error {
		r, err := rs.load(dbc, id)
		if err != nil {
			return err
		}
		if r.IsFinal() {
			return errReportFinalized
		}
		updates := in.ReportNotes.Updates()
		if v, ok := updates["program_type"].(string); ok {
			updates["program_type"] = strings.TrimSpace(v)
		}
		var snap *progress.Snapshot
		if in.Finalize {
			s, cols, err := rs.snapshot(dbc, r)
			if err != nil {
				return err
			}
			for k, v := range cols {
				updates[k] = v
			}
			now := nowUTC()
			updates["status"] = coaching.ReportStatusFinal
			updates["finalized_at"] = now
			snap = &s
		}
		if len(updates) > 0 {
			updates["updated_at"] = nowUTC()
		}
		ok, err := rs.reportRepo.UpdateDraft(dbc, id, updates)
		if err != nil {
			return err
		}
		if !ok {
			return errReportFinalized
		}
		if r, err = rs.load(dbc, id); err != nil {
			return err
		}
		if snap != nil {
			out = &ReportView{Report: r, Snapshot: *snap}
			return nil
		}
		out = rs.frozen(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.IsFinal() {
		rs.log.Info("report finalized", "report_id", out.ID, "user_id", out.UserID)
		emit(ctx, realtime.SSEMessage{
			Channel: userChannel(out.UserID),
			Event:   realtime.SSEEventReportFinalized,
			Data:    map[string]any{"report_id": out.ID},
		})
	}
	return out, nil
}

func (rs *reportService) Finalize(ctx context.Context, id uuid.UUID) (*ReportView, error) {
	return rs.Save(ctx, id, SaveReportInput{Finalize: true})
}

func (rs *reportService) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	if _, err := staffFrom(ctx); err != nil {
		return err
	}
	return inTx(rs.db, ctx, func(dbc dbctx.Context) error {
		r, err := rs.load(dbc, id)
		if err != nil {
			return err
		}
		if r.IsFinal() {
			return errReportFinalized
		}
		ok, err := rs.reportRepo.DeleteDraft(dbc, id)
		if err != nil {
			return err
		}
		if !ok {
			return errReportFinalized
		}
		return nil
	})
}

func (rs *reportService) load(dbc dbctx.Context, id uuid.UUID) (*types.Report, error) {
	r, err := rs.reportRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apierr.NotFound("report_not_found")
	}
	return r, nil
}

// snapshot recomputes the report's sections over its period.
func (rs *reportService) snapshot(dbc dbctx.Context, r *types.Report) (progress.Snapshot, map[string]any, error) {
	p, err := period.New(r.PeriodStart, r.PeriodEnd)
	if err != nil {
		return progress.Snapshot{}, nil, apierr.BadRequest("invalid_period", err)
	}
	in, err := rs.progress.Load(dbc, r.UserID, &p)
	if err != nil {
		return progress.Snapshot{}, nil, err
	}
	snap := progress.BuildSnapshot(in)
	cols, err := snap.Columns()
	if err != nil {
		return progress.Snapshot{}, nil, fmt.Errorf("encode report snapshot: %w", err)
	}
	return snap, cols, nil
}

// refresh overwrites a draft's summary columns with a fresh snapshot.
func (rs *reportService) refresh(dbc dbctx.Context, r *types.Report) (*ReportView, error) {
	snap, cols, err := rs.snapshot(dbc, r)
	if err != nil {
		return nil, err
	}
	ok, err := rs.reportRepo.UpdateDraft(dbc, r.ID, cols)
	if err != nil {
		return nil, err
	}
	fresh, err := rs.load(dbc, r.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return rs.frozen(fresh), nil
	}
	return &ReportView{Report: fresh, Snapshot: snap}, nil
}

// frozen serves the stored snapshot as is. An unreadable section is logged
// and rendered empty.
func (rs *reportService) frozen(r *types.Report) *ReportView {
	snap, err := progress.Decode(
		r.AttendanceSummary,
		r.TasksSummary,
		r.SkillsSummary,
		r.LearningSummary,
		r.MoodSummary,
	)
	if err != nil {
		rs.log.Error("Stored report snapshot is corrupt", "report_id", r.ID, "status", r.Status, "error", err)
	}
	return &ReportView{Report: r, Snapshot: snap}
}
