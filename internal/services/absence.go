package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

type CreateAbsenceInput struct {
	Date    string `json:"date" validate:"required"`
	Reason  string `json:"reason" validate:"notblank,max=200"`
	Comment string `json:"comment" validate:"max=5000"`
}

type ListAbsencesInput struct {
	UserID *uuid.UUID
	Status string
	Period *period.Period
	Limit  int
	Offset int
}

type AbsenceService interface {
	Create(ctx context.Context, in CreateAbsenceInput) (*types.Absence, error)
	ListMine(ctx context.Context, p *period.Period) ([]*types.Absence, error)
	List(ctx context.Context, in ListAbsencesInput) ([]*types.Absence, error)
	Review(ctx context.Context, id uuid.UUID, approved bool) (*types.Absence, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type absenceService struct {
	db          *gorm.DB
	log         *logger.Logger
	absenceRepo repos.AbsenceRepo
}

func NewAbsenceService(db *gorm.DB, log *logger.Logger, absenceRepo repos.AbsenceRepo) AbsenceService {
	return &absenceService{
		db:          db,
		log:         log.With("service", "AbsenceService"),
		absenceRepo: absenceRepo,
	}
}

func (as *absenceService) Create(ctx context.Context, in CreateAbsenceInput) (*types.Absence, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	date, err := parseDay("date", in.Date)
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	row := &types.Absence{
		ID:        uuid.New(),
		UserID:    c.ID,
		Date:      *date,
		Reason:    in.Reason,
		Comment:   in.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := as.absenceRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Absence{row})
	if err != nil {
		return nil, fmt.Errorf("create absence: %w", err)
	}
	return created[0], nil
}

func (as *absenceService) ListMine(ctx context.Context, p *period.Period) ([]*types.Absence, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return as.absenceRepo.List(dbctx.Context{Ctx: ctx}, repos.AbsenceFilter{UserID: &c.ID, Period: p})
}

func (as *absenceService) List(ctx context.Context, in ListAbsencesInput) ([]*types.Absence, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	switch in.Status {
	case "", coaching.AbsenceStatusPending, coaching.AbsenceStatusApproved, coaching.AbsenceStatusRejected:
	default:
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown status %q", in.Status))
	}
	return as.absenceRepo.List(dbctx.Context{Ctx: ctx}, repos.AbsenceFilter{
		UserID: in.UserID,
		Status: in.Status,
		Period: in.Period,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
}

// Review sets approved to true or false. A reviewed absence may be flipped
// but never returns to pending; the last review wins.
func (as *absenceService) Review(ctx context.Context, id uuid.UUID, approved bool) (*types.Absence, error) {
	c, err := staffFrom(ctx)
	if err != nil {
		return nil, err
	}
	var out *types.Absence
	err = inTx(as.db, ctx, func(dbc dbctx.Context) error {
		existing, err := as.absenceRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apierr.NotFound("absence_not_found")
		}
		if err := as.absenceRepo.Review(dbc, id, approved, c.ID, nowUTC()); err != nil {
			return err
		}
		out, err = as.absenceRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	payload := map[string]any{"absence_id": out.ID, "user_id": out.UserID, "status": out.Status()}
	emit(ctx,
		realtime.SSEMessage{Channel: userChannel(out.UserID), Event: realtime.SSEEventAbsenceReviewed, Data: payload},
		realtime.SSEMessage{Channel: realtime.StaffChannel, Event: realtime.SSEEventAbsenceReviewed, Data: payload},
	)
	return out, nil
}

// Delete removes the caller's own absence while it is still pending.
func (as *absenceService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := callerFrom(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := as.absenceRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if existing == nil || existing.UserID != c.ID {
		return apierr.NotFound("absence_not_found")
	}
	deleted, err := as.absenceRepo.DeletePending(dbc, id, c.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return apierr.Conflict("absence_reviewed", nil)
	}
	return nil
}
