package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos/query"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
)

type AbsenceFilter struct {
	UserID *uuid.UUID
	Status string
	Period *period.Period
	Limit  int
	Offset int
}

type AbsenceRepo interface {
	Create(dbc dbctx.Context, absences []*types.Absence) ([]*types.Absence, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Absence, error)
	List(dbc dbctx.Context, filter AbsenceFilter) ([]*types.Absence, error)
	CountPending(dbc dbctx.Context) (int64, error)
	Review(dbc dbctx.Context, id uuid.UUID, approved bool, reviewer uuid.UUID, at time.Time) error
	DeletePending(dbc dbctx.Context, id, ownerID uuid.UUID) (bool, error)
}

type absenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAbsenceRepo(db *gorm.DB, baseLog *logger.Logger) AbsenceRepo {
	repoLog := baseLog.With("repo", "AbsenceRepo")
	return &absenceRepo{db: db, log: repoLog}
}

func (ar *absenceRepo) Create(dbc dbctx.Context, absences []*types.Absence) ([]*types.Absence, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	if len(absences) == 0 {
		return []*types.Absence{}, nil
	}
	for _, a := range absences {
		a.Approved = nil
		a.ReviewedBy = nil
		a.ReviewedAt = nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&absences).Error; err != nil {
		return nil, err
	}
	return absences, nil
}

func (ar *absenceRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Absence, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	var row types.Absence
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (ar *absenceRepo) List(dbc dbctx.Context, filter AbsenceFilter) ([]*types.Absence, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	q := transaction.WithContext(dbc.Ctx).Model(&types.Absence{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	switch filter.Status {
	case coaching.AbsenceStatusPending:
		q = q.Where("approved IS NULL")
	case coaching.AbsenceStatusApproved:
		q = q.Where("approved = ?", true)
	case coaching.AbsenceStatusRejected:
		q = q.Where("approved = ?", false)
	}
	q = query.InPeriod(q, "date", filter.Period)
	q = query.Page(q, filter.Limit, filter.Offset)

	var results []*types.Absence
	if err := q.Order("date DESC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *absenceRepo) CountPending(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Absence{}).
		Where("approved IS NULL").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Review records a staff decision. Later reviews overwrite earlier ones.
func (ar *absenceRepo) Review(dbc dbctx.Context, id uuid.UUID, approved bool, reviewer uuid.UUID, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.Absence{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"approved":    approved,
			"reviewed_by": reviewer,
			"reviewed_at": at.UTC(),
		}).Error
}

// DeletePending removes the owner's absence only while it is still pending.
func (ar *absenceRepo) DeletePending(dbc dbctx.Context, id, ownerID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ? AND approved IS NULL", id, ownerID).
		Delete(&types.Absence{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
