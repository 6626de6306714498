package coaching

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos/query"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type ReportFilter struct {
	UserID *uuid.UUID
	Status string
	Limit  int
	Offset int
}

type ReportRepo interface {
	Create(dbc dbctx.Context, r *types.Report) (*types.Report, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Report, error)
	List(dbc dbctx.Context, filter ReportFilter) ([]*types.Report, error)
	CountByStatus(dbc dbctx.Context, status string) (int64, error)
	UpdateDraft(dbc dbctx.Context, id uuid.UUID, updates map[string]any) (bool, error)
	DeleteDraft(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	repoLog := baseLog.With("repo", "ReportRepo")
	return &reportRepo{db: db, log: repoLog}
}

func (rr *reportRepo) Create(dbc dbctx.Context, r *types.Report) (*types.Report, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	r.Status = coaching.ReportStatusDraft
	r.FinalizedAt = nil
	if err := transaction.WithContext(dbc.Ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func (rr *reportRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Report, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	var row types.Report
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

func (rr *reportRepo) List(dbc dbctx.Context, filter ReportFilter) ([]*types.Report, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	q := transaction.WithContext(dbc.Ctx).Model(&types.Report{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = query.Page(q, filter.Limit, filter.Offset)

	var results []*types.Report
	if err := q.Order("period_end DESC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *reportRepo) CountByStatus(dbc dbctx.Context, status string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Report{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateDraft applies updates in one statement guarded by status = draft.
// It reports false when the row is missing or already final.
func (rr *reportRepo) UpdateDraft(dbc dbctx.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	if len(updates) == 0 {
		return true, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Report{}).
		Where("id = ? AND status = ?", id, coaching.ReportStatusDraft).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (rr *reportRepo) DeleteDraft(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND status = ?", id, coaching.ReportStatusDraft).
		Delete(&types.Report{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
