package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type ToolRepo interface {
	Create(dbc dbctx.Context, t *types.Tool) (*types.Tool, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Tool, error)
	List(dbc dbctx.Context, categoryID *uuid.UUID) ([]*types.Tool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type toolRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewToolRepo(db *gorm.DB, baseLog *logger.Logger) ToolRepo {
	repoLog := baseLog.With("repo", "ToolRepo")
	return &toolRepo{db: db, log: repoLog}
}

func (tr *toolRepo) Create(dbc dbctx.Context, t *types.Tool) (*types.Tool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	if err := transaction.WithContext(dbc.Ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (tr *toolRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Tool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	var row types.Tool
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

func (tr *toolRepo) List(dbc dbctx.Context, categoryID *uuid.UUID) ([]*types.Tool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	q := transaction.WithContext(dbc.Ctx)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}

	var results []*types.Tool
	if err := q.Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *toolRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Tool{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (tr *toolRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Tool{}).Error
}
