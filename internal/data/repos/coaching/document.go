package coaching

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type DocumentRepo interface {
	Create(dbc dbctx.Context, d *types.Document) (*types.Document, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Document, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	repoLog := baseLog.With("repo", "DocumentRepo")
	return &documentRepo{db: db, log: repoLog}
}

func (dr *documentRepo) Create(dbc dbctx.Context, d *types.Document) (*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = dr.db
	}

	if err := transaction.WithContext(dbc.Ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (dr *documentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = dr.db
	}

	var row types.Document
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

func (dr *documentRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.Document
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *documentRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = dr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Document{}).Error
}
