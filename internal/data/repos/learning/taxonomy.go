package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type CategoryRepo interface {
	Create(dbc dbctx.Context, c *types.Category) (*types.Category, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Category, error)
	List(dbc dbctx.Context) ([]*types.Category, error)
	Rename(dbc dbctx.Context, id uuid.UUID, name string) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	repoLog := baseLog.With("repo", "CategoryRepo")
	return &categoryRepo{db: db, log: repoLog}
}

func (cr *categoryRepo) Create(dbc dbctx.Context, c *types.Category) (*types.Category, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	if err := transaction.WithContext(dbc.Ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (cr *categoryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Category, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	var row types.Category
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

func (cr *categoryRepo) List(dbc dbctx.Context) ([]*types.Category, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Category
	if err := transaction.WithContext(dbc.Ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *categoryRepo) Rename(dbc dbctx.Context, id uuid.UUID, name string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.Category{}).
		Where("id = ?", id).
		Update("name", name).Error
}

func (cr *categoryRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Category{}).Error
}

type TagRepo interface {
	Create(dbc dbctx.Context, t *types.Tag) (*types.Tag, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Tag, error)
	List(dbc dbctx.Context) ([]*types.Tag, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	repoLog := baseLog.With("repo", "TagRepo")
	return &tagRepo{db: db, log: repoLog}
}

func (tr *tagRepo) Create(dbc dbctx.Context, t *types.Tag) (*types.Tag, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	if err := transaction.WithContext(dbc.Ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (tr *tagRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Tag, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Tag
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *tagRepo) List(dbc dbctx.Context) ([]*types.Tag, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Tag
	if err := transaction.WithContext(dbc.Ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Delete removes the tag and its card links.
func (tr *tagRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("tag_id = ?", id).
		Delete(&types.FlashcardTag{}).Error; err != nil {
		return err
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Tag{}).Error
}
