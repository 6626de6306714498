package coaching

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos/query"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
)

type SkillFilter struct {
	UserID *uuid.UUID
	Status string
	Period *period.Period
	Limit  int
	Offset int
}

type SkillRepo interface {
	Create(dbc dbctx.Context, skills []*types.Skill) ([]*types.Skill, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Skill, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Skill, error)
	List(dbc dbctx.Context, filter SkillFilter) ([]*types.Skill, error)
	CountByStatus(dbc dbctx.Context, status string) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type skillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	repoLog := baseLog.With("repo", "SkillRepo")
	return &skillRepo{db: db, log: repoLog}
}

func (sr *skillRepo) Create(dbc dbctx.Context, skills []*types.Skill) ([]*types.Skill, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(skills) == 0 {
		return []*types.Skill{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (sr *skillRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Skill, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}

	var row types.Skill
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

func (sr *skillRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Skill, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Skill
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("title ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *skillRepo) List(dbc dbctx.Context, filter SkillFilter) ([]*types.Skill, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}

	q := transaction.WithContext(dbc.Ctx).Model(&types.Skill{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = query.InPeriod(q, "created_at", filter.Period)
	q = query.Page(q, filter.Limit, filter.Offset)

	var results []*types.Skill
	if err := q.Order("created_at DESC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *skillRepo) CountByStatus(dbc dbctx.Context, status string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Skill{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (sr *skillRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Skill{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (sr *skillRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Skill{}).Error
}
