package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type BadgeRepo interface {
	Award(dbc dbctx.Context, badge *types.Badge) (bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Badge, error)
	Revoke(dbc dbctx.Context, userID uuid.UUID, badgeType string) (bool, error)
}

type badgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBadgeRepo(db *gorm.DB, baseLog *logger.Logger) BadgeRepo {
	repoLog := baseLog.With("repo", "BadgeRepo")
	return &badgeRepo{db: db, log: repoLog}
}

// Award inserts the badge unless the user already holds that type. It
// reports whether a new row was written.
func (br *badgeRepo) Award(dbc dbctx.Context, badge *types.Badge) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = br.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_type"}},
			DoNothing: true,
		}).
		Create(badge)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (br *badgeRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Badge, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = br.db
	}

	var results []*types.Badge
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *badgeRepo) Revoke(dbc dbctx.Context, userID uuid.UUID, badgeType string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = br.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND badge_type = ?", userID, badgeType).
		Delete(&types.Badge{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
