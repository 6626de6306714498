package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type UserRoleRepo interface {
	Grant(dbc dbctx.Context, userID uuid.UUID, role string) error
	Revoke(dbc dbctx.Context, userID uuid.UUID, role string) error
	Replace(dbc dbctx.Context, userID uuid.UUID, roles []string) error
	GetRoles(dbc dbctx.Context, userID uuid.UUID) ([]string, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error)
}

type userRoleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRoleRepo(db *gorm.DB, baseLog *logger.Logger) UserRoleRepo {
	repoLog := baseLog.With("repo", "UserRoleRepo")
	return &userRoleRepo{db: db, log: repoLog}
}

func (rr *userRoleRepo) Grant(dbc dbctx.Context, userID uuid.UUID, role string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	row := &types.UserRole{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "role"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (rr *userRoleRepo) Revoke(dbc dbctx.Context, userID uuid.UUID, role string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND role = ?", userID, role).
		Delete(&types.UserRole{}).Error
}

// Replace sets the exact role set of a user. Callers should pass a transaction.
func (rr *userRoleRepo) Replace(dbc dbctx.Context, userID uuid.UUID, roles []string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	q := transaction.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if len(roles) > 0 {
		q = q.Where("role NOT IN ?", roles)
	}
	if err := q.Delete(&types.UserRole{}).Error; err != nil {
		return err
	}
	inner := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}
	for _, role := range roles {
		if err := rr.Grant(inner, userID, role); err != nil {
			return err
		}
	}
	return nil
}

func (rr *userRoleRepo) GetRoles(dbc dbctx.Context, userID uuid.UUID) ([]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	var roles []string
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.UserRole{}).
		Where("user_id = ?", userID).
		Order("role ASC").
		Pluck("role", &roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (rr *userRoleRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}

	out := make(map[uuid.UUID][]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []*types.UserRole
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id IN ?", userIDs).
		Order("role ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.UserID] = append(out[r.UserID], r.Role)
	}
	return out, nil
}
