package user

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quidz-backend/internal/domain"
	roles "github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

// ProfileFilter narrows ListProfiles. ParticipantsOnly hides every profile that
// holds a coach or admin role.
type ProfileFilter struct {
	ParticipantsOnly bool
	Search           string
	Limit            int
	Offset           int
}

type ProfileRepo interface {
	Create(dbc dbctx.Context, profiles []*types.Profile) ([]*types.Profile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Profile, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	List(dbc dbctx.Context, filter ProfileFilter) ([]*types.Profile, error)
	ListIDsWithRole(dbc dbctx.Context, role string) ([]uuid.UUID, error)
	CountWithRole(dbc dbctx.Context, role string) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	UpdateAvatarFields(dbc dbctx.Context, id uuid.UUID, bucketKey, avatarURL string) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) Create(dbc dbctx.Context, profiles []*types.Profile) ([]*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(profiles) == 0 {
		return []*types.Profile{}, nil
	}
	for _, p := range profiles {
		p.Email = normalizeEmail(p.Email)
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (pr *profileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	var row types.Profile
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

func (pr *profileRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Profile
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("full_name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) GetByEmail(dbc dbctx.Context, email string) (*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	var row types.Profile
	if err := transaction.WithContext(dbc.Ctx).
		Where("email = ?", normalizeEmail(email)).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (pr *profileRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (pr *profileRepo) List(dbc dbctx.Context, filter ProfileFilter) ([]*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	q := transaction.WithContext(dbc.Ctx).Model(&types.Profile{})
	if filter.ParticipantsOnly {
		staff := transaction.Model(&types.UserRole{}).
			Select("user_id").
			Where("role IN ?", []string{roles.RoleCoach, roles.RoleAdmin})
		q = q.Where("id NOT IN (?)", staff)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var results []*types.Profile
	if err := q.Order("full_name ASC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) ListIDsWithRole(dbc dbctx.Context, role string) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Joins("JOIN user_roles ON user_roles.user_id = profiles.id").
		Where("user_roles.role = ?", role).
		Order("profiles.id ASC").
		Pluck("profiles.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (pr *profileRepo) CountWithRole(dbc dbctx.Context, role string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Joins("JOIN user_roles ON user_roles.user_id = profiles.id").
		Where("user_roles.role = ?", role).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (pr *profileRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (pr *profileRepo) UpdateAvatarFields(dbc dbctx.Context, id uuid.UUID, bucketKey, avatarURL string) error {
	return pr.UpdateFields(dbc, id, map[string]any{
		"avatar_bucket_key": bucketKey,
		"avatar_url":        avatarURL,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
