package portfolio

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/quidz-backend/internal/data/repos/query"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type GalleryFilter struct {
	ViewerID     uuid.UUID
	Category     string
	FeaturedOnly bool
	Limit        int
	Offset       int
}

type ProjectRepo interface {
	Create(dbc dbctx.Context, p *types.Project) (*types.Project, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Project, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, publishedOnly bool) ([]*types.Project, error)
	ListGallery(dbc dbctx.Context, filter GalleryFilter) ([]*types.GalleryItem, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	Like(dbc dbctx.Context, projectID, userID uuid.UUID) error
	Unlike(dbc dbctx.Context, projectID, userID uuid.UUID) error
	LinkSkill(dbc dbctx.Context, projectID, skillID uuid.UUID) error
	UnlinkSkill(dbc dbctx.Context, projectID, skillID uuid.UUID) error
	ListSkillIDs(dbc dbctx.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	repoLog := baseLog.With("repo", "ProjectRepo")
	return &projectRepo{db: db, log: repoLog}
}

func (pr *projectRepo) Create(dbc dbctx.Context, p *types.Project) (*types.Project, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	if err := transaction.WithContext(dbc.Ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (pr *projectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Project, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	var row types.Project
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

func (pr *projectRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, publishedOnly bool) ([]*types.Project, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	q := transaction.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if publishedOnly {
		q = q.Where("published = ?", true)
	}

	var results []*types.Project
	if err := q.Order("featured DESC").Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type likeStat struct {
	ProjectID uuid.UUID
	Likes     int64
}

// ListGallery returns published projects with like counters for the viewer.
func (pr *projectRepo) ListGallery(dbc dbctx.Context, filter GalleryFilter) ([]*types.GalleryItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	q := transaction.WithContext(dbc.Ctx).Model(&types.Project{}).Where("published = ?", true)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.FeaturedOnly {
		q = q.Where("featured = ?", true)
	}
	q = query.Page(q, filter.Limit, filter.Offset)

	var projects []*types.Project
	if err := q.Order("featured DESC").Order("created_at DESC").Order("id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	out := make([]*types.GalleryItem, 0, len(projects))
	if len(projects) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	var stats []likeStat
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ProjectLike{}).
		Select("project_id, COUNT(*) AS likes").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(stats))
	for _, s := range stats {
		counts[s.ProjectID] = s.Likes
	}

	var mine []uuid.UUID
	if filter.ViewerID != uuid.Nil {
		if err := transaction.WithContext(dbc.Ctx).
			Model(&types.ProjectLike{}).
			Where("project_id IN ? AND user_id = ?", ids, filter.ViewerID).
			Pluck("project_id", &mine).Error; err != nil {
			return nil, err
		}
	}
	liked := make(map[uuid.UUID]bool, len(mine))
	for _, id := range mine {
		liked[id] = true
	}

	for _, p := range projects {
		out = append(out, &types.GalleryItem{
			Project:   *p,
			LikeCount: counts[p.ID],
			LikedByMe: liked[p.ID],
		})
	}
	return out, nil
}

func (pr *projectRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Project{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (pr *projectRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Project{}).Error
}

func (pr *projectRepo) Like(dbc dbctx.Context, projectID, userID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&types.ProjectLike{ProjectID: projectID, UserID: userID}).Error
}

func (pr *projectRepo) Unlike(dbc dbctx.Context, projectID, userID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&types.ProjectLike{}).Error
}

func (pr *projectRepo) LinkSkill(dbc dbctx.Context, projectID, skillID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&types.ProjectSkill{ProjectID: projectID, SkillID: skillID}).Error
}

func (pr *projectRepo) UnlinkSkill(dbc dbctx.Context, projectID, skillID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Where("project_id = ? AND skill_id = ?", projectID, skillID).
		Delete(&types.ProjectSkill{}).Error
}

func (pr *projectRepo) ListSkillIDs(dbc dbctx.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ProjectSkill{}).
		Where("project_id = ?", projectID).
		Order("skill_id ASC").
		Pluck("skill_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
