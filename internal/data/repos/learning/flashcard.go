package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos/query"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

// FlashcardFilter selects the cards visible to ViewerID: public cards plus
// their own. AllVisible lifts the restriction for staff.
type FlashcardFilter struct {
	ViewerID   uuid.UUID
	AllVisible bool
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
	CreatedBy  *uuid.UUID
	Limit      int
	Offset     int
}

type FlashcardRepo interface {
	Create(dbc dbctx.Context, card *types.Flashcard, tagIDs []uuid.UUID) (*types.Flashcard, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Flashcard, error)
	List(dbc dbctx.Context, filter FlashcardFilter) ([]*types.Flashcard, error)
	CountByCreator(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	ReplaceTags(dbc dbctx.Context, id uuid.UUID, tagIDs []uuid.UUID) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type flashcardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	repoLog := baseLog.With("repo", "FlashcardRepo")
	return &flashcardRepo{db: db, log: repoLog}
}

func (fr *flashcardRepo) Create(dbc dbctx.Context, card *types.Flashcard, tagIDs []uuid.UUID) (*types.Flashcard, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(dbc.Ctx).Omit("Tags").Create(card).Error; err != nil {
		return nil, err
	}
	inner := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}
	if err := fr.ReplaceTags(inner, card.ID, tagIDs); err != nil {
		return nil, err
	}
	return fr.GetByID(inner, card.ID)
}

func (fr *flashcardRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Flashcard, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	var row types.Flashcard
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Tags").
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

func (fr *flashcardRepo) List(dbc dbctx.Context, filter FlashcardFilter) ([]*types.Flashcard, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	q := transaction.WithContext(dbc.Ctx).Model(&types.Flashcard{}).Preload("Tags")
	if !filter.AllVisible {
		q = q.Where("is_public = ? OR created_by = ?", true, filter.ViewerID)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.CreatedBy != nil {
		q = q.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.TagID != nil {
		tagged := transaction.Model(&types.FlashcardTag{}).
			Select("flashcard_id").
			Where("tag_id = ?", *filter.TagID)
		q = q.Where("id IN (?)", tagged)
	}
	q = query.Page(q, filter.Limit, filter.Offset)

	var results []*types.Flashcard
	if err := q.Order("created_at DESC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *flashcardRepo) CountByCreator(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Model(&types.Flashcard{}).
		Where("created_by = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (fr *flashcardRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Flashcard{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ReplaceTags sets the exact tag set of a card.
func (fr *flashcardRepo) ReplaceTags(dbc dbctx.Context, id uuid.UUID, tagIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("flashcard_id = ?", id).
		Delete(&types.FlashcardTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	seen := map[uuid.UUID]bool{}
	rows := make([]*types.FlashcardTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		rows = append(rows, &types.FlashcardTag{FlashcardID: id, TagID: tagID})
	}
	return transaction.WithContext(dbc.Ctx).Create(&rows).Error
}

func (fr *flashcardRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Flashcard{}).Error
}
