package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/quidz-backend/internal/data/repos/query"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
)

type LearningProgressRepo interface {
	Create(dbc dbctx.Context, rows []*types.LearningProgress) ([]*types.LearningProgress, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, p *period.Period) ([]*types.LearningProgress, error)
	CountDistinctLearned(dbc dbctx.Context, userID uuid.UUID, p *period.Period) (int64, error)
}

type learningProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningProgressRepo(db *gorm.DB, baseLog *logger.Logger) LearningProgressRepo {
	repoLog := baseLog.With("repo", "LearningProgressRepo")
	return &learningProgressRepo{db: db, log: repoLog}
}

func (lr *learningProgressRepo) Create(dbc dbctx.Context, rows []*types.LearningProgress) ([]*types.LearningProgress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = lr.db
	}

	if len(rows) == 0 {
		return []*types.LearningProgress{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (lr *learningProgressRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, p *period.Period) ([]*types.LearningProgress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = lr.db
	}

	q := transaction.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	q = query.InPeriod(q, "created_at", p)

	var results []*types.LearningProgress
	if err := q.Order("created_at ASC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// CountDistinctLearned counts cards with at least one knew_answer=true row.
func (lr *learningProgressRepo) CountDistinctLearned(dbc dbctx.Context, userID uuid.UUID, p *period.Period) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = lr.db
	}

	q := transaction.WithContext(dbc.Ctx).
		Model(&types.LearningProgress{}).
		Where("user_id = ? AND knew_answer = ?", userID, true)
	q = query.InPeriod(q, "created_at", p)

	var count int64
	if err := q.Distinct("flashcard_id").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type FlashcardFeedbackRepo interface {
	Upsert(dbc dbctx.Context, fb *types.FlashcardFeedback) error
	ListByCard(dbc dbctx.Context, flashcardID uuid.UUID) ([]*types.FlashcardFeedback, error)
}

type flashcardFeedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardFeedbackRepo {
	repoLog := baseLog.With("repo", "FlashcardFeedbackRepo")
	return &flashcardFeedbackRepo{db: db, log: repoLog}
}

// Upsert keeps one feedback row per (user, card); a repeat overwrites it.
func (fr *flashcardFeedbackRepo) Upsert(dbc dbctx.Context, fb *types.FlashcardFeedback) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "flashcard_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"helpful", "comment", "updated_at"}),
		}).
		Create(fb).Error
}

func (fr *flashcardFeedbackRepo) ListByCard(dbc dbctx.Context, flashcardID uuid.UUID) ([]*types.FlashcardFeedback, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.FlashcardFeedback
	if err := transaction.WithContext(dbc.Ctx).
		Where("flashcard_id = ?", flashcardID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
