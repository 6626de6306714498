package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

// AnswerRow is a feedback answer joined with its question and author.
type AnswerRow struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Question   string    `json:"question"`
	Kind       string    `json:"kind"`
	UserID     uuid.UUID `json:"user_id"`
	FullName   string    `json:"full_name"`
	Rating     *int      `json:"rating,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type FeedbackRepo interface {
	CreateQuestion(dbc dbctx.Context, q *types.FeedbackQuestion) (*types.FeedbackQuestion, error)
	GetQuestion(dbc dbctx.Context, id uuid.UUID) (*types.FeedbackQuestion, error)
	ListQuestions(dbc dbctx.Context) ([]*types.FeedbackQuestion, error)
	ListOpenQuestions(dbc dbctx.Context, userID uuid.UUID, now time.Time) ([]*types.FeedbackQuestion, error)
	UpdateQuestion(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	DeleteQuestion(dbc dbctx.Context, id uuid.UUID) error
	CreateAnswer(dbc dbctx.Context, a *types.FeedbackAnswer) (*types.FeedbackAnswer, error)
	ListAnswers(dbc dbctx.Context, questionID *uuid.UUID) ([]*AnswerRow, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	repoLog := baseLog.With("repo", "FeedbackRepo")
	return &feedbackRepo{db: db, log: repoLog}
}

func (fr *feedbackRepo) CreateQuestion(dbc dbctx.Context, q *types.FeedbackQuestion) (*types.FeedbackQuestion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(dbc.Ctx).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

func (fr *feedbackRepo) GetQuestion(dbc dbctx.Context, id uuid.UUID) (*types.FeedbackQuestion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	var row types.FeedbackQuestion
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

func (fr *feedbackRepo) ListQuestions(dbc dbctx.Context) ([]*types.FeedbackQuestion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.FeedbackQuestion
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListOpenQuestions returns questions inside their activity window, addressed
// to userID or to everyone, that userID has not answered yet.
func (fr *feedbackRepo) ListOpenQuestions(dbc dbctx.Context, userID uuid.UUID, now time.Time) ([]*types.FeedbackQuestion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	now = now.UTC()
	answered := transaction.Model(&types.FeedbackAnswer{}).
		Select("question_id").
		Where("user_id = ?", userID)

	var results []*types.FeedbackQuestion
	if err := transaction.WithContext(dbc.Ctx).
		Where("active_from IS NULL OR active_from <= ?", now).
		Where("active_until IS NULL OR active_until >= ?", now).
		Where("target_user_id IS NULL OR target_user_id = ?", userID).
		Where("id NOT IN (?)", answered).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *feedbackRepo) UpdateQuestion(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.FeedbackQuestion{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (fr *feedbackRepo) DeleteQuestion(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.FeedbackQuestion{}).Error
}

// CreateAnswer fails with a unique violation when the user already answered.
func (fr *feedbackRepo) CreateAnswer(dbc dbctx.Context, a *types.FeedbackAnswer) (*types.FeedbackAnswer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(dbc.Ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (fr *feedbackRepo) ListAnswers(dbc dbctx.Context, questionID *uuid.UUID) ([]*AnswerRow, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = fr.db
	}

	q := transaction.WithContext(dbc.Ctx).
		Table("feedback_answers").
		Select(`feedback_answers.id, feedback_answers.question_id, feedback_questions.question,
			feedback_questions.kind, feedback_answers.user_id, profiles.full_name,
			feedback_answers.rating, feedback_answers.text, feedback_answers.created_at`).
		Joins("JOIN feedback_questions ON feedback_questions.id = feedback_answers.question_id AND feedback_questions.deleted_at IS NULL").
		Joins("LEFT JOIN profiles ON profiles.id = feedback_answers.user_id")
	if questionID != nil {
		q = q.Where("feedback_answers.question_id = ?", *questionID)
	}

	var results []*AnswerRow
	if err := q.Order("feedback_answers.created_at ASC").Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
