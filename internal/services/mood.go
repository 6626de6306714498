package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
)

type MoodInput struct {
	MoodValue int    `json:"mood_value" validate:"min=1,max=5"`
	Note      string `json:"note" validate:"max=2000"`
}

type QuestionInput struct {
	Question     string     `json:"question" validate:"notblank,max=2000"`
	Kind         string     `json:"kind" validate:"omitempty,feedback_kind"`
	ActiveFrom   *time.Time `json:"active_from"`
	ActiveUntil  *time.Time `json:"active_until"`
	TargetUserID *uuid.UUID `json:"target_user_id"`
}

type AnswerQuestionInput struct {
	Rating *int   `json:"rating" validate:"omitempty,min=1,max=5"`
	Text   string `json:"text" validate:"max=5000"`
}

type MoodService interface {
	Record(ctx context.Context, in MoodInput) (*types.MoodEntry, error)
	List(ctx context.Context, userID *uuid.UUID, p *period.Period) ([]*types.MoodEntry, error)
}

type FeedbackService interface {
	CreateQuestion(ctx context.Context, in QuestionInput) (*types.FeedbackQuestion, error)
	ListQuestions(ctx context.Context) ([]*types.FeedbackQuestion, error)
	UpdateQuestion(ctx context.Context, id uuid.UUID, in QuestionInput) (*types.FeedbackQuestion, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
	ListOpen(ctx context.Context) ([]*types.FeedbackQuestion, error)
	Answer(ctx context.Context, questionID uuid.UUID, in AnswerQuestionInput) (*types.FeedbackAnswer, error)
	ListAnswers(ctx context.Context, questionID *uuid.UUID) ([]*repos.AnswerRow, error)
}

type moodService struct {
	log      *logger.Logger
	moodRepo repos.MoodRepo
}

func NewMoodService(log *logger.Logger, moodRepo repos.MoodRepo) MoodService {
	return &moodService{log: log.With("service", "MoodService"), moodRepo: moodRepo}
}

func (ms *moodService) Record(ctx context.Context, in MoodInput) (*types.MoodEntry, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	row := &types.MoodEntry{
		ID:        uuid.New(),
		UserID:    c.ID,
		MoodValue: in.MoodValue,
		Note:      strings.TrimSpace(in.Note),
		CreatedAt: nowUTC(),
	}
	created, err := ms.moodRepo.Create(dbctx.Context{Ctx: ctx}, []*types.MoodEntry{row})
	if err != nil {
		return nil, fmt.Errorf("create mood entry: %w", err)
	}
	return created[0], nil
}

func (ms *moodService) List(ctx context.Context, userID *uuid.UUID, p *period.Period) ([]*types.MoodEntry, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	subject, err := c.subject(userID)
	if err != nil {
		return nil, err
	}
	return ms.moodRepo.List(dbctx.Context{Ctx: ctx}, repos.MoodFilter{UserID: &subject, Period: p})
}

type feedbackService struct {
	db           *gorm.DB
	log          *logger.Logger
	feedbackRepo repos.FeedbackRepo
}

func NewFeedbackService(db *gorm.DB, log *logger.Logger, feedbackRepo repos.FeedbackRepo) FeedbackService {
	return &feedbackService{db: db, log: log.With("service", "FeedbackService"), feedbackRepo: feedbackRepo}
}

var errQuestionWindow = apierr.BadRequest("invalid_range", fmt.Errorf("active_until must not be before active_from"))

func (fs *feedbackService) CreateQuestion(ctx context.Context, in QuestionInput) (*types.FeedbackQuestion, error) {
	c, err := staffFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Question = strings.TrimSpace(in.Question)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if in.ActiveFrom != nil && in.ActiveUntil != nil && in.ActiveUntil.Before(*in.ActiveFrom) {
		return nil, errQuestionWindow
	}
	kind := in.Kind
	if kind == "" {
		kind = coaching.FeedbackKindRating
	}
	now := nowUTC()
	return fs.feedbackRepo.CreateQuestion(dbctx.Context{Ctx: ctx}, &types.FeedbackQuestion{
		ID:           uuid.New(),
		Question:     in.Question,
		Kind:         kind,
		ActiveFrom:   utcPtr(in.ActiveFrom),
		ActiveUntil:  utcPtr(in.ActiveUntil),
		TargetUserID: in.TargetUserID,
		CreatedBy:    c.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (fs *feedbackService) ListQuestions(ctx context.Context) ([]*types.FeedbackQuestion, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	return fs.feedbackRepo.ListQuestions(dbctx.Context{Ctx: ctx})
}

// UpdateQuestion replaces the question's text, kind, window and target.
func (fs *feedbackService) UpdateQuestion(ctx context.Context, id uuid.UUID, in QuestionInput) (*types.FeedbackQuestion, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	in.Question = strings.TrimSpace(in.Question)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if in.ActiveFrom != nil && in.ActiveUntil != nil && in.ActiveUntil.Before(*in.ActiveFrom) {
		return nil, errQuestionWindow
	}
	var out *types.FeedbackQuestion
	err := inTx(fs.db, ctx, func(dbc dbctx.Context) error {
		q, err := fs.feedbackRepo.GetQuestion(dbc, id)
		if err != nil {
			return err
		}
		if q == nil {
			return apierr.NotFound("question_not_found")
		}
		kind := in.Kind
		if kind == "" {
			kind = q.Kind
		}
		if err := fs.feedbackRepo.UpdateQuestion(dbc, id, map[string]any{
			"question":       in.Question,
			"kind":           kind,
			"active_from":    utcPtr(in.ActiveFrom),
			"active_until":   utcPtr(in.ActiveUntil),
			"target_user_id": in.TargetUserID,
			"updated_at":     nowUTC(),
		}); err != nil {
			return err
		}
		out, err = fs.feedbackRepo.GetQuestion(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (fs *feedbackService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	if _, err := staffFrom(ctx); err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	q, err := fs.feedbackRepo.GetQuestion(dbc, id)
	if err != nil {
		return err
	}
	if q == nil {
		return apierr.NotFound("question_not_found")
	}
	return fs.feedbackRepo.DeleteQuestion(dbc, id)
}

// ListOpen returns questions inside their window, addressed to the caller or
// to everyone, that the caller has not answered yet.
func (fs *feedbackService) ListOpen(ctx context.Context) ([]*types.FeedbackQuestion, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return fs.feedbackRepo.ListOpenQuestions(dbctx.Context{Ctx: ctx}, c.ID, nowUTC())
}

func (fs *feedbackService) Answer(ctx context.Context, questionID uuid.UUID, in AnswerQuestionInput) (*types.FeedbackAnswer, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	q, err := fs.feedbackRepo.GetQuestion(dbc, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil || (q.TargetUserID != nil && *q.TargetUserID != c.ID) {
		return nil, apierr.NotFound("question_not_found")
	}
	if !q.IsActiveAt(nowUTC()) {
		return nil, apierr.Conflict("question_closed", nil)
	}

	text := strings.TrimSpace(in.Text)
	switch q.Kind {
	case coaching.FeedbackKindText:
		if text == "" {
			return nil, apierr.BadRequest("validation_failed", fmt.Errorf("text is required"))
		}
		in.Rating = nil
	default:
		if in.Rating == nil {
			return nil, apierr.BadRequest("validation_failed", fmt.Errorf("rating is required"))
		}
	}

	a, err := fs.feedbackRepo.CreateAnswer(dbc, &types.FeedbackAnswer{
		ID:         uuid.New(),
		QuestionID: questionID,
		UserID:     c.ID,
		Rating:     in.Rating,
		Text:       text,
		CreatedAt:  nowUTC(),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("already_answered", nil)
		}
		return nil, err
	}
	return a, nil
}

func (fs *feedbackService) ListAnswers(ctx context.Context, questionID *uuid.UUID) ([]*repos.AnswerRow, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	return fs.feedbackRepo.ListAnswers(dbctx.Context{Ctx: ctx}, questionID)
}
