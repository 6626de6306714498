package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/learning"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
)

// DefaultLearnedMilestones are the learned-card counts that earn a badge.
var DefaultLearnedMilestones = []int{10, 50, 100}

type FlashcardInput struct {
	FrontText  string      `json:"front_text" validate:"notblank,max=5000"`
	BackText   string      `json:"back_text" validate:"notblank,max=5000"`
	CategoryID *uuid.UUID  `json:"category_id"`
	IsPublic   bool        `json:"is_public"`
	TagIDs     []uuid.UUID `json:"tag_ids" validate:"max=20"`
}

type UpdateFlashcardInput struct {
	FrontText     *string      `json:"front_text" validate:"omitempty,notblank,max=5000"`
	BackText      *string      `json:"back_text" validate:"omitempty,notblank,max=5000"`
	CategoryID    *uuid.UUID   `json:"category_id"`
	ClearCategory bool         `json:"clear_category"`
	IsPublic      *bool        `json:"is_public"`
	TagIDs        *[]uuid.UUID `json:"tag_ids"`
}

type ListFlashcardsInput struct {
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
	Mine       bool
	Limit      int
	Offset     int
}

type AnswerInput struct {
	KnewAnswer bool `json:"knew_answer"`
}

type AnswerResult struct {
	Progress      *types.LearningProgress `json:"progress"`
	LearnedCount  int64                   `json:"learned_count"`
	AwardedBadges []string                `json:"awarded_badges"`
}

type FlashcardFeedbackInput struct {
	Helpful bool   `json:"helpful"`
	Comment string `json:"comment" validate:"max=2000"`
}

type NameInput struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

type FlashcardService interface {
	Create(ctx context.Context, in FlashcardInput) (*types.Flashcard, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Flashcard, error)
	List(ctx context.Context, in ListFlashcardsInput) ([]*types.Flashcard, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateFlashcardInput) (*types.Flashcard, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecordAnswer(ctx context.Context, id uuid.UUID, in AnswerInput) (*AnswerResult, error)
	RecordFeedback(ctx context.Context, id uuid.UUID, in FlashcardFeedbackInput) error
	ListFeedback(ctx context.Context, id uuid.UUID) ([]*types.FlashcardFeedback, error)

	ListCategories(ctx context.Context) ([]*types.Category, error)
	CreateCategory(ctx context.Context, in NameInput) (*types.Category, error)
	RenameCategory(ctx context.Context, id uuid.UUID, in NameInput) (*types.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListTags(ctx context.Context) ([]*types.Tag, error)
	CreateTag(ctx context.Context, in NameInput) (*types.Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
}

type flashcardService struct {
	db           *gorm.DB
	log          *logger.Logger
	cardRepo     repos.FlashcardRepo
	categoryRepo repos.CategoryRepo
	tagRepo      repos.TagRepo
	learningRepo repos.LearningProgressRepo
	feedbackRepo repos.FlashcardFeedbackRepo
	badgeRepo    repos.BadgeRepo
	milestones   []int
}

func NewFlashcardService(
	db *gorm.DB,
	log *logger.Logger,
	cardRepo repos.FlashcardRepo,
	categoryRepo repos.CategoryRepo,
	tagRepo repos.TagRepo,
	learningRepo repos.LearningProgressRepo,
	feedbackRepo repos.FlashcardFeedbackRepo,
	badgeRepo repos.BadgeRepo,
	milestones []int,
) FlashcardService {
	if len(milestones) == 0 {
		milestones = DefaultLearnedMilestones
	}
	ms := append([]int(nil), milestones...)
	sort.Ints(ms)
	return &flashcardService{
		db:           db,
		log:          log.With("service", "FlashcardService"),
		cardRepo:     cardRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		learningRepo: learningRepo,
		feedbackRepo: feedbackRepo,
		badgeRepo:    badgeRepo,
		milestones:   ms,
	}
}

// Create stores the card; a user's first card earns first_flashcard.
func (fs *flashcardService) Create(ctx context.Context, in FlashcardInput) (*types.Flashcard, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.FrontText = strings.TrimSpace(in.FrontText)
	in.BackText = strings.TrimSpace(in.BackText)
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var (
		out   *types.Flashcard
		badge *types.Badge
	)
	err = inTx(fs.db, ctx, func(dbc dbctx.Context) error {
		if err := fs.checkRefs(dbc, in.CategoryID, in.TagIDs); err != nil {
			return err
		}
		now := nowUTC()
		card := &types.Flashcard{
			ID:         uuid.New(),
			FrontText:  in.FrontText,
			BackText:   in.BackText,
			CategoryID: in.CategoryID,
			IsPublic:   in.IsPublic,
			CreatedBy:  c.ID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		out, err = fs.cardRepo.Create(dbc, card, dedupeIDs(in.TagIDs))
		if err != nil {
			return err
		}
		n, err := fs.cardRepo.CountByCreator(dbc, c.ID)
		if err != nil {
			return err
		}
		if n == 1 {
			b, awarded, err := awardBadge(dbc, fs.badgeRepo, c.ID, learning.BadgeFirstFlashcard, nil)
			if err != nil {
				return err
			}
			if awarded {
				badge = b
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if badge != nil {
		emit(ctx, badgeAwardedMessage(badge))
	}
	return out, nil
}

func (fs *flashcardService) checkRefs(dbc dbctx.Context, categoryID *uuid.UUID, tagIDs []uuid.UUID) error {
	if categoryID != nil {
		cat, err := fs.categoryRepo.GetByID(dbc, *categoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return apierr.NotFound("category_not_found")
		}
	}
	ids := dedupeIDs(tagIDs)
	if len(ids) == 0 {
		return nil
	}
	tags, err := fs.tagRepo.GetByIDs(dbc, ids)
	if err != nil {
		return err
	}
	if len(tags) != len(ids) {
		return apierr.NotFound("tag_not_found")
	}
	return nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// visible loads a card the caller may read: public, own, or any for staff.
func (fs *flashcardService) visible(dbc dbctx.Context, c caller, id uuid.UUID) (*types.Flashcard, error) {
	card, err := fs.cardRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if card == nil || (!card.IsPublic && !c.owns(card.CreatedBy)) {
		return nil, apierr.NotFound("flashcard_not_found")
	}
	return card, nil
}

func (fs *flashcardService) editable(dbc dbctx.Context, c caller, id uuid.UUID) (*types.Flashcard, error) {
	card, err := fs.visible(dbc, c, id)
	if err != nil {
		return nil, err
	}
	if !c.owns(card.CreatedBy) {
		return nil, errNotOwner
	}
	return card, nil
}

func (fs *flashcardService) Get(ctx context.Context, id uuid.UUID) (*types.Flashcard, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return fs.visible(dbctx.Context{Ctx: ctx}, c, id)
}

// List returns public cards plus the caller's own; staff see every card.
func (fs *flashcardService) List(ctx context.Context, in ListFlashcardsInput) ([]*types.Flashcard, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	filter := repos.FlashcardFilter{
		ViewerID:   c.ID,
		AllVisible: c.Roles.IsStaff,
		CategoryID: in.CategoryID,
		TagID:      in.TagID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if in.Mine {
		filter.CreatedBy = &c.ID
	}
	return fs.cardRepo.List(dbctx.Context{Ctx: ctx}, filter)
}

func (fs *flashcardService) Update(ctx context.Context, id uuid.UUID, in UpdateFlashcardInput) (*types.Flashcard, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.FrontText != nil {
		updates["front_text"] = strings.TrimSpace(*in.FrontText)
	}
	if in.BackText != nil {
		updates["back_text"] = strings.TrimSpace(*in.BackText)
	}
	if in.CategoryID != nil {
		updates["category_id"] = *in.CategoryID
	} else if in.ClearCategory {
		updates["category_id"] = nil
	}
	if in.IsPublic != nil {
		updates["is_public"] = *in.IsPublic
	}
	if len(updates) == 0 && in.TagIDs == nil {
		return nil, apierr.BadRequest("no_changes", fmt.Errorf("no flashcard updates provided"))
	}

	var out *types.Flashcard
	err = inTx(fs.db, ctx, func(dbc dbctx.Context) error {
		if _, err := fs.editable(dbc, c, id); err != nil {
			return err
		}
		var tagIDs []uuid.UUID
		if in.TagIDs != nil {
			tagIDs = *in.TagIDs
		}
		if err := fs.checkRefs(dbc, in.CategoryID, tagIDs); err != nil {
			return err
		}
		if len(updates) > 0 {
			updates["updated_at"] = nowUTC()
			if err := fs.cardRepo.UpdateFields(dbc, id, updates); err != nil {
				return err
			}
		}
		if in.TagIDs != nil {
			if err := fs.cardRepo.ReplaceTags(dbc, id, dedupeIDs(tagIDs)); err != nil {
				return err
			}
		}
		out, err = fs.cardRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (fs *flashcardService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := callerFrom(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := fs.editable(dbc, c, id); err != nil {
		return err
	}
	return fs.cardRepo.SoftDeleteByIDs(dbc, []uuid.UUID{id})
}

// RecordAnswer appends a progress row. A known answer re-evaluates the
// learned milestones against the distinct learned-card count.
func (fs *flashcardService) RecordAnswer(ctx context.Context, id uuid.UUID, in AnswerInput) (*AnswerResult, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	out := &AnswerResult{AwardedBadges: []string{}}
	var awarded []*types.Badge
	err = inTx(fs.db, ctx, func(dbc dbctx.Context) error {
		if _, err := fs.visible(dbc, c, id); err != nil {
			return err
		}
		row := &types.LearningProgress{
			ID:          uuid.New(),
			UserID:      c.ID,
			FlashcardID: id,
			KnewAnswer:  in.KnewAnswer,
			CreatedAt:   nowUTC(),
		}
		if _, err := fs.learningRepo.Create(dbc, []*types.LearningProgress{row}); err != nil {
			return err
		}
		out.Progress = row

		n, err := fs.learningRepo.CountDistinctLearned(dbc, c.ID, nil)
		if err != nil {
			return err
		}
		out.LearnedCount = n
		if !in.KnewAnswer {
			return nil
		}
		for _, m := range fs.milestones {
			if int64(m) > n {
				break
			}
			b, ok, err := awardBadge(dbc, fs.badgeRepo, c.ID, learning.LearnedBadge(m), nil)
			if err != nil {
				return err
			}
			if ok {
				awarded = append(awarded, b)
				out.AwardedBadges = append(out.AwardedBadges, b.BadgeType)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, b := range awarded {
		emit(ctx, badgeAwardedMessage(b))
	}
	return out, nil
}

func (fs *flashcardService) RecordFeedback(ctx context.Context, id uuid.UUID, in FlashcardFeedbackInput) error {
	c, err := callerFrom(ctx)
	if err != nil {
		return err
	}
	if err := checkInput(in); err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := fs.visible(dbc, c, id); err != nil {
		return err
	}
	now := nowUTC()
	return fs.feedbackRepo.Upsert(dbc, &types.FlashcardFeedback{
		ID:          uuid.New(),
		UserID:      c.ID,
		FlashcardID: id,
		Helpful:     in.Helpful,
		Comment:     strings.TrimSpace(in.Comment),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// ListFeedback is for the card's creator and staff.
func (fs *flashcardService) ListFeedback(ctx context.Context, id uuid.UUID) ([]*types.FlashcardFeedback, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := fs.editable(dbc, c, id); err != nil {
		return nil, err
	}
	return fs.feedbackRepo.ListByCard(dbc, id)
}

func (fs *flashcardService) ListCategories(ctx context.Context) ([]*types.Category, error) {
	if _, err := callerFrom(ctx); err != nil {
		return nil, err
	}
	return fs.categoryRepo.List(dbctx.Context{Ctx: ctx})
}

func (fs *flashcardService) CreateCategory(ctx context.Context, in NameInput) (*types.Category, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	now := nowUTC()
	cat, err := fs.categoryRepo.Create(dbctx.Context{Ctx: ctx}, &types.Category{
		ID:        uuid.New(),
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apierr.Conflict("category_exists", nil)
	}
	return cat, err
}

func (fs *flashcardService) RenameCategory(ctx context.Context, id uuid.UUID, in NameInput) (*types.Category, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	cat, err := fs.categoryRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apierr.NotFound("category_not_found")
	}
	if err := fs.categoryRepo.Rename(dbc, id, in.Name); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("category_exists", nil)
		}
		return nil, err
	}
	return fs.categoryRepo.GetByID(dbc, id)
}

func (fs *flashcardService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := staffFrom(ctx); err != nil {
		return err
	}
	return fs.categoryRepo.Delete(dbctx.Context{Ctx: ctx}, id)
}

func (fs *flashcardService) ListTags(ctx context.Context) ([]*types.Tag, error) {
	if _, err := callerFrom(ctx); err != nil {
		return nil, err
	}
	return fs.tagRepo.List(dbctx.Context{Ctx: ctx})
}

func (fs *flashcardService) CreateTag(ctx context.Context, in NameInput) (*types.Tag, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	in.Name = strings.ToLower(strings.TrimSpace(in.Name))
	if err := checkInput(in); err != nil {
		return nil, err
	}
	tag, err := fs.tagRepo.Create(dbctx.Context{Ctx: ctx}, &types.Tag{
		ID:        uuid.New(),
		Name:      in.Name,
		CreatedAt: nowUTC(),
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apierr.Conflict("tag_exists", nil)
	}
	return tag, err
}

func (fs *flashcardService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if _, err := staffFrom(ctx); err != nil {
		return err
	}
	return fs.tagRepo.Delete(dbctx.Context{Ctx: ctx}, id)
}
