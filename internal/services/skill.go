package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
	"github.com/yungbote/quidz-backend/internal/platform/gcp"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

type CreateSkillInput struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=10000"`
	Category    string `json:"category" validate:"max=100"`
	ProofText   string `json:"proof_text" validate:"max=10000"`
}

type UpdateSkillInput struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	ProofText   *string `json:"proof_text" validate:"omitempty,max=10000"`
}

type ReviewSkillInput struct {
	Status          string `json:"status" validate:"required,skill_status"`
	CoachComment    string `json:"coach_comment" validate:"max=10000"`
	CompetenceLevel *int   `json:"competence_level" validate:"omitempty,min=1,max=5"`
}

type ListSkillsInput struct {
	UserID *uuid.UUID
	Status string
	Limit  int
	Offset int
}

type SkillService interface {
	Create(ctx context.Context, in CreateSkillInput) (*types.Skill, error)
	ListMine(ctx context.Context, status string) ([]*types.Skill, error)
	List(ctx context.Context, in ListSkillsInput) ([]*types.Skill, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Skill, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateSkillInput) (*types.Skill, error)
	UploadProof(ctx context.Context, id uuid.UUID, up Upload) (*types.Skill, error)
	Review(ctx context.Context, id uuid.UUID, in ReviewSkillInput) (*types.Skill, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type skillService struct {
	db            *gorm.DB
	log           *logger.Logger
	skillRepo     repos.SkillRepo
	bucketService gcp.BucketService
}

func NewSkillService(db *gorm.DB, log *logger.Logger, skillRepo repos.SkillRepo, bucketService gcp.BucketService) SkillService {
	return &skillService{
		db:            db,
		log:           log.With("service", "SkillService"),
		skillRepo:     skillRepo,
		bucketService: bucketService,
	}
}

func (ss *skillService) Create(ctx context.Context, in CreateSkillInput) (*types.Skill, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	now := nowUTC()
	row := &types.Skill{
		ID:          uuid.New(),
		UserID:      c.ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		ProofText:   in.ProofText,
		Status:      coaching.SkillStatusInReview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := ss.skillRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Skill{row})
	if err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	return created[0], nil
}

func (ss *skillService) ListMine(ctx context.Context, status string) ([]*types.Skill, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if status != "" && !coaching.IsValidSkillStatus(status) {
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown status %q", status))
	}
	return ss.skillRepo.List(dbctx.Context{Ctx: ctx}, repos.SkillFilter{UserID: &c.ID, Status: status})
}

func (ss *skillService) List(ctx context.Context, in ListSkillsInput) ([]*types.Skill, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	if in.Status != "" && !coaching.IsValidSkillStatus(in.Status) {
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown status %q", in.Status))
	}
	return ss.skillRepo.List(dbctx.Context{Ctx: ctx}, repos.SkillFilter{
		UserID: in.UserID,
		Status: in.Status,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
}

func (ss *skillService) Get(ctx context.Context, id uuid.UUID) (*types.Skill, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return ss.load(dbctx.Context{Ctx: ctx}, c, id)
}

func (ss *skillService) load(dbc dbctx.Context, c caller, id uuid.UUID) (*types.Skill, error) {
	s, err := ss.skillRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if s == nil || !c.owns(s.UserID) {
		return nil, apierr.NotFound("skill_not_found")
	}
	return s, nil
}

// Update changes content fields only. Editing a rejected skill puts it back
// into review.
func (ss *skillService) Update(ctx context.Context, id uuid.UUID, in UpdateSkillInput) (*types.Skill, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Category != nil {
		updates["category"] = strings.TrimSpace(*in.Category)
	}
	if in.ProofText != nil {
		updates["proof_text"] = *in.ProofText
	}
	if len(updates) == 0 {
		return nil, apierr.BadRequest("no_changes", fmt.Errorf("no skill updates provided"))
	}

	var out *types.Skill
	err = inTx(ss.db, ctx, func(dbc dbctx.Context) error {
		s, err := ss.load(dbc, c, id)
		if err != nil {
			return err
		}
		if s.UserID != c.ID {
			return errNotOwner
		}
		if s.Status == coaching.SkillStatusRejected {
			updates["status"] = coaching.SkillStatusInReview
		}
		updates["updated_at"] = nowUTC()
		if err := ss.skillRepo.UpdateFields(dbc, id, updates); err != nil {
			return err
		}
		out, err = ss.skillRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ss *skillService) UploadProof(ctx context.Context, id uuid.UUID, up Upload) (*types.Skill, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	s, err := ss.load(dbc, c, id)
	if err != nil {
		return nil, err
	}
	if s.UserID != c.ID {
		return nil, errNotOwner
	}
	key, url, err := storeUpload(ctx, ss.bucketService, gcp.BucketCategorySkillProof, "skill/"+id.String(), up)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{
		"proof_file_url":   url,
		"proof_bucket_key": key,
		"updated_at":       nowUTC(),
	}
	if s.Status == coaching.SkillStatusRejected {
		updates["status"] = coaching.SkillStatusInReview
	}
	if err := ss.skillRepo.UpdateFields(dbc, id, updates); err != nil {
		return nil, err
	}
	if err := dropObject(ctx, ss.bucketService, gcp.BucketCategorySkillProof, s.ProofBucketKey); err != nil {
		ss.log.Warn("failed to delete old proof file (ignored)", "skill_id", id, "error", err)
	}
	return ss.skillRepo.GetByID(dbc, id)
}

func (ss *skillService) Review(ctx context.Context, id uuid.UUID, in ReviewSkillInput) (*types.Skill, error) {
	c, err := staffFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var out *types.Skill
	err = inTx(ss.db, ctx, func(dbc dbctx.Context) error {
		if _, err := ss.load(dbc, c, id); err != nil {
			return err
		}
		if err := ss.skillRepo.UpdateFields(dbc, id, map[string]any{
			"status":           in.Status,
			"coach_comment":    in.CoachComment,
			"competence_level": in.CompetenceLevel,
			"reviewed_by":      c.ID,
			"updated_at":       nowUTC(),
		}); err != nil {
			return err
		}
		out, err = ss.skillRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, realtime.SSEMessage{
		Channel: userChannel(out.UserID),
		Event:   realtime.SSEEventSkillReviewed,
		Data:    map[string]any{"skill_id": out.ID, "status": out.Status},
	})
	return out, nil
}

func (ss *skillService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := callerFrom(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	s, err := ss.load(dbc, c, id)
	if err != nil {
		return err
	}
	if s.UserID != c.ID {
		return errNotOwner
	}
	return ss.skillRepo.SoftDeleteByIDs(dbc, []uuid.UUID{id})
}
