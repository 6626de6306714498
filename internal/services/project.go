package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
	"github.com/yungbote/quidz-backend/internal/platform/gcp"
)

type ProjectInput struct {
	Title       string   `json:"title" validate:"notblank,max=200"`
	Description string   `json:"description" validate:"max=20000"`
	Category    string   `json:"category" validate:"max=100"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=40"`
	Published   bool     `json:"published"`
}

type UpdateProjectInput struct {
	Title       *string   `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=20000"`
	Category    *string   `json:"category" validate:"omitempty,max=100"`
	Tags        *[]string `json:"tags"`
	Published   *bool     `json:"published"`
}

type GalleryInput struct {
	Category     string
	FeaturedOnly bool
	Limit        int
	Offset       int
}

type ProjectService interface {
	Create(ctx context.Context, in ProjectInput) (*types.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Project, error)
	ListMine(ctx context.Context) ([]*types.Project, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Project, error)
	Gallery(ctx context.Context, in GalleryInput) ([]*types.GalleryItem, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateProjectInput) (*types.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadImage(ctx context.Context, id uuid.UUID, up Upload) (*types.Project, error)
	Like(ctx context.Context, id uuid.UUID) error
	Unlike(ctx context.Context, id uuid.UUID) error
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*types.Project, error)
	LinkSkill(ctx context.Context, projectID, skillID uuid.UUID) ([]uuid.UUID, error)
	UnlinkSkill(ctx context.Context, projectID, skillID uuid.UUID) ([]uuid.UUID, error)
}

type projectService struct {
	db            *gorm.DB
	log           *logger.Logger
	projectRepo   repos.ProjectRepo
	skillRepo     repos.SkillRepo
	bucketService gcp.BucketService
}

func NewProjectService(
	db *gorm.DB,
	log *logger.Logger,
	projectRepo repos.ProjectRepo,
	skillRepo repos.SkillRepo,
	bucketService gcp.BucketService,
) ProjectService {
	return &projectService{
		db:            db,
		log:           log.With("service", "ProjectService"),
		projectRepo:   projectRepo,
		skillRepo:     skillRepo,
		bucketService: bucketService,
	}
}

func (ps *projectService) Create(ctx context.Context, in ProjectInput) (*types.Project, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	now := nowUTC()
	row := &types.Project{
		ID:          uuid.New(),
		UserID:      c.ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Tags:        datatypes.JSONSlice[string](normalizeTags(in.Tags)),
		Published:   in.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return ps.projectRepo.Create(dbctx.Context{Ctx: ctx}, row)
}

// normalizeTags trims, lowercases and de-duplicates tags.
func normalizeTags(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Get returns a project to its owner and staff; others only see it once
// published.
func (ps *projectService) Get(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	p, err := ps.projectRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if p == nil || (!p.Published && !c.owns(p.UserID)) {
		return nil, apierr.NotFound("project_not_found")
	}
	return p, nil
}

func (ps *projectService) ListMine(ctx context.Context) ([]*types.Project, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return ps.projectRepo.ListByUser(dbctx.Context{Ctx: ctx}, c.ID, false)
}

func (ps *projectService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Project, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return ps.projectRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID, !c.owns(userID))
}

func (ps *projectService) Gallery(ctx context.Context, in GalleryInput) ([]*types.GalleryItem, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return ps.projectRepo.ListGallery(dbctx.Context{Ctx: ctx}, repos.GalleryFilter{
		ViewerID:     c.ID,
		Category:     strings.TrimSpace(in.Category),
		FeaturedOnly: in.FeaturedOnly,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
}

// owned loads a project the caller owns; staff are not owners here.
func (ps *projectService) owned(dbc dbctx.Context, c caller, id uuid.UUID) (*types.Project, error) {
	p, err := ps.projectRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if p == nil || (!p.Published && !c.owns(p.UserID)) {
		return nil, apierr.NotFound("project_not_found")
	}
	if p.UserID != c.ID {
		return nil, errNotOwner
	}
	return p, nil
}

func (ps *projectService) Update(ctx context.Context, id uuid.UUID, in UpdateProjectInput) (*types.Project, error) {
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
	if in.Tags != nil {
		if len(*in.Tags) > 20 {
			return nil, apierr.BadRequest("validation_failed", fmt.Errorf("tags must contain at most 20 items"))
		}
		updates["tags"] = datatypes.JSONSlice[string](normalizeTags(*in.Tags))
	}
	if in.Published != nil {
		updates["published"] = *in.Published
	}
	if len(updates) == 0 {
		return nil, apierr.BadRequest("no_changes", fmt.Errorf("no project updates provided"))
	}
	updates["updated_at"] = nowUTC()

	var out *types.Project
	err = inTx(ps.db, ctx, func(dbc dbctx.Context) error {
		if _, err := ps.owned(dbc, c, id); err != nil {
			return err
		}
		if err := ps.projectRepo.UpdateFields(dbc, id, updates); err != nil {
			return err
		}
		out, err = ps.projectRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ps *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := callerFrom(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := ps.owned(dbc, c, id); err != nil {
		return err
	}
	return ps.projectRepo.SoftDeleteByIDs(dbc, []uuid.UUID{id})
}

func (ps *projectService) UploadImage(ctx context.Context, id uuid.UUID, up Upload) (*types.Project, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	p, err := ps.owned(dbc, c, id)
	if err != nil {
		return nil, err
	}
	key, url, err := storeUpload(ctx, ps.bucketService, gcp.BucketCategoryProject, "project/"+id.String(), up)
	if err != nil {
		return nil, err
	}
	if err := ps.projectRepo.UpdateFields(dbc, id, map[string]any{
		"image_url":        url,
		"image_bucket_key": key,
		"updated_at":       nowUTC(),
	}); err != nil {
		return nil, err
	}
	if err := dropObject(ctx, ps.bucketService, gcp.BucketCategoryProject, p.ImageBucketKey); err != nil {
		ps.log.Warn("failed to delete old project image (ignored)", "project_id", id, "error", err)
	}
	return ps.projectRepo.GetByID(dbc, id)
}

// Like and Unlike are idempotent.
func (ps *projectService) Like(ctx context.Context, id uuid.UUID) error {
	return ps.setLike(ctx, id, true)
}

func (ps *projectService) Unlike(ctx context.Context, id uuid.UUID) error {
	return ps.setLike(ctx, id, false)
}

func (ps *projectService) setLike(ctx context.Context, id uuid.UUID, like bool) error {
	c, err := callerFrom(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	p, err := ps.projectRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if p == nil || !p.Published {
		return apierr.NotFound("project_not_found")
	}
	if like {
		return ps.projectRepo.Like(dbc, id, c.ID)
	}
	return ps.projectRepo.Unlike(dbc, id, c.ID)
}

func (ps *projectService) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*types.Project, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	var out *types.Project
	err := inTx(ps.db, ctx, func(dbc dbctx.Context) error {
		p, err := ps.projectRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apierr.NotFound("project_not_found")
		}
		if err := ps.projectRepo.UpdateFields(dbc, id, map[string]any{"featured": featured, "updated_at": nowUTC()}); err != nil {
			return err
		}
		out, err = ps.projectRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ps *projectService) LinkSkill(ctx context.Context, projectID, skillID uuid.UUID) ([]uuid.UUID, error) {
	return ps.changeSkillLink(ctx, projectID, skillID, true)
}

func (ps *projectService) UnlinkSkill(ctx context.Context, projectID, skillID uuid.UUID) ([]uuid.UUID, error) {
	return ps.changeSkillLink(ctx, projectID, skillID, false)
}

// changeSkillLink joins a project to one of its owner's skills.
func (ps *projectService) changeSkillLink(ctx context.Context, projectID, skillID uuid.UUID, link bool) ([]uuid.UUID, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	var out []uuid.UUID
	err = inTx(ps.db, ctx, func(dbc dbctx.Context) error {
		p, err := ps.owned(dbc, c, projectID)
		if err != nil {
			return err
		}
		s, err := ps.skillRepo.GetByID(dbc, skillID)
		if err != nil {
			return err
		}
		if s == nil || s.UserID != p.UserID {
			return apierr.NotFound("skill_not_found")
		}
		if link {
			err = ps.projectRepo.LinkSkill(dbc, projectID, skillID)
		} else {
			err = ps.projectRepo.UnlinkSkill(dbc, projectID, skillID)
		}
		if err != nil {
			return err
		}
		out, err = ps.projectRepo.ListSkillIDs(dbc, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
