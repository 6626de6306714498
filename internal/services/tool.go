package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
)

type ToolInput struct {
	Name        string     `json:"name" validate:"notblank,max=120"`
	Description string     `json:"description" validate:"max=5000"`
	URL         string     `json:"url" validate:"omitempty,url"`
	CategoryID  *uuid.UUID `json:"category_id"`
}

type UpdateToolInput struct {
	Name        *string    `json:"name" validate:"omitempty,notblank,max=120"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	URL         *string    `json:"url" validate:"omitempty,url"`
	CategoryID  *uuid.UUID `json:"category_id"`
}

type ToolService interface {
	List(ctx context.Context, categoryID *uuid.UUID) ([]*types.Tool, error)
	Create(ctx context.Context, in ToolInput) (*types.Tool, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateToolInput) (*types.Tool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type toolService struct {
	db       *gorm.DB
	log      *logger.Logger
	toolRepo repos.ToolRepo
}

func NewToolService(db *gorm.DB, log *logger.Logger, toolRepo repos.ToolRepo) ToolService {
	return &toolService{db: db, log: log.With("service", "ToolService"), toolRepo: toolRepo}
}

func (ts *toolService) List(ctx context.Context, categoryID *uuid.UUID) ([]*types.Tool, error) {
	if _, err := callerFrom(ctx); err != nil {
		return nil, err
	}
	return ts.toolRepo.List(dbctx.Context{Ctx: ctx}, categoryID)
}

func (ts *toolService) Create(ctx context.Context, in ToolInput) (*types.Tool, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	now := nowUTC()
	return ts.toolRepo.Create(dbctx.Context{Ctx: ctx}, &types.Tool{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		URL:         strings.TrimSpace(in.URL),
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (ts *toolService) Update(ctx context.Context, id uuid.UUID, in UpdateToolInput) (*types.Tool, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.URL != nil {
		updates["url"] = strings.TrimSpace(*in.URL)
	}
	if in.CategoryID != nil {
		updates["category_id"] = *in.CategoryID
	}
	if len(updates) == 0 {
		return nil, apierr.BadRequest("no_changes", fmt.Errorf("no tool updates provided"))
	}
	updates["updated_at"] = nowUTC()

	var out *types.Tool
	err := inTx(ts.db, ctx, func(dbc dbctx.Context) error {
		t, err := ts.toolRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if t == nil {
			return apierr.NotFound("tool_not_found")
		}
		if err := ts.toolRepo.UpdateFields(dbc, id, updates); err != nil {
			return err
		}
		out, err = ts.toolRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ts *toolService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := staffFrom(ctx); err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	t, err := ts.toolRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if t == nil {
		return apierr.NotFound("tool_not_found")
	}
	return ts.toolRepo.Delete(dbc, id)
}
