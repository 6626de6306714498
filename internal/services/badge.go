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
	"github.com/yungbote/quidz-backend/internal/realtime"
)

type AwardBadgeInput struct {
	UserID    uuid.UUID `json:"user_id" validate:"required"`
	BadgeType string    `json:"badge_type" validate:"notblank,max=64"`
}

type BadgeService interface {
	ListMine(ctx context.Context) ([]*types.Badge, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Badge, error)
	Award(ctx context.Context, in AwardBadgeInput) (*types.Badge, error)
	Revoke(ctx context.Context, userID uuid.UUID, badgeType string) error
}

type badgeService struct {
	db          *gorm.DB
	log         *logger.Logger
	badgeRepo   repos.BadgeRepo
	profileRepo repos.ProfileRepo
}

func NewBadgeService(db *gorm.DB, log *logger.Logger, badgeRepo repos.BadgeRepo, profileRepo repos.ProfileRepo) BadgeService {
	return &badgeService{
		db:          db,
		log:         log.With("service", "BadgeService"),
		badgeRepo:   badgeRepo,
		profileRepo: profileRepo,
	}
}

func (bs *badgeService) ListMine(ctx context.Context) ([]*types.Badge, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return bs.badgeRepo.ListByUser(dbctx.Context{Ctx: ctx}, c.ID)
}

func (bs *badgeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Badge, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	subject, err := c.subject(&userID)
	if err != nil {
		return nil, err
	}
	return bs.badgeRepo.ListByUser(dbctx.Context{Ctx: ctx}, subject)
}

// Award grants a badge by hand. Awarding a badge the user already holds is a
// conflict.
func (bs *badgeService) Award(ctx context.Context, in AwardBadgeInput) (*types.Badge, error) {
	c, err := staffFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.BadgeType = strings.TrimSpace(in.BadgeType)
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var out *types.Badge
	err = inTx(bs.db, ctx, func(dbc dbctx.Context) error {
		p, err := bs.profileRepo.GetByID(dbc, in.UserID)
		if err != nil {
			return err
		}
		if p == nil {
			return apierr.NotFound("user_not_found")
		}
		by := c.ID
		b, awarded, err := awardBadge(dbc, bs.badgeRepo, in.UserID, in.BadgeType, &by)
		if err != nil {
			return err
		}
		if !awarded {
			return apierr.Conflict("badge_exists", nil)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	bs.log.Info("Badge awarded", "user_id", in.UserID, "badge_type", in.BadgeType)
	emit(ctx, badgeAwardedMessage(out))
	return out, nil
}

func (bs *badgeService) Revoke(ctx context.Context, userID uuid.UUID, badgeType string) error {
	if _, err := staffFrom(ctx); err != nil {
		return err
	}
	removed, err := bs.badgeRepo.Revoke(dbctx.Context{Ctx: ctx}, userID, strings.TrimSpace(badgeType))
	if err != nil {
		return err
	}
	if !removed {
		return apierr.NotFound("badge_not_found")
	}
	return nil
}

// awardBadge inserts the badge unless the user already holds it and reports
// whether a row was added.
func awardBadge(dbc dbctx.Context, repo repos.BadgeRepo, userID uuid.UUID, badgeType string, by *uuid.UUID) (*types.Badge, bool, error) {
	b := &types.Badge{
		ID:        uuid.New(),
		UserID:    userID,
		BadgeType: badgeType,
		EarnedAt:  nowUTC(),
		AwardedBy: by,
	}
	awarded, err := repo.Award(dbc, b)
	if err != nil {
		return nil, false, fmt.Errorf("award badge %s: %w", badgeType, err)
	}
	return b, awarded, nil
}

func badgeAwardedMessage(b *types.Badge) realtime.SSEMessage {
	return realtime.SSEMessage{
		Channel: userChannel(b.UserID),
		Event:   realtime.SSEEventBadgeAwarded,
		Data:    map[string]any{"badge_type": b.BadgeType, "earned_at": b.EarnedAt},
	}
}
