package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
)

// maxCalendarRange bounds one listing request.
const maxCalendarRange = 400 * 24 * time.Hour

type CalendarEventInput struct {
	Title       string     `json:"title" validate:"notblank,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      time.Time  `json:"ends_at" validate:"required"`
	Location    string     `json:"location" validate:"max=200"`
	UserID      *uuid.UUID `json:"user_id"`
}

type UpdateCalendarEventInput struct {
	Title       *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
}

type CalendarService interface {
	Create(ctx context.Context, in CalendarEventInput) (*types.CalendarEvent, error)
	List(ctx context.Context, from, until time.Time, userID *uuid.UUID) ([]*types.CalendarEvent, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateCalendarEventInput) (*types.CalendarEvent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type calendarService struct {
	db        *gorm.DB
	log       *logger.Logger
	eventRepo repos.CalendarEventRepo
}

func NewCalendarService(db *gorm.DB, log *logger.Logger, eventRepo repos.CalendarEventRepo) CalendarService {
	return &calendarService{
		db:        db,
		log:       log.With("service", "CalendarService"),
		eventRepo: eventRepo,
	}
}

var errEventRange = apierr.BadRequest("invalid_range", fmt.Errorf("ends_at must not be before starts_at"))

func (cs *calendarService) Create(ctx context.Context, in CalendarEventInput) (*types.CalendarEvent, error) {
	c, err := staffFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if in.EndsAt.Before(in.StartsAt) {
		return nil, errEventRange
	}
	now := nowUTC()
	return cs.eventRepo.Create(dbctx.Context{Ctx: ctx}, &types.CalendarEvent{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		StartsAt:    in.StartsAt.UTC(),
		EndsAt:      in.EndsAt.UTC(),
		Location:    strings.TrimSpace(in.Location),
		UserID:      in.UserID,
		CreatedBy:   c.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// List returns events overlapping [from, until). Participants get their own
// and global events; staff may name a user or pass nil to see every event.
func (cs *calendarService) List(ctx context.Context, from, until time.Time, userID *uuid.UUID) ([]*types.CalendarEvent, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !until.After(from) {
		return nil, apierr.BadRequest("invalid_range", fmt.Errorf("until must be after from"))
	}
	if until.Sub(from) > maxCalendarRange {
		return nil, apierr.BadRequest("invalid_range", fmt.Errorf("range too large"))
	}
	scope := &c.ID
	if c.Roles.IsStaff {
		scope = userID
	}
	return cs.eventRepo.ListInRange(dbctx.Context{Ctx: ctx}, scope, from, until)
}

func (cs *calendarService) Update(ctx context.Context, id uuid.UUID, in UpdateCalendarEventInput) (*types.CalendarEvent, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var out *types.CalendarEvent
	err := inTx(cs.db, ctx, func(dbc dbctx.Context) error {
		ev, err := cs.eventRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if ev == nil {
			return apierr.NotFound("event_not_found")
		}
		start, end := ev.StartsAt, ev.EndsAt
		updates := map[string]any{}
		if in.Title != nil {
			updates["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Location != nil {
			updates["location"] = strings.TrimSpace(*in.Location)
		}
		if in.StartsAt != nil {
			start = in.StartsAt.UTC()
			updates["starts_at"] = start
		}
		if in.EndsAt != nil {
			end = in.EndsAt.UTC()
			updates["ends_at"] = end
		}
		if end.Before(start) {
			return errEventRange
		}
		if len(updates) == 0 {
			out = ev
			return nil
		}
		updates["updated_at"] = nowUTC()
		if err := cs.eventRepo.UpdateFields(dbc, id, updates); err != nil {
			return err
		}
		out, err = cs.eventRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (cs *calendarService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := staffFrom(ctx); err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	ev, err := cs.eventRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if ev == nil {
		return apierr.NotFound("event_not_found")
	}
	return cs.eventRepo.Delete(dbc, id)
}
