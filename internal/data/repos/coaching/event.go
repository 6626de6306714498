package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type CalendarEventRepo interface {
	Create(dbc dbctx.Context, e *types.CalendarEvent) (*types.CalendarEvent, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CalendarEvent, error)
	ListInRange(dbc dbctx.Context, userID *uuid.UUID, from, until time.Time) ([]*types.CalendarEvent, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type calendarEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCalendarEventRepo(db *gorm.DB, baseLog *logger.Logger) CalendarEventRepo {
	repoLog := baseLog.With("repo", "CalendarEventRepo")
	return &calendarEventRepo{db: db, log: repoLog}
}

func (cr *calendarEventRepo) Create(dbc dbctx.Context, e *types.CalendarEvent) (*types.CalendarEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	if err := transaction.WithContext(dbc.Ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (cr *calendarEventRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CalendarEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	var row types.CalendarEvent
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

// ListInRange returns events overlapping [from, until). An event ending
// exactly at from does not overlap; a zero-length event counts when it starts
// inside the range. With a userID it returns that user's events plus global
// ones; with nil it returns all events.
func (cr *calendarEventRepo) ListInRange(dbc dbctx.Context, userID *uuid.UUID, from, until time.Time) ([]*types.CalendarEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	q := transaction.WithContext(dbc.Ctx).
		Where("starts_at < ? AND (ends_at > ? OR starts_at >= ?)", until.UTC(), from.UTC(), from.UTC())
	if userID != nil {
		q = q.Where("user_id IS NULL OR user_id = ?", *userID)
	}

	var results []*types.CalendarEvent
	if err := q.Order("starts_at ASC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *calendarEventRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.CalendarEvent{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (cr *calendarEventRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.CalendarEvent{}).Error
}
