package coaching

import (
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos/query"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
)

type MoodFilter struct {
	UserID *uuid.UUID
	Period *period.Period
	Limit  int
	Offset int
}

type MoodRepo interface {
	Create(dbc dbctx.Context, entries []*types.MoodEntry) ([]*types.MoodEntry, error)
	List(dbc dbctx.Context, filter MoodFilter) ([]*types.MoodEntry, error)
	Average(dbc dbctx.Context, filter MoodFilter) (*float64, error)
}

type moodRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMoodRepo(db *gorm.DB, baseLog *logger.Logger) MoodRepo {
	repoLog := baseLog.With("repo", "MoodRepo")
	return &moodRepo{db: db, log: repoLog}
}

func (mr *moodRepo) Create(dbc dbctx.Context, entries []*types.MoodEntry) ([]*types.MoodEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}

	if len(entries) == 0 {
		return []*types.MoodEntry{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (mr *moodRepo) filtered(dbc dbctx.Context, filter MoodFilter) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}

	q := transaction.WithContext(dbc.Ctx).Model(&types.MoodEntry{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	return query.InPeriod(q, "created_at", filter.Period)
}

func (mr *moodRepo) List(dbc dbctx.Context, filter MoodFilter) ([]*types.MoodEntry, error) {
	q := query.Page(mr.filtered(dbc, filter), filter.Limit, filter.Offset)

	var results []*types.MoodEntry
	if err := q.Order("created_at ASC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Average is the unweighted mean of mood_value, or nil when nothing matches.
func (mr *moodRepo) Average(dbc dbctx.Context, filter MoodFilter) (*float64, error) {
	var avg sql.NullFloat64
	if err := mr.filtered(dbc, filter).
		Select("AVG(mood_value)").
		Row().
		Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	v := avg.Float64
	return &v, nil
}
