package coaching

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/quidz-backend/internal/data/repos/query"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
)

// TaskPeriodExpr is the date a task is counted on when filtering by period.
const TaskPeriodExpr = "COALESCE(due_date, created_at)"

type TaskFilter struct {
	AssignedTo *uuid.UUID
	Status     string
	Period     *period.Period
	Limit      int
	Offset     int
}

type TaskRepo interface {
	Create(dbc dbctx.Context, tasks []*types.Task) ([]*types.Task, error)
	CreateFanout(dbc dbctx.Context, fanoutKey string, tasks []*types.Task) ([]*types.Task, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error)
	GetByFanoutKey(dbc dbctx.Context, fanoutKey string) ([]*types.Task, error)
	List(dbc dbctx.Context, filter TaskFilter) ([]*types.Task, error)
	CountByStatus(dbc dbctx.Context, status string) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	LinkSkill(dbc dbctx.Context, taskID, skillID uuid.UUID) error
	UnlinkSkill(dbc dbctx.Context, taskID, skillID uuid.UUID) error
	ListSkillIDs(dbc dbctx.Context, taskID uuid.UUID) ([]uuid.UUID, error)
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	repoLog := baseLog.With("repo", "TaskRepo")
	return &taskRepo{db: db, log: repoLog}
}

func (tr *taskRepo) Create(dbc dbctx.Context, tasks []*types.Task) ([]*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(tasks) == 0 {
		return []*types.Task{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateFanout inserts one row per assignee under fanoutKey. Rows that already
// exist for (fanout_key, assigned_to) are skipped, and the full set stored
// under the key is returned, so replays are harmless.
func (tr *taskRepo) CreateFanout(dbc dbctx.Context, fanoutKey string, tasks []*types.Task) ([]*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(tasks) > 0 {
		for _, t := range tasks {
			key := fanoutKey
			t.FanoutKey = &key
		}
		if err := transaction.WithContext(dbc.Ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "fanout_key"}, {Name: "assigned_to"}},
				DoNothing: true,
			}).
			CreateInBatches(&tasks, 200).Error; err != nil {
			return nil, err
		}
	}

	return tr.GetByFanoutKey(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, fanoutKey)
}

func (tr *taskRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	var row types.Task
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

func (tr *taskRepo) GetByFanoutKey(dbc dbctx.Context, fanoutKey string) ([]*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Task
	if err := transaction.WithContext(dbc.Ctx).
		Where("fanout_key = ?", fanoutKey).
		Order("assigned_to ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *taskRepo) List(dbc dbctx.Context, filter TaskFilter) ([]*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	q := transaction.WithContext(dbc.Ctx).Model(&types.Task{})
	if filter.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = query.InPeriod(q, TaskPeriodExpr, filter.Period)
	q = query.Page(q, filter.Limit, filter.Offset)

	var results []*types.Task
	if err := q.Order(TaskPeriodExpr + " ASC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *taskRepo) CountByStatus(dbc dbctx.Context, status string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	var count int64
	q := transaction.WithContext(dbc.Ctx).Model(&types.Task{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (tr *taskRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Task{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (tr *taskRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Task{}).Error
}

func (tr *taskRepo) LinkSkill(dbc dbctx.Context, taskID, skillID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&types.SkillTask{SkillID: skillID, TaskID: taskID}).Error
}

func (tr *taskRepo) UnlinkSkill(dbc dbctx.Context, taskID, skillID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Where("task_id = ? AND skill_id = ?", taskID, skillID).
		Delete(&types.SkillTask{}).Error
}

func (tr *taskRepo) ListSkillIDs(dbc dbctx.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.SkillTask{}).
		Where("task_id = ?", taskID).
		Order("skill_id ASC").
		Pluck("skill_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
