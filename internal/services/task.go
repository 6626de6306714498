package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
	"github.com/yungbote/quidz-backend/internal/platform/gcp"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

// fanoutWindow groups repeated assign-to-all submissions without an
// Idempotency-Key into one fan-out.
const fanoutWindow = 10 * time.Minute

type TaskLink struct {
	Label string `json:"label" validate:"max=200"`
	URL   string `json:"url" validate:"required,url"`
}

type CreateTaskInput struct {
	Title       string     `json:"title" validate:"notblank,max=200"`
	Description string     `json:"description" validate:"max=10000"`
	DueDate     string     `json:"due_date"`
	Priority    string     `json:"priority" validate:"omitempty,task_priority"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	AssignToAll bool       `json:"assign_to_all"`
	ImageURL    string     `json:"image_url" validate:"omitempty,url"`
	Links       []TaskLink `json:"links" validate:"omitempty,dive"`

	IdempotencyKey string `json:"-"`
}

type UpdateTaskInput struct {
	Title       *string     `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string     `json:"description" validate:"omitempty,max=10000"`
	DueDate     *string     `json:"due_date"`
	Priority    *string     `json:"priority" validate:"omitempty,task_priority"`
	Status      *string     `json:"status" validate:"omitempty,task_status"`
	ImageURL    *string     `json:"image_url" validate:"omitempty,url"`
	Links       *[]TaskLink `json:"links" validate:"omitempty"`
}

type ListTasksInput struct {
	AssignedTo *uuid.UUID
	Status     string
	Limit      int
	Offset     int
}

type TaskService interface {
	Create(ctx context.Context, in CreateTaskInput) ([]*types.Task, error)
	ListMine(ctx context.Context, status string) ([]*types.Task, error)
	List(ctx context.Context, in ListTasksInput) ([]*types.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Task, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateTaskInput) (*types.Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*types.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadAttachment(ctx context.Context, id uuid.UUID, up Upload) (*types.Task, error)
	LinkSkill(ctx context.Context, taskID, skillID uuid.UUID) ([]uuid.UUID, error)
	UnlinkSkill(ctx context.Context, taskID, skillID uuid.UUID) ([]uuid.UUID, error)
}

type taskService struct {
	db            *gorm.DB
	log           *logger.Logger
	taskRepo      repos.TaskRepo
	skillRepo     repos.SkillRepo
	profileRepo   repos.ProfileRepo
	bucketService gcp.BucketService
}

func NewTaskService(
	db *gorm.DB,
	log *logger.Logger,
	taskRepo repos.TaskRepo,
	skillRepo repos.SkillRepo,
	profileRepo repos.ProfileRepo,
	bucketService gcp.BucketService,
) TaskService {
	return &taskService{
		db:            db,
		log:           log.With("service", "TaskService"),
		taskRepo:      taskRepo,
		skillRepo:     skillRepo,
		profileRepo:   profileRepo,
		bucketService: bucketService,
	}
}

// Create stores one task, or with AssignToAll one row per participant that
// exists now. A repeated fan-out under the same key returns the stored rows.
func (ts *taskService) Create(ctx context.Context, in CreateTaskInput) ([]*types.Task, error) {
	c, err := staffFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	due, err := parseDay("due_date", in.DueDate)
	if err != nil {
		return nil, err
	}
	if !in.AssignToAll && (in.AssignedTo == nil || *in.AssignedTo == uuid.Nil) {
		return nil, apierr.BadRequest("missing_assignee", fmt.Errorf("assigned_to or assign_to_all required"))
	}
	links, err := encodeLinks(in.Links)
	if err != nil {
		return nil, err
	}
	priority := in.Priority
	if priority == "" {
		priority = coaching.TaskPriorityMedium
	}

	now := nowUTC()
	newRow := func(assignee uuid.UUID) *types.Task {
		a := assignee
		return &types.Task{
			ID:          uuid.New(),
			Title:       in.Title,
			Description: in.Description,
			DueDate:     due,
			Status:      coaching.TaskStatusOpen,
			Priority:    priority,
			AssignedTo:  &a,
			AssignToAll: in.AssignToAll,
			ImageURL:    in.ImageURL,
			Links:       links,
			CreatedBy:   c.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	var out []*types.Task
	err = inTx(ts.db, ctx, func(dbc dbctx.Context) error {
		if !in.AssignToAll {
			assignee, err := ts.profileRepo.GetByID(dbc, *in.AssignedTo)
			if err != nil {
				return err
			}
			if assignee == nil {
				return apierr.NotFound("assignee_not_found")
			}
			out, err = ts.taskRepo.Create(dbc, []*types.Task{newRow(assignee.ID)})
			return err
		}

		ids, err := ts.profileRepo.ListIDsWithRole(dbc, user.RoleUser)
		if err != nil {
			return err
		}
		rows := make([]*types.Task, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, newRow(id))
		}
		key := fanoutKey(in, c.ID, now)
		if prev := previousFanoutKey(in, c.ID, now); prev != "" {
			existing, err := ts.taskRepo.GetByFanoutKey(dbc, prev)
			if err != nil {
				return err
			}
			if len(existing) > 0 && now.Sub(existing[0].CreatedAt) < fanoutWindow {
				out = existing
				return nil
			}
		}
		out, err = ts.taskRepo.CreateFanout(dbc, key, rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	ts.log.Info("Tasks created", "count", len(out), "assign_to_all", in.AssignToAll)
	msgs := make([]realtime.SSEMessage, 0, len(out))
	for _, t := range out {
		if t.AssignedTo == nil {
			continue
		}
		msgs = append(msgs, realtime.SSEMessage{
			Channel: userChannel(*t.AssignedTo),
			Event:   realtime.SSEEventTaskAssigned,
			Data:    map[string]any{"task_id": t.ID, "title": t.Title},
		})
	}
	emit(ctx, msgs...)
	return out, nil
}

// fanoutKey prefers the client Idempotency-Key; otherwise identical
// submissions from one creator inside the same window share a key.
func fanoutKey(in CreateTaskInput, creator uuid.UUID, now time.Time) string {
	if k := strings.TrimSpace(in.IdempotencyKey); k != "" {
		return "idem:" + k
	}
	return windowKey(in, creator, now.Truncate(fanoutWindow))
}

// previousFanoutKey is the derived key of the window before now. Submissions
// that straddle a window boundary are matched through it. Empty when the
// client sent an Idempotency-Key.
func previousFanoutKey(in CreateTaskInput, creator uuid.UUID, now time.Time) string {
	if strings.TrimSpace(in.IdempotencyKey) != "" {
		return ""
	}
	return windowKey(in, creator, now.Truncate(fanoutWindow).Add(-fanoutWindow))
}

func windowKey(in CreateTaskInput, creator uuid.UUID, window time.Time) string {
	raw := strings.Join([]string{
		in.Title,
		strings.TrimSpace(in.DueDate),
		creator.String(),
		window.UTC().Format(time.RFC3339),
	}, "|")
	sum := sha256.Sum256([]byte(raw))
	return "auto:" + hex.EncodeToString(sum[:])
}

func encodeLinks(links []TaskLink) (datatypes.JSON, error) {
	if len(links) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("encode task links: %w", err)
	}
	return datatypes.JSON(b), nil
}

func (ts *taskService) ListMine(ctx context.Context, status string) ([]*types.Task, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if status != "" && !coaching.IsValidTaskStatus(status) {
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown status %q", status))
	}
	return ts.taskRepo.List(dbctx.Context{Ctx: ctx}, repos.TaskFilter{AssignedTo: &c.ID, Status: status})
}

func (ts *taskService) List(ctx context.Context, in ListTasksInput) ([]*types.Task, error) {
	if _, err := staffFrom(ctx); err != nil {
		return nil, err
	}
	if in.Status != "" && !coaching.IsValidTaskStatus(in.Status) {
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown status %q", in.Status))
	}
	return ts.taskRepo.List(dbctx.Context{Ctx: ctx}, repos.TaskFilter{
		AssignedTo: in.AssignedTo,
		Status:     in.Status,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
}

func (ts *taskService) Get(ctx context.Context, id uuid.UUID) (*types.Task, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return ts.load(dbctx.Context{Ctx: ctx}, c, id)
}

// load returns the task if c may see it. Participants only see their own.
func (ts *taskService) load(dbc dbctx.Context, c caller, id uuid.UUID) (*types.Task, error) {
	t, err := ts.taskRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apierr.NotFound("task_not_found")
	}
	if c.Roles.IsStaff {
		return t, nil
	}
	if t.AssignedTo == nil || *t.AssignedTo != c.ID {
		return nil, apierr.NotFound("task_not_found")
	}
	return t, nil
}

func (ts *taskService) Update(ctx context.Context, id uuid.UUID, in UpdateTaskInput) (*types.Task, error) {
	c, err := staffFrom(ctx)
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
	if in.DueDate != nil {
		due, err := parseDay("due_date", *in.DueDate)
		if err != nil {
			return nil, err
		}
		updates["due_date"] = due
	}
	if in.Priority != nil {
		updates["priority"] = *in.Priority
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
	}
	if in.Links != nil {
		for _, l := range *in.Links {
			if err := checkInput(l); err != nil {
				return nil, err
			}
		}
		links, err := encodeLinks(*in.Links)
		if err != nil {
			return nil, err
		}
		updates["links"] = links
	}
	if len(updates) == 0 {
		return nil, apierr.BadRequest("no_changes", fmt.Errorf("no task updates provided"))
	}
	updates["updated_at"] = nowUTC()

	var out *types.Task
	err = inTx(ts.db, ctx, func(dbc dbctx.Context) error {
		if _, err := ts.load(dbc, c, id); err != nil {
			return err
		}
		if err := ts.taskRepo.UpdateFields(dbc, id, updates); err != nil {
			return err
		}
		out, err = ts.taskRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus is the only change an assignee may make to a task.
func (ts *taskService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*types.Task, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !coaching.IsValidTaskStatus(status) {
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown status %q", status))
	}

	var out *types.Task
	err = inTx(ts.db, ctx, func(dbc dbctx.Context) error {
		if _, err := ts.load(dbc, c, id); err != nil {
			return err
		}
		if err := ts.taskRepo.UpdateFields(dbc, id, map[string]any{"status": status, "updated_at": nowUTC()}); err != nil {
			return err
		}
		out, err = ts.taskRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ts *taskService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := staffFrom(ctx)
	if err != nil {
		return err
	}
	return inTx(ts.db, ctx, func(dbc dbctx.Context) error {
		if _, err := ts.load(dbc, c, id); err != nil {
			return err
		}
		return ts.taskRepo.SoftDeleteByIDs(dbc, []uuid.UUID{id})
	})
}

func (ts *taskService) UploadAttachment(ctx context.Context, id uuid.UUID, up Upload) (*types.Task, error) {
	c, err := staffFrom(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	t, err := ts.load(dbc, c, id)
	if err != nil {
		return nil, err
	}
	key, url, err := storeUpload(ctx, ts.bucketService, gcp.BucketCategoryTask, "task/"+id.String(), up)
	if err != nil {
		return nil, err
	}
	if err := ts.taskRepo.UpdateFields(dbc, id, map[string]any{
		"file_url":        url,
		"file_bucket_key": key,
		"updated_at":      nowUTC(),
	}); err != nil {
		return nil, err
	}
	if err := dropObject(ctx, ts.bucketService, gcp.BucketCategoryTask, t.FileBucketKey); err != nil {
		ts.log.Warn("failed to delete old task file (ignored)", "task_id", id, "error", err)
	}
	return ts.taskRepo.GetByID(dbc, id)
}

func (ts *taskService) LinkSkill(ctx context.Context, taskID, skillID uuid.UUID) ([]uuid.UUID, error) {
	return ts.changeSkillLink(ctx, taskID, skillID, true)
}

func (ts *taskService) UnlinkSkill(ctx context.Context, taskID, skillID uuid.UUID) ([]uuid.UUID, error) {
	return ts.changeSkillLink(ctx, taskID, skillID, false)
}

// changeSkillLink lets the assignee or staff link a task to a skill of the
// task's assignee.
func (ts *taskService) changeSkillLink(ctx context.Context, taskID, skillID uuid.UUID, link bool) ([]uuid.UUID, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	var out []uuid.UUID
	err = inTx(ts.db, ctx, func(dbc dbctx.Context) error {
		t, err := ts.load(dbc, c, taskID)
		if err != nil {
			return err
		}
		s, err := ts.skillRepo.GetByID(dbc, skillID)
		if err != nil {
			return err
		}
		if s == nil || t.AssignedTo == nil || s.UserID != *t.AssignedTo {
			return apierr.NotFound("skill_not_found")
		}
		if link {
			err = ts.taskRepo.LinkSkill(dbc, taskID, skillID)
		} else {
			err = ts.taskRepo.UnlinkSkill(dbc, taskID, skillID)
		}
		if err != nil {
			return err
		}
		out, err = ts.taskRepo.ListSkillIDs(dbc, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
