package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/domain/user"
)

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, roles ...string) *types.Profile {
	tb.Helper()
	p := &types.Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		FullName:     "Test " + email,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	if len(roles) == 0 {
		roles = []string{user.RoleUser}
	}
	for _, r := range roles {
		row := &types.UserRole{ID: uuid.New(), UserID: p.ID, Role: r}
		if err := tx.WithContext(ctx).Create(row).Error; err != nil {
			tb.Fatalf("seed role: %v", err)
		}
	}
	return p
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, assignee, creator uuid.UUID, status string, due *time.Time) *types.Task {
	tb.Helper()
	t := &types.Task{
		ID:         uuid.New(),
		Title:      "task",
		Status:     status,
		Priority:   coaching.TaskPriorityMedium,
		AssignedTo: &assignee,
		DueDate:    due,
		CreatedBy:  creator,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return t
}

func SeedAbsence(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) *types.Absence {
	tb.Helper()
	a := &types.Absence{
		ID:     uuid.New(),
		UserID: userID,
		Date:   date.UTC(),
		Reason: "sick",
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed absence: %v", err)
	}
	return a
}

func SeedSkill(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string, createdAt time.Time) *types.Skill {
	tb.Helper()
	s := &types.Skill{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "skill",
		Status:    status,
		CreatedAt: createdAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed skill: %v", err)
	}
	return s
}

func SeedFlashcard(tb testing.TB, ctx context.Context, tx *gorm.DB, creator uuid.UUID, public bool) *types.Flashcard {
	tb.Helper()
	f := &types.Flashcard{
		ID:        uuid.New(),
		FrontText: "front",
		BackText:  "back",
		IsPublic:  public,
		CreatedBy: creator,
	}
	if err := tx.WithContext(ctx).Omit("Tags").Create(f).Error; err != nil {
		tb.Fatalf("seed flashcard: %v", err)
	}
	return f
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, cardID uuid.UUID, knew bool, at time.Time) *types.LearningProgress {
	tb.Helper()
	lp := &types.LearningProgress{
		ID:          uuid.New(),
		UserID:      userID,
		FlashcardID: cardID,
		KnewAnswer:  knew,
		CreatedAt:   at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(lp).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return lp
}

func SeedMood(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, value int, at time.Time) *types.MoodEntry {
	tb.Helper()
	m := &types.MoodEntry{
		ID:        uuid.New(),
		UserID:    userID,
		MoodValue: value,
		CreatedAt: at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed mood: %v", err)
	}
	return m
}

// Day returns midnight UTC of the given date.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
