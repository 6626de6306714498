package coaching

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quidz-backend/internal/data/db"
	"github.com/yungbote/quidz-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
)

func TestTaskRepoFanoutIsIdempotent(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewTaskRepo(gdb, testutil.Logger(t))

	coach := testutil.SeedProfile(t, ctx, gdb, "coach@example.com", "coach")
	a := testutil.SeedProfile(t, ctx, gdb, "a@example.com")
	b := testutil.SeedProfile(t, ctx, gdb, "b@example.com")

	build := func() []*types.Task {
		var out []*types.Task
		for _, id := range []uuid.UUID{a.ID, b.ID} {
			out = append(out, &types.Task{
				ID:          uuid.New(),
				Title:       "Bewerbung schreiben",
				Status:      coaching.TaskStatusOpen,
				Priority:    coaching.TaskPriorityHigh,
				AssignedTo:  testutil.PtrUUID(id),
				AssignToAll: true,
				CreatedBy:   coach.ID,
			})
		}
		return out
	}

	first, err := repo.CreateFanout(dbc, "key-1", build())
	if err != nil {
		t.Fatalf("CreateFanout: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first fanout: want=2 got=%d", len(first))
	}
	again, err := repo.CreateFanout(dbc, "key-1", build())
	if err != nil {
		t.Fatalf("CreateFanout replay: %v", err)
	}
	if len(again) != 2 {
		t.Fatalf("replayed fanout: want=2 got=%d", len(again))
	}
	total, err := repo.CountByStatus(dbc, "")
	if err != nil || total != 2 {
		t.Fatalf("CountByStatus: err=%v total=%d", err, total)
	}

	if _, err := repo.CreateFanout(dbc, "key-2", build()); err != nil {
		t.Fatalf("CreateFanout other key: %v", err)
	}
	if total, _ := repo.CountByStatus(dbc, coaching.TaskStatusOpen); total != 4 {
		t.Fatalf("after second key: want=4 got=%d", total)
	}
}

func TestTaskRepoPeriodUsesDueDateThenCreatedAt(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewTaskRepo(gdb, testutil.Logger(t))

	coach := testutil.SeedProfile(t, ctx, gdb, "coach@example.com", "coach")
	p := testutil.SeedProfile(t, ctx, gdb, "p@example.com")

	inside := testutil.SeedTask(t, ctx, gdb, p.ID, coach.ID, coaching.TaskStatusOpen, testutil.PtrTime(testutil.Day(2026, 3, 31)))
	testutil.SeedTask(t, ctx, gdb, p.ID, coach.ID, coaching.TaskStatusOpen, testutil.PtrTime(testutil.Day(2026, 4, 1)))
	undated := testutil.SeedTask(t, ctx, gdb, p.ID, coach.ID, coaching.TaskStatusCompleted, nil)
	if err := gdb.Model(&types.Task{}).Where("id = ?", undated.ID).
		Update("created_at", time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	march, _ := period.New(testutil.Day(2026, 3, 1), testutil.Day(2026, 3, 31))
	rows, err := repo.List(dbc, TaskFilter{AssignedTo: &p.ID, Period: &march})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("march tasks: want=2 got=%d", len(rows))
	}
	got := map[uuid.UUID]bool{rows[0].ID: true, rows[1].ID: true}
	if !got[inside.ID] || !got[undated.ID] {
		t.Fatalf("unexpected tasks in period: %v", got)
	}
}

func TestAbsenceRepoReviewAndDelete(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewAbsenceRepo(gdb, testutil.Logger(t))

	coach := testutil.SeedProfile(t, ctx, gdb, "coach@example.com", "coach")
	p := testutil.SeedProfile(t, ctx, gdb, "p@example.com")

	approved := true
	created, err := repo.Create(dbc, []*types.Absence{{
		ID: uuid.New(), UserID: p.ID, Date: testutil.Day(2026, 3, 2), Reason: "Arzttermin", Approved: &approved,
	}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	a := created[0]
	if a.Approved != nil {
		t.Fatalf("new absence must start pending")
	}
	if n, _ := repo.CountPending(dbc); n != 1 {
		t.Fatalf("CountPending: want=1 got=%d", n)
	}

	if err := repo.Review(dbc, a.ID, false, coach.ID, time.Now()); err != nil {
		t.Fatalf("Review: %v", err)
	}
	got, _ := repo.GetByID(dbc, a.ID)
	if got.Status() != coaching.AbsenceStatusRejected || got.ReviewedBy == nil || *got.ReviewedBy != coach.ID {
		t.Fatalf("after review: status=%s reviewer=%v", got.Status(), got.ReviewedBy)
	}
	rejected, _ := repo.List(dbc, AbsenceFilter{Status: coaching.AbsenceStatusRejected})
	if len(rejected) != 1 {
		t.Fatalf("List rejected: want=1 got=%d", len(rejected))
	}

	ok, err := repo.DeletePending(dbc, a.ID, p.ID)
	if err != nil || ok {
		t.Fatalf("DeletePending on reviewed absence: ok=%v err=%v", ok, err)
	}

	pending := testutil.SeedAbsence(t, ctx, gdb, p.ID, testutil.Day(2026, 3, 3))
	if ok, _ := repo.DeletePending(dbc, pending.ID, uuid.New()); ok {
		t.Fatalf("DeletePending by non-owner must not delete")
	}
	if ok, _ := repo.DeletePending(dbc, pending.ID, p.ID); !ok {
		t.Fatalf("DeletePending by owner should delete")
	}
}

func TestAbsenceRepoPeriodIsInclusive(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewAbsenceRepo(gdb, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, gdb, "p@example.com")
	for _, d := range []time.Time{
		testutil.Day(2026, 3, 1), testutil.Day(2026, 3, 15), testutil.Day(2026, 3, 31),
		testutil.Day(2026, 2, 28), testutil.Day(2026, 4, 1),
	} {
		testutil.SeedAbsence(t, ctx, gdb, p.ID, d)
	}

	march, _ := period.New(testutil.Day(2026, 3, 1), testutil.Day(2026, 3, 31))
	rows, err := repo.List(dbc, AbsenceFilter{UserID: &p.ID, Period: &march})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("absences in period: want=3 got=%d", len(rows))
	}
}

func TestMoodRepoAverage(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewMoodRepo(gdb, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, gdb, "p@example.com")
	avg, err := repo.Average(dbc, MoodFilter{UserID: &p.ID})
	if err != nil {
		t.Fatalf("Average empty: %v", err)
	}
	if avg != nil {
		t.Fatalf("Average over no entries must be nil, got %v", *avg)
	}

	testutil.SeedMood(t, ctx, gdb, p.ID, 2, testutil.Day(2026, 3, 2))
	testutil.SeedMood(t, ctx, gdb, p.ID, 5, testutil.Day(2026, 3, 3))
	avg, err = repo.Average(dbc, MoodFilter{UserID: &p.ID})
	if err != nil || avg == nil || *avg != 3.5 {
		t.Fatalf("Average: err=%v avg=%v", err, avg)
	}
}

func TestFeedbackRepoOpenQuestions(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewFeedbackRepo(gdb, testutil.Logger(t))

	coach := testutil.SeedProfile(t, ctx, gdb, "coach@example.com", "coach")
	p := testutil.SeedProfile(t, ctx, gdb, "p@example.com")
	other := testutil.SeedProfile(t, ctx, gdb, "o@example.com")
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mk := func(text string, from, until *time.Time, target *uuid.UUID) *types.FeedbackQuestion {
		q, err := repo.CreateQuestion(dbc, &types.FeedbackQuestion{
			ID: uuid.New(), Question: text, Kind: coaching.FeedbackKindRating,
			ActiveFrom: from, ActiveUntil: until, TargetUserID: target, CreatedBy: coach.ID,
		})
		if err != nil {
			t.Fatalf("CreateQuestion: %v", err)
		}
		return q
	}
	open := mk("Wie war die Woche?", nil, nil, nil)
	mk("Vorbei", nil, testutil.PtrTime(testutil.Day(2026, 3, 1)), nil)
	mk("Zukunft", testutil.PtrTime(testutil.Day(2026, 4, 1)), nil, nil)
	mk("Fuer jemand anderen", nil, nil, &other.ID)
	targeted := mk("Nur fuer dich", nil, nil, &p.ID)

	qs, err := repo.ListOpenQuestions(dbc, p.ID, now)
	if err != nil {
		t.Fatalf("ListOpenQuestions: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("open questions: want=2 got=%d", len(qs))
	}

	rating := 4
	if _, err := repo.CreateAnswer(dbc, &types.FeedbackAnswer{ID: uuid.New(), QuestionID: open.ID, UserID: p.ID, Rating: &rating}); err != nil {
		t.Fatalf("CreateAnswer: %v", err)
	}
	_, err = repo.CreateAnswer(dbc, &types.FeedbackAnswer{ID: uuid.New(), QuestionID: open.ID, UserID: p.ID, Rating: &rating})
	if !db.IsUniqueViolation(err) {
		t.Fatalf("second answer: want unique violation got %v", err)
	}

	qs, _ = repo.ListOpenQuestions(dbc, p.ID, now)
	if len(qs) != 1 || qs[0].ID != targeted.ID {
		t.Fatalf("after answering: want only targeted question, got %d", len(qs))
	}

	rows, err := repo.ListAnswers(dbc, &open.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListAnswers: err=%v len=%d", err, len(rows))
	}
	if rows[0].Question != "Wie war die Woche?" || rows[0].Rating == nil || *rows[0].Rating != 4 {
		t.Fatalf("answer row: %+v", rows[0])
	}
}

func TestReportRepoFreezesFinal(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewReportRepo(gdb, testutil.Logger(t))

	coach := testutil.SeedProfile(t, ctx, gdb, "coach@example.com", "coach")
	p := testutil.SeedProfile(t, ctx, gdb, "p@example.com")

	r, err := repo.Create(dbc, &types.Report{
		ID: uuid.New(), UserID: p.ID, CoachID: coach.ID,
		PeriodStart: testutil.Day(2026, 3, 1), PeriodEnd: testutil.Day(2026, 3, 31),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Status != coaching.ReportStatusDraft {
		t.Fatalf("new report: want draft got %s", r.Status)
	}

	ok, err := repo.UpdateDraft(dbc, r.ID, map[string]any{"outlook": "weiter so"})
	if err != nil || !ok {
		t.Fatalf("UpdateDraft: ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdateDraft(dbc, r.ID, map[string]any{
		"status":       coaching.ReportStatusFinal,
		"finalized_at": time.Now().UTC(),
	})
	if err != nil || !ok {
		t.Fatalf("finalize: ok=%v err=%v", ok, err)
	}

	ok, err = repo.UpdateDraft(dbc, r.ID, map[string]any{"outlook": "changed"})
	if err != nil || ok {
		t.Fatalf("UpdateDraft on final: ok=%v err=%v", ok, err)
	}
	if ok, _ := repo.DeleteDraft(dbc, r.ID); ok {
		t.Fatalf("DeleteDraft must not delete a final report")
	}
	got, _ := repo.GetByID(dbc, r.ID)
	if got.Outlook != "weiter so" || !got.IsFinal() {
		t.Fatalf("final report changed: outlook=%q status=%s", got.Outlook, got.Status)
	}
	if n, _ := repo.CountByStatus(dbc, coaching.ReportStatusFinal); n != 1 {
		t.Fatalf("CountByStatus final: want=1 got=%d", n)
	}
}

func TestCalendarEventRepoListInRange(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewCalendarEventRepo(gdb, testutil.Logger(t))

	coach := testutil.SeedProfile(t, ctx, gdb, "coach@example.com", "coach")
	p := testutil.SeedProfile(t, ctx, gdb, "p@example.com")
	other := testutil.SeedProfile(t, ctx, gdb, "o@example.com")

	mk := func(title string, day int, user *uuid.UUID) {
		start := time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC)
		if _, err := repo.Create(dbc, &types.CalendarEvent{
			ID: uuid.New(), Title: title, StartsAt: start, EndsAt: start.Add(2 * time.Hour),
			UserID: user, CreatedBy: coach.ID,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	mk("Gruppentermin", 5, nil)
	mk("Einzelgespraech", 6, &p.ID)
	mk("Fremd", 6, &other.ID)
	mk("Spaeter", 20, nil)

	rows, err := repo.ListInRange(dbc, &p.ID, testutil.Day(2026, 3, 1), testutil.Day(2026, 3, 10))
	if err != nil {
		t.Fatalf("ListInRange: %v", err)
	}
	if len(rows) != 2 || rows[0].Title != "Gruppentermin" || rows[1].Title != "Einzelgespraech" {
		t.Fatalf("events for participant: got %d rows", len(rows))
	}
	all, _ := repo.ListInRange(dbc, nil, testutil.Day(2026, 3, 1), testutil.Day(2026, 3, 31))
	if len(all) != 4 {
		t.Fatalf("all events: want=4 got=%d", len(all))
	}
}

func TestCalendarEventRepoRangeIsHalfOpen(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewCalendarEventRepo(gdb, testutil.Logger(t))
	coach := testutil.SeedProfile(t, ctx, gdb, "coach@example.com", "coach")

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	mk := func(title string, start, end time.Time) {
		if _, err := repo.Create(dbc, &types.CalendarEvent{
			ID: uuid.New(), Title: title, StartsAt: start, EndsAt: end, CreatedBy: coach.ID,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	mk("endet am Rand", from.Add(-2*time.Hour), from)
	mk("ueber den Rand", from.Add(-time.Hour), from.Add(time.Hour))
	mk("Erinnerung", from, from)
	mk("beginnt am Ende", from.AddDate(0, 0, 1), from.AddDate(0, 0, 1).Add(time.Hour))

	rows, err := repo.ListInRange(dbc, nil, from, from.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListInRange: %v", err)
	}
	if len(rows) != 2 || rows[0].Title != "ueber den Rand" || rows[1].Title != "Erinnerung" {
		titles := make([]string, 0, len(rows))
		for _, r := range rows {
			titles = append(titles, r.Title)
		}
		t.Fatalf("half-open range: got %v", titles)
	}
}
