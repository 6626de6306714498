package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/quidz-backend/internal/data/repos/testutil"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

func TestTaskFanoutCreatesOneRowPerParticipantOnce(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	a := testutil.SeedProfile(t, bg, e.db, "a@example.com")
	b := testutil.SeedProfile(t, bg, e.db, "b@example.com")

	svc := NewTaskService(e.db, e.log, e.tasks, e.skills, e.profiles, nil)
	in := CreateTaskInput{
		Title:          "Lebenslauf aktualisieren",
		DueDate:        "2026-11-02",
		AssignToAll:    true,
		IdempotencyKey: "form-123",
	}

	ctx := as(coach, user.RoleCoach)
	first, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("fanout rows: want=2 got=%d", len(first))
	}
	assigned := map[string]bool{}
	for _, m := range events(ctx) {
		if m.Event == realtime.SSEEventTaskAssigned {
			assigned[m.Channel] = true
		}
	}
	if !assigned[userChannel(a.ID)] || !assigned[userChannel(b.ID)] || assigned[userChannel(coach.ID)] {
		t.Fatalf("TaskAssigned channels: %v", assigned)
	}

	again, err := svc.Create(as(coach, user.RoleCoach), in)
	if err != nil {
		t.Fatalf("Create replay: %v", err)
	}
	if len(again) != 2 || again[0].ID != first[0].ID && again[0].ID != first[1].ID {
		t.Fatalf("replay should return the stored rows")
	}
	all, err := svc.List(ctx, ListTasksInput{})
	if err != nil || len(all) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(all))
	}
}

func TestTaskParticipantMayOnlyChangeStatus(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	other := testutil.SeedProfile(t, bg, e.db, "o@example.com")

	svc := NewTaskService(e.db, e.log, e.tasks, e.skills, e.profiles, nil)
	created, err := svc.Create(as(coach, user.RoleCoach), CreateTaskInput{Title: "Bewerbung", AssignedTo: &p.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := created[0].ID

	title := "Neuer Titel"
	_, err = svc.Update(as(p), id, UpdateTaskInput{Title: &title})
	requireCode(t, err, 403, "staff_only")
	requireCode(t, svc.Delete(as(p), id), 403, "staff_only")

	_, err = svc.UpdateStatus(as(other), id, coaching.TaskStatusCompleted)
	requireCode(t, err, 404, "task_not_found")

	done, err := svc.UpdateStatus(as(p), id, coaching.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if done.Status != coaching.TaskStatusCompleted {
		t.Fatalf("status: got %q", done.Status)
	}
	_, err = svc.UpdateStatus(as(p), id, "done")
	requireCode(t, err, 400, "invalid_status")

	_, err = svc.UploadAttachment(as(coach, user.RoleCoach), id, uploadOf("brief.pdf", "%PDF"))
	requireCode(t, err, 503, "feature_unavailable")
}

func TestAbsenceReviewLifecycle(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	svc := NewAbsenceService(e.db, e.log, e.absences)

	a, err := svc.Create(as(p), CreateAbsenceInput{Date: "2026-10-12", Reason: "Arzttermin"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Approved != nil {
		t.Fatalf("new absence must be pending")
	}

	pending, err := svc.List(as(coach, user.RoleCoach), ListAbsencesInput{Status: coaching.AbsenceStatusPending})
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending: err=%v len=%d", err, len(pending))
	}

	_, err = svc.Review(as(p), a.ID, true)
	requireCode(t, err, 403, "staff_only")

	ctx := as(coach, user.RoleCoach)
	reviewed, err := svc.Review(ctx, a.ID, false)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if reviewed.Approved == nil || *reviewed.Approved || reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != coach.ID {
		t.Fatalf("review not recorded: %+v", reviewed)
	}
	flipped, err := svc.Review(ctx, a.ID, true)
	if err != nil || flipped.Approved == nil || !*flipped.Approved {
		t.Fatalf("flip review: err=%v", err)
	}
	if len(events(ctx)) != 4 {
		t.Fatalf("each review notifies participant and staff: got %d events", len(events(ctx)))
	}

	requireCode(t, svc.Delete(as(p), a.ID), 409, "absence_reviewed")
}

func TestSkillReviewAndResubmission(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	bucket := newMemBucket()
	svc := NewSkillService(e.db, e.log, e.skills, bucket)

	s, err := svc.Create(as(p), CreateSkillInput{Title: "Excel", Category: "IT"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Status != coaching.SkillStatusInReview {
		t.Fatalf("new skill status: %q", s.Status)
	}

	level := 3
	rejected, err := svc.Review(as(coach, user.RoleCoach), s.ID, ReviewSkillInput{
		Status:          coaching.SkillStatusRejected,
		CoachComment:    "Nachweis fehlt",
		CompetenceLevel: &level,
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if rejected.Status != coaching.SkillStatusRejected || rejected.CoachComment != "Nachweis fehlt" {
		t.Fatalf("review not applied: %+v", rejected)
	}

	proved, err := svc.UploadProof(as(p), s.ID, uploadOf("zertifikat.pdf", "%PDF-1.4"))
	if err != nil {
		t.Fatalf("UploadProof: %v", err)
	}
	if proved.Status != coaching.SkillStatusInReview || proved.ProofFileURL == "" {
		t.Fatalf("proof upload should resubmit: status=%q url=%q", proved.Status, proved.ProofFileURL)
	}
	if bucket.count() != 1 {
		t.Fatalf("bucket objects: want=1 got=%d", bucket.count())
	}

	other := testutil.SeedProfile(t, bg, e.db, "o@example.com")
	title := "Word"
	_, err = svc.Update(as(other), s.ID, UpdateSkillInput{Title: &title})
	if err == nil {
		t.Fatalf("only the owner may edit a skill")
	}
}

func TestDashboardAndAdminStats(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	admin := testutil.SeedProfile(t, bg, e.db, "admin@example.com", user.RoleAdmin)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	q := testutil.SeedProfile(t, bg, e.db, "q@example.com")

	testutil.SeedTask(t, bg, e.db, p.ID, admin.ID, coaching.TaskStatusOpen, nil)
	testutil.SeedTask(t, bg, e.db, p.ID, admin.ID, coaching.TaskStatusCompleted, nil)
	testutil.SeedTask(t, bg, e.db, q.ID, admin.ID, coaching.TaskStatusOpen, nil)
	testutil.SeedAbsence(t, bg, e.db, p.ID, time.Now().UTC())
	testutil.SeedSkill(t, bg, e.db, p.ID, coaching.SkillStatusInReview, time.Now().UTC())
	testutil.SeedMood(t, bg, e.db, p.ID, 4, time.Now().UTC().Add(-24*time.Hour))
	testutil.SeedMood(t, bg, e.db, q.ID, 1, time.Now().UTC().Add(-48*time.Hour))
	testutil.SeedMood(t, bg, e.db, q.ID, 5, time.Now().UTC().AddDate(0, 0, -60))

	svc := NewDashboardService(e.log, e.progress(), e.tasks, e.badges, e.profiles, e.absences, e.skills, e.moods, e.reports)

	dash, err := svc.Participant(as(p))
	if err != nil {
		t.Fatalf("Participant: %v", err)
	}
	if dash.Progress.TasksTotal != 2 || dash.Progress.TasksCompleted != 1 {
		t.Fatalf("progress: %+v", dash.Progress)
	}
	if len(dash.OpenTasks) != 1 {
		t.Fatalf("open tasks preview: want=1 got=%d", len(dash.OpenTasks))
	}

	_, err = svc.AdminStats(as(p))
	requireCode(t, err, 403, "staff_only")

	stats, err := svc.AdminStats(as(admin, user.RoleAdmin))
	if err != nil {
		t.Fatalf("AdminStats: %v", err)
	}
	if stats.Participants != 2 || stats.PendingAbsences != 1 || stats.SkillsInReview != 1 || stats.OpenTasks != 2 {
		t.Fatalf("stats: %+v", stats)
	}
	if stats.AverageMood30d == nil || *stats.AverageMood30d != 2.5 {
		t.Fatalf("average mood over 30 days: %v", stats.AverageMood30d)
	}
	if stats.DraftReports != 0 {
		t.Fatalf("draft reports: %d", stats.DraftReports)
	}
}

func TestProgressCountsPastDefaultPageSize(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")

	for i := 0; i < 600; i++ {
		testutil.SeedTask(t, bg, e.db, p.ID, coach.ID, coaching.TaskStatusCompleted, nil)
	}
	start := time.Now().UTC().AddDate(0, 0, -600)
	for i := 0; i < 520; i++ {
		value := 1
		if i >= 500 {
			value = 5
		}
		testutil.SeedMood(t, bg, e.db, p.ID, value, start.AddDate(0, 0, i))
	}

	sum, err := e.progress().Compute(as(p), nil, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if sum.TasksTotal != 600 || sum.TasksCompleted != 600 {
		t.Fatalf("tasks: total=%d completed=%d", sum.TasksTotal, sum.TasksCompleted)
	}
	if sum.MoodEntriesCount != 520 {
		t.Fatalf("mood entries: want=520 got=%d", sum.MoodEntriesCount)
	}
	if sum.AverageMood == nil || *sum.AverageMood != 1.15 {
		t.Fatalf("average mood: want=1.15 got=%v", sum.AverageMood)
	}
}

func TestTaskFanoutDedupesAcrossWindowBoundary(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	testutil.SeedProfile(t, bg, e.db, "a@example.com")

	clock := time.Date(2026, time.October, 19, 10, 9, 59, 0, time.UTC)
	prev := nowUTC
	nowUTC = func() time.Time { return clock }
	t.Cleanup(func() { nowUTC = prev })

	svc := NewTaskService(e.db, e.log, e.tasks, e.skills, e.profiles, nil)
	in := CreateTaskInput{Title: "Wochenplan", AssignToAll: true}

	first, err := svc.Create(as(coach, user.RoleCoach), in)
	if err != nil || len(first) != 1 {
		t.Fatalf("Create: err=%v len=%d", err, len(first))
	}

	clock = clock.Add(2 * time.Second)
	again, err := svc.Create(as(coach, user.RoleCoach), in)
	if err != nil || len(again) != 1 || again[0].ID != first[0].ID {
		t.Fatalf("resubmission across the window edge should replay: err=%v", err)
	}

	clock = clock.Add(15 * time.Minute)
	later, err := svc.Create(as(coach, user.RoleCoach), in)
	if err != nil || len(later) != 1 || later[0].ID == first[0].ID {
		t.Fatalf("a submission after the window is a new fan-out: err=%v", err)
	}

	all, err := svc.List(as(coach, user.RoleCoach), ListTasksInput{})
	if err != nil || len(all) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(all))
	}
}
