package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/yungbote/quidz-backend/internal/data/repos/testutil"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

func TestReportSnapshotCountsAbsencesInPeriodOnly(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")

	for _, d := range []time.Time{
		testutil.Day(2026, time.March, 1),
		testutil.Day(2026, time.March, 15),
		testutil.Day(2026, time.March, 31),
		testutil.Day(2026, time.February, 28),
		testutil.Day(2026, time.April, 1),
	} {
		testutil.SeedAbsence(t, bg, e.db, p.ID, d)
	}

	svc := NewReportService(e.db, e.log, e.reports, e.profiles, e.progress())
	ctx := as(coach, user.RoleCoach)
	created, err := svc.Create(ctx, CreateReportInput{
		UserID:      p.ID,
		PeriodStart: "2026-03-01",
		PeriodEnd:   "2026-03-31",
		ProgramType: "AVGS",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != coaching.ReportStatusDraft {
		t.Fatalf("status: want draft got %q", created.Status)
	}
	if got := created.Snapshot.Attendance.AbsencesCount; got != 3 {
		t.Fatalf("absences_count: want=3 got=%d", got)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Snapshot.Summary.AbsencesCount != 3 {
		t.Fatalf("summary absences: want=3 got=%d", got.Snapshot.Summary.AbsencesCount)
	}
	if len(got.AttendanceSummary) == 0 {
		t.Fatalf("draft load should persist the attendance snapshot")
	}
}

func TestReportDraftRefreshesAndFinalFreezes(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	testutil.SeedAbsence(t, bg, e.db, p.ID, testutil.Day(2026, time.May, 4))

	svc := NewReportService(e.db, e.log, e.reports, e.profiles, e.progress())
	ctx := as(coach, user.RoleCoach)
	r, err := svc.Create(ctx, CreateReportInput{UserID: p.ID, PeriodStart: "2026-05-01", PeriodEnd: "2026-05-31"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	testutil.SeedAbsence(t, bg, e.db, p.ID, testutil.Day(2026, time.May, 5))
	draft, err := svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get draft: %v", err)
	}
	if draft.Snapshot.Attendance.AbsencesCount != 2 {
		t.Fatalf("draft should recompute: want=2 got=%d", draft.Snapshot.Attendance.AbsencesCount)
	}

	outlook := "Praktikumssuche fortsetzen"
	saved, err := svc.Save(ctx, r.ID, SaveReportInput{ReportNotes: coaching.ReportNotes{Outlook: &outlook}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Outlook != outlook || saved.IsFinal() {
		t.Fatalf("save: outlook=%q status=%q", saved.Outlook, saved.Status)
	}

	final, err := svc.Finalize(ctx, r.ID)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !final.IsFinal() || final.FinalizedAt == nil {
		t.Fatalf("finalize: status=%q finalized_at=%v", final.Status, final.FinalizedAt)
	}
	var notified bool
	for _, m := range events(ctx) {
		if m.Event == realtime.SSEEventReportFinalized && m.Channel == userChannel(p.ID) {
			notified = true
		}
	}
	if !notified {
		t.Fatalf("participant should be notified of the final report")
	}

	testutil.SeedAbsence(t, bg, e.db, p.ID, testutil.Day(2026, time.May, 6))
	frozen, err := svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get final: %v", err)
	}
	if frozen.Snapshot.Attendance.AbsencesCount != 2 {
		t.Fatalf("final snapshot must not change: want=2 got=%d", frozen.Snapshot.Attendance.AbsencesCount)
	}
	if frozen.Outlook != outlook {
		t.Fatalf("final notes lost: %q", frozen.Outlook)
	}

	_, err = svc.Save(ctx, r.ID, SaveReportInput{ReportNotes: coaching.ReportNotes{Outlook: &outlook}})
	requireCode(t, err, 409, "report_finalized")
	_, err = svc.Finalize(ctx, r.ID)
	requireCode(t, err, 409, "report_finalized")
	requireCode(t, svc.DeleteDraft(ctx, r.ID), 409, "report_finalized")
}

func TestReportValidationAndAccess(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	svc := NewReportService(e.db, e.log, e.reports, e.profiles, e.progress())

	_, err := svc.Create(as(p), CreateReportInput{UserID: p.ID, PeriodStart: "2026-01-01", PeriodEnd: "2026-01-31"})
	requireCode(t, err, 403, "staff_only")

	ctx := as(coach, user.RoleCoach)
	_, err = svc.Create(ctx, CreateReportInput{UserID: p.ID, PeriodStart: "2026-02-01", PeriodEnd: "2026-01-31"})
	requireCode(t, err, 400, "invalid_period")

	_, err = svc.Create(ctx, CreateReportInput{UserID: p.ID, PeriodStart: "01.02.2026", PeriodEnd: "2026-02-28"})
	requireCode(t, err, 400, "invalid_date")

	r, err := svc.Create(ctx, CreateReportInput{UserID: p.ID, PeriodStart: "2026-01-01", PeriodEnd: "2026-01-31"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	list, err := svc.List(ctx, ListReportsInput{UserID: &p.ID, Status: coaching.ReportStatusDraft})
	if err != nil || len(list) != 1 {
		t.Fatalf("List: err=%v len=%d", err, len(list))
	}
	if err := svc.DeleteDraft(ctx, r.ID); err != nil {
		t.Fatalf("DeleteDraft: %v", err)
	}
	_, err = svc.Get(ctx, r.ID)
	requireCode(t, err, 404, "report_not_found")
}

func TestReportPDFExport(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	testutil.SeedMood(t, bg, e.db, p.ID, 4, testutil.Day(2026, time.June, 2).Add(9*time.Hour))

	reports := NewReportService(e.db, e.log, e.reports, e.profiles, e.progress())
	ctx := as(coach, user.RoleCoach)
	r, err := reports.Create(ctx, CreateReportInput{UserID: p.ID, PeriodStart: "2026-06-01", PeriodEnd: "2026-06-30"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	exports := NewExportService(e.log, e.profiles, e.projects, e.skills, e.cats, nil, reports, nil)
	file, err := exports.ReportPDF(ctx, r.ID)
	if err != nil {
		t.Fatalf("ReportPDF: %v", err)
	}
	if file.ContentType != contentTypePDF || !bytes.HasPrefix(file.Body, []byte("%PDF")) {
		t.Fatalf("unexpected export: type=%s head=%q", file.ContentType, file.Body[:8])
	}
	if want := "bericht-test-p-example-com-2026-06.pdf"; file.Filename != want {
		t.Fatalf("filename: want=%s got=%s", want, file.Filename)
	}
}
