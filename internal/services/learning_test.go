package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/yungbote/quidz-backend/internal/data/repos/testutil"
	"github.com/yungbote/quidz-backend/internal/domain/learning"
	"github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

func (e *env) flashcardService(milestones []int) FlashcardService {
	return NewFlashcardService(e.db, e.log, e.cards, e.cats, e.tags, e.learning, e.feedback, e.badges, milestones)
}

func TestFirstFlashcardAwardsBadgeOnce(t *testing.T) {
	e := newEnv(t)
	p := testutil.SeedProfile(t, context.Background(), e.db, "p@example.com")
	svc := e.flashcardService(nil)

	ctx := as(p)
	if _, err := svc.Create(ctx, FlashcardInput{FrontText: "Hauptstadt?", BackText: "Berlin"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, FlashcardInput{FrontText: "2+2?", BackText: "4"}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	badges, err := e.badges.ListByUser(dbcOf(ctx), p.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(badges) != 1 || badges[0].BadgeType != learning.BadgeFirstFlashcard {
		t.Fatalf("badges: %+v", badges)
	}
	var awarded int
	for _, m := range events(ctx) {
		if m.Event == realtime.SSEEventBadgeAwarded {
			awarded++
		}
	}
	if awarded != 1 {
		t.Fatalf("BadgeAwarded events: want=1 got=%d", awarded)
	}
}

func TestLearnedMilestonesCountDistinctCards(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	author := testutil.SeedProfile(t, bg, e.db, "author@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	c1 := testutil.SeedFlashcard(t, bg, e.db, author.ID, true)
	c2 := testutil.SeedFlashcard(t, bg, e.db, author.ID, true)
	private := testutil.SeedFlashcard(t, bg, e.db, author.ID, false)

	svc := e.flashcardService([]int{2, 5})
	ctx := as(p)

	res, err := svc.RecordAnswer(ctx, c1.ID, AnswerInput{KnewAnswer: true})
	if err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if res.LearnedCount != 1 || len(res.AwardedBadges) != 0 {
		t.Fatalf("first answer: %+v", res)
	}
	res, err = svc.RecordAnswer(ctx, c1.ID, AnswerInput{KnewAnswer: true})
	if err != nil || res.LearnedCount != 1 {
		t.Fatalf("repeat answer must not count twice: err=%v res=%+v", err, res)
	}
	res, err = svc.RecordAnswer(ctx, c2.ID, AnswerInput{KnewAnswer: true})
	if err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if res.LearnedCount != 2 || len(res.AwardedBadges) != 1 || res.AwardedBadges[0] != learning.LearnedBadge(2) {
		t.Fatalf("milestone 2: %+v", res)
	}
	res, err = svc.RecordAnswer(ctx, c2.ID, AnswerInput{KnewAnswer: true})
	if err != nil || len(res.AwardedBadges) != 0 {
		t.Fatalf("milestone must be awarded once: err=%v res=%+v", err, res)
	}

	_, err = svc.RecordAnswer(ctx, private.ID, AnswerInput{KnewAnswer: true})
	requireCode(t, err, 404, "flashcard_not_found")
}

func TestFlashcardVisibilityAndEditing(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	a := testutil.SeedProfile(t, bg, e.db, "a@example.com")
	b := testutil.SeedProfile(t, bg, e.db, "b@example.com")
	svc := e.flashcardService(nil)

	cat, err := svc.CreateCategory(as(coach, user.RoleCoach), NameInput{Name: "Deutsch"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	_, err = svc.CreateCategory(as(coach, user.RoleCoach), NameInput{Name: "Deutsch"})
	requireCode(t, err, 409, "category_exists")
	_, err = svc.CreateCategory(as(a), NameInput{Name: "Mathe"})
	requireCode(t, err, 403, "staff_only")

	mine, err := svc.Create(as(a), FlashcardInput{FrontText: "der/die/das", BackText: "Artikel", CategoryID: &cat.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(as(b), FlashcardInput{FrontText: "public", BackText: "card", IsPublic: true}); err != nil {
		t.Fatalf("Create public: %v", err)
	}

	visible, err := svc.List(as(b), ListFlashcardsInput{})
	if err != nil || len(visible) != 1 {
		t.Fatalf("b sees only the public card: err=%v len=%d", err, len(visible))
	}
	all, err := svc.List(as(coach, user.RoleCoach), ListFlashcardsInput{})
	if err != nil || len(all) != 2 {
		t.Fatalf("staff sees every card: err=%v len=%d", err, len(all))
	}

	_, err = svc.Get(as(b), mine.ID)
	requireCode(t, err, 404, "flashcard_not_found")
	back := "Artikel (Genus)"
	updated, err := svc.Update(as(coach, user.RoleCoach), mine.ID, UpdateFlashcardInput{BackText: &back})
	if err != nil || updated.BackText != back {
		t.Fatalf("staff edit: err=%v", err)
	}

	exports := NewExportService(e.log, e.profiles, e.projects, e.skills, e.cats, svc, nil, nil)
	file, err := exports.FlashcardsCSV(as(a), ListFlashcardsInput{})
	if err != nil {
		t.Fatalf("FlashcardsCSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("csv rows: want header+2 got=%d", len(records))
	}
	pdf, err := exports.FlashcardsPDF(as(a), ListFlashcardsInput{CategoryID: &cat.ID})
	if err != nil || !bytes.HasPrefix(pdf.Body, []byte("%PDF")) {
		t.Fatalf("FlashcardsPDF: err=%v", err)
	}

	if err := svc.Delete(as(b), mine.ID); err == nil {
		t.Fatalf("only the creator or staff may delete")
	}
	if err := svc.Delete(as(a), mine.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestBadgeManualAwardAndRevoke(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	svc := NewBadgeService(e.db, e.log, e.badges, e.profiles)

	ctx := as(coach, user.RoleCoach)
	b, err := svc.Award(ctx, AwardBadgeInput{UserID: p.ID, BadgeType: "team_player"})
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	if b.AwardedBy == nil || *b.AwardedBy != coach.ID {
		t.Fatalf("awarded_by: %v", b.AwardedBy)
	}
	_, err = svc.Award(ctx, AwardBadgeInput{UserID: p.ID, BadgeType: "team_player"})
	requireCode(t, err, 409, "badge_exists")

	_, err = svc.Award(as(p), AwardBadgeInput{UserID: p.ID, BadgeType: "self"})
	requireCode(t, err, 403, "staff_only")

	if err := svc.Revoke(ctx, p.ID, "team_player"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	requireCode(t, svc.Revoke(ctx, p.ID, "team_player"), 404, "badge_not_found")
}

func TestFlashcardExportIsUnpaged(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	author := testutil.SeedProfile(t, bg, e.db, "author@example.com")
	for i := 0; i < 510; i++ {
		testutil.SeedFlashcard(t, bg, e.db, author.ID, true)
	}

	exports := NewExportService(e.log, e.profiles, e.projects, e.skills, e.cats, e.flashcardService(nil), nil, nil)
	file, err := exports.FlashcardsCSV(as(author), ListFlashcardsInput{Limit: 10})
	if err != nil {
		t.Fatalf("FlashcardsCSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 511 {
		t.Fatalf("csv rows: want header+510 got=%d", len(records))
	}
}
