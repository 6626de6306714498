package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quidz-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/learning"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
)

func TestFlashcardRepoVisibilityAndTags(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := testutil.Logger(t)
	cards := NewFlashcardRepo(db, log)
	tags := NewTagRepo(db, log)

	alice := testutil.SeedProfile(t, ctx, db, "alice@example.com")
	bob := testutil.SeedProfile(t, ctx, db, "bob@example.com")

	excel, err := tags.Create(dbc, &types.Tag{ID: uuid.New(), Name: "excel"})
	if err != nil {
		t.Fatalf("Tag Create: %v", err)
	}

	pub, err := cards.Create(dbc, &types.Flashcard{
		ID: uuid.New(), FrontText: "SVERWEIS?", BackText: "Suche", IsPublic: true, CreatedBy: alice.ID,
	}, []uuid.UUID{excel.ID, excel.ID})
	if err != nil {
		t.Fatalf("Create public: %v", err)
	}
	if len(pub.Tags) != 1 || pub.Tags[0].Name != "excel" {
		t.Fatalf("tags: want [excel] got %v", pub.Tags)
	}
	testutil.SeedFlashcard(t, ctx, db, alice.ID, false)
	testutil.SeedFlashcard(t, ctx, db, bob.ID, false)

	visible, err := cards.List(dbc, FlashcardFilter{ViewerID: bob.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("bob sees public + own: want=2 got=%d", len(visible))
	}
	all, _ := cards.List(dbc, FlashcardFilter{ViewerID: bob.ID, AllVisible: true})
	if len(all) != 3 {
		t.Fatalf("staff view: want=3 got=%d", len(all))
	}
	tagged, _ := cards.List(dbc, FlashcardFilter{ViewerID: bob.ID, TagID: &excel.ID})
	if len(tagged) != 1 || tagged[0].ID != pub.ID {
		t.Fatalf("tag filter: got %d rows", len(tagged))
	}

	if err := tags.Delete(dbc, excel.ID); err != nil {
		t.Fatalf("Tag Delete: %v", err)
	}
	reloaded, _ := cards.GetByID(dbc, pub.ID)
	if len(reloaded.Tags) != 0 {
		t.Fatalf("deleted tag still linked")
	}

	if n, _ := cards.CountByCreator(dbc, alice.ID); n != 2 {
		t.Fatalf("CountByCreator: want=2 got=%d", n)
	}
	if err := cards.SoftDeleteByIDs(dbc, []uuid.UUID{pub.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if n, _ := cards.CountByCreator(dbc, alice.ID); n != 2 {
		t.Fatalf("CountByCreator counts deleted cards too: want=2 got=%d", n)
	}
}

func TestLearningProgressCountsDistinctCards(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewLearningProgressRepo(db, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, db, "p@example.com")
	c1 := testutil.SeedFlashcard(t, ctx, db, p.ID, true)
	c2 := testutil.SeedFlashcard(t, ctx, db, p.ID, true)
	c3 := testutil.SeedFlashcard(t, ctx, db, p.ID, true)

	testutil.SeedProgress(t, ctx, db, p.ID, c1.ID, true, testutil.Day(2026, 3, 2))
	testutil.SeedProgress(t, ctx, db, p.ID, c1.ID, true, testutil.Day(2026, 3, 3))
	testutil.SeedProgress(t, ctx, db, p.ID, c1.ID, false, testutil.Day(2026, 3, 4))
	testutil.SeedProgress(t, ctx, db, p.ID, c2.ID, true, testutil.Day(2026, 4, 2))
	testutil.SeedProgress(t, ctx, db, p.ID, c3.ID, false, testutil.Day(2026, 3, 5))

	n, err := repo.CountDistinctLearned(dbc, p.ID, nil)
	if err != nil || n != 2 {
		t.Fatalf("CountDistinctLearned: err=%v want=2 got=%d", err, n)
	}
	march, _ := period.New(testutil.Day(2026, 3, 1), testutil.Day(2026, 3, 31))
	n, _ = repo.CountDistinctLearned(dbc, p.ID, &march)
	if n != 1 {
		t.Fatalf("CountDistinctLearned in march: want=1 got=%d", n)
	}
	rows, _ := repo.ListByUser(dbc, p.ID, &march)
	if len(rows) != 4 {
		t.Fatalf("ListByUser in march: want=4 got=%d", len(rows))
	}
}

func TestFlashcardFeedbackUpsert(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewFlashcardFeedbackRepo(db, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, db, "p@example.com")
	c := testutil.SeedFlashcard(t, ctx, db, p.ID, true)

	if err := repo.Upsert(dbc, &types.FlashcardFeedback{ID: uuid.New(), UserID: p.ID, FlashcardID: c.ID, Helpful: true}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(dbc, &types.FlashcardFeedback{ID: uuid.New(), UserID: p.ID, FlashcardID: c.ID, Helpful: false, Comment: "unklar"}); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	rows, err := repo.ListByCard(dbc, c.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByCard: err=%v len=%d", err, len(rows))
	}
	if rows[0].Helpful || rows[0].Comment != "unklar" {
		t.Fatalf("feedback not overwritten: %+v", rows[0])
	}
}

func TestBadgeRepoAwardOnce(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewBadgeRepo(db, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, db, "p@example.com")
	award := func() bool {
		created, err := repo.Award(dbc, &types.Badge{
			ID: uuid.New(), UserID: p.ID, BadgeType: learning.BadgeFirstFlashcard, EarnedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("Award: %v", err)
		}
		return created
	}
	if !award() {
		t.Fatalf("first award should create")
	}
	if award() {
		t.Fatalf("second award should be a no-op")
	}
	badges, _ := repo.ListByUser(dbc, p.ID)
	if len(badges) != 1 {
		t.Fatalf("ListByUser: want=1 got=%d", len(badges))
	}
	if ok, _ := repo.Revoke(dbc, p.ID, learning.BadgeFirstFlashcard); !ok {
		t.Fatalf("Revoke should delete")
	}
}
