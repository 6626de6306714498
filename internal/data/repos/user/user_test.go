package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos/testutil"
	roles "github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
)

func TestProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewProfileRepo(db, testutil.Logger(t))

	participant := testutil.SeedProfile(t, ctx, db, "anna@example.com", roles.RoleUser)
	coach := testutil.SeedProfile(t, ctx, db, "coach@example.com", roles.RoleCoach)
	admin := testutil.SeedProfile(t, ctx, db, "admin@example.com", roles.RoleUser, roles.RoleAdmin)

	got, err := repo.GetByEmail(dbc, "  ANNA@example.com ")
	if err != nil || got == nil || got.ID != participant.ID {
		t.Fatalf("GetByEmail: err=%v got=%v", err, got)
	}
	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: err=%v got=%v", err, missing)
	}
	if ok, err := repo.EmailExists(dbc, "coach@example.com"); err != nil || !ok {
		t.Fatalf("EmailExists: err=%v ok=%v", err, ok)
	}

	all, err := repo.List(dbc, ProfileFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("List all: err=%v len=%d", err, len(all))
	}
	participants, err := repo.List(dbc, ProfileFilter{ParticipantsOnly: true})
	if err != nil {
		t.Fatalf("List participants: %v", err)
	}
	if len(participants) != 1 || participants[0].ID != participant.ID {
		t.Fatalf("participants only: want [%s] got %d rows", participant.ID, len(participants))
	}

	ids, err := repo.ListIDsWithRole(dbc, roles.RoleUser)
	if err != nil || len(ids) != 2 {
		t.Fatalf("ListIDsWithRole: err=%v len=%d", err, len(ids))
	}
	if n, err := repo.CountWithRole(dbc, roles.RoleCoach); err != nil || n != 1 {
		t.Fatalf("CountWithRole: err=%v n=%d", err, n)
	}

	if err := repo.UpdateAvatarFields(dbc, coach.ID, "avatars/x.png", "https://cdn/x.png"); err != nil {
		t.Fatalf("UpdateAvatarFields: %v", err)
	}
	reloaded, _ := repo.GetByID(dbc, coach.ID)
	if reloaded.AvatarURL != "https://cdn/x.png" {
		t.Fatalf("avatar url: got %q", reloaded.AvatarURL)
	}
	_ = admin
}

func TestUserRoleRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewUserRoleRepo(db, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, db, "roles@example.com", roles.RoleUser)

	if err := repo.Grant(dbc, p.ID, roles.RoleCoach); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if err := repo.Grant(dbc, p.ID, roles.RoleCoach); err != nil {
		t.Fatalf("Grant twice should be a no-op: %v", err)
	}
	got, err := repo.GetRoles(dbc, p.ID)
	if err != nil || len(got) != 2 {
		t.Fatalf("GetRoles: err=%v roles=%v", err, got)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return repo.Replace(dbctx.Context{Ctx: ctx, Tx: tx}, p.ID, []string{roles.RoleAdmin})
	}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, _ = repo.GetRoles(dbc, p.ID)
	if len(got) != 1 || got[0] != roles.RoleAdmin {
		t.Fatalf("after Replace: want [admin] got %v", got)
	}

	byUser, err := repo.GetByUserIDs(dbc, []uuid.UUID{p.ID})
	if err != nil || len(byUser[p.ID]) != 1 {
		t.Fatalf("GetByUserIDs: err=%v got=%v", err, byUser)
	}

	if err := repo.Revoke(dbc, p.ID, roles.RoleAdmin); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	got, _ = repo.GetRoles(dbc, p.ID)
	if len(got) != 0 {
		t.Fatalf("after Revoke: want none got %v", got)
	}
}
