package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quidz-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewUserTokenRepo(db, testutil.Logger(t))

	u := testutil.SeedProfile(t, ctx, db, "usertokenrepo@example.com")

	makeToken := func(access, refresh string, expires time.Time) *types.UserToken {
		return &types.UserToken{
			ID:           uuid.New(),
			UserID:       u.ID,
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    expires,
		}
	}

	t1 := makeToken("access-1", "refresh-1", time.Now().UTC().Add(time.Hour))
	if _, err := repo.Create(dbc, []*types.UserToken{t1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{t1.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if row, err := repo.GetByAccessToken(dbc, "access-1"); err != nil || row == nil || row.ID != t1.ID {
		t.Fatalf("GetByAccessToken: err=%v row=%v", err, row)
	}
	if row, err := repo.GetByRefreshToken(dbc, "refresh-1"); err != nil || row == nil {
		t.Fatalf("GetByRefreshToken: err=%v row=%v", err, row)
	}
	if row, err := repo.GetByRefreshToken(dbc, "nope"); err != nil || row != nil {
		t.Fatalf("GetByRefreshToken unknown: err=%v row=%v", err, row)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{t1.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if row, err := repo.GetByAccessToken(dbc, "access-1"); err != nil || row != nil {
		t.Fatalf("after SoftDeleteByIDs: err=%v row=%v", err, row)
	}

	t2 := makeToken("access-2", "refresh-2", time.Now().UTC().Add(time.Hour))
	if _, err := repo.Create(dbc, []*types.UserToken{t2}); err != nil {
		t.Fatalf("seed token2: %v", err)
	}
	if err := repo.SoftDeleteByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("SoftDeleteByUserIDs: %v", err)
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{t2.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("after SoftDeleteByUserIDs: err=%v len=%d", err, len(rows))
	}

	t3 := makeToken("access-3", "refresh-3", time.Now().UTC().Add(-time.Hour))
	if _, err := repo.Create(dbc, []*types.UserToken{t3}); err != nil {
		t.Fatalf("seed token3: %v", err)
	}
	n, err := repo.FullDeleteExpired(dbc, time.Now().UTC())
	if err != nil {
		t.Fatalf("FullDeleteExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("FullDeleteExpired: want=1 got=%d", n)
	}
}
