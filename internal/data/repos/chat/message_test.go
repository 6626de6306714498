package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quidz-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/chat"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
)

func TestChatMessageRepoConversations(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewChatMessageRepo(db, testutil.Logger(t))

	me := testutil.SeedProfile(t, ctx, db, "me@example.com")
	coach := testutil.SeedProfile(t, ctx, db, "coach@example.com", "coach")
	admin := testutil.SeedProfile(t, ctx, db, "admin@example.com", "admin")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	send := func(from, to uuid.UUID, content string, offset time.Duration) *types.ChatMessage {
		rows, err := repo.Create(dbc, []*types.ChatMessage{{
			ID: uuid.New(), SenderID: from, RecipientID: testutil.PtrUUID(to),
			Kind: chat.KindDirect, Role: chat.RoleUser, Content: content, CreatedAt: base.Add(offset),
		}})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		return rows[0]
	}

	send(me.ID, coach.ID, "Hallo", 0)
	send(coach.ID, me.ID, "Hi!", time.Minute)
	send(coach.ID, me.ID, "Wie geht's?", 2*time.Minute)
	send(admin.ID, me.ID, "Termin morgen", 3*time.Minute)

	thread, err := repo.ListBetween(dbc, me.ID, coach.ID, nil, 50)
	if err != nil {
		t.Fatalf("ListBetween: %v", err)
	}
	if len(thread) != 3 || thread[0].Content != "Hallo" || thread[2].Content != "Wie geht's?" {
		t.Fatalf("thread order: got %d rows", len(thread))
	}
	older, _ := repo.ListBetween(dbc, me.ID, coach.ID, &thread[2].CreatedAt, 1)
	if len(older) != 1 || older[0].Content != "Hi!" {
		t.Fatalf("paging before: got %v", older)
	}

	convs, err := repo.ListConversations(dbc, me.ID, 0)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("conversations: want=2 got=%d", len(convs))
	}
	if convs[0].PeerID != admin.ID || convs[0].UnreadCount != 1 {
		t.Fatalf("newest conversation: peer=%s unread=%d", convs[0].PeerID, convs[0].UnreadCount)
	}
	if convs[1].PeerID != coach.ID || convs[1].UnreadCount != 2 || convs[1].LastMessage.Content != "Wie geht's?" {
		t.Fatalf("coach conversation: %+v", convs[1])
	}

	n, err := repo.MarkRead(dbc, me.ID, coach.ID, time.Now())
	if err != nil || n != 2 {
		t.Fatalf("MarkRead: err=%v n=%d", err, n)
	}
	if unread, _ := repo.CountUnread(dbc, me.ID); unread != 1 {
		t.Fatalf("CountUnread: want=1 got=%d", unread)
	}
}

func TestChatMessageRepoAssistantThread(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewChatMessageRepo(db, testutil.Logger(t))

	me := testutil.SeedProfile(t, ctx, db, "me@example.com")
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, role := range []string{chat.RoleUser, chat.RoleAssistant, chat.RoleUser, chat.RoleAssistant} {
		if _, err := repo.Create(dbc, []*types.ChatMessage{{
			ID: uuid.New(), SenderID: me.ID, Kind: chat.KindAssistant, Role: role,
			Content: role, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	last, err := repo.ListAssistantThread(dbc, me.ID, 2)
	if err != nil || len(last) != 2 {
		t.Fatalf("ListAssistantThread: err=%v len=%d", err, len(last))
	}
	if last[0].Role != chat.RoleUser || last[1].Role != chat.RoleAssistant {
		t.Fatalf("thread order: %s, %s", last[0].Role, last[1].Role)
	}

	n, err := repo.DeleteAssistantThread(dbc, me.ID)
	if err != nil || n != 4 {
		t.Fatalf("DeleteAssistantThread: err=%v n=%d", err, n)
	}
	convs, _ := repo.ListConversations(dbc, me.ID, 0)
	if len(convs) != 0 {
		t.Fatalf("assistant turns must not show as conversations")
	}
}
