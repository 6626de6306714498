package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/chat"
	"github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

type SendMessageInput struct {
	RecipientID uuid.UUID `json:"recipient_id" validate:"required"`
	Content     string    `json:"content" validate:"notblank,max=10000"`
}

type EditMessageInput struct {
	Content string `json:"content" validate:"notblank,max=10000"`
}

type ChatService interface {
	Send(ctx context.Context, in SendMessageInput) (*types.ChatMessage, error)
	ListWith(ctx context.Context, peerID uuid.UUID, before *time.Time, limit int) ([]*types.ChatMessage, error)
	ListConversations(ctx context.Context, limit int) ([]*types.Conversation, error)
	CountUnread(ctx context.Context) (int64, error)
	Edit(ctx context.Context, id uuid.UUID, in EditMessageInput) (*types.ChatMessage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkRead(ctx context.Context, peerID uuid.UUID) (int64, error)
}

type chatService struct {
	db          *gorm.DB
	log         *logger.Logger
	messageRepo repos.ChatMessageRepo
	profileRepo repos.ProfileRepo
	roleRepo    repos.UserRoleRepo
}

func NewChatService(
	db *gorm.DB,
	log *logger.Logger,
	messageRepo repos.ChatMessageRepo,
	profileRepo repos.ProfileRepo,
	roleRepo repos.UserRoleRepo,
) ChatService {
	return &chatService{
		db:          db,
		log:         log.With("service", "ChatService"),
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		roleRepo:    roleRepo,
	}
}

// Send stores a direct message. One side of every conversation is staff:
// participants may only write to coaches and admins.
func (cs *chatService) Send(ctx context.Context, in SendMessageInput) (*types.ChatMessage, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if in.RecipientID == c.ID {
		return nil, apierr.BadRequest("invalid_recipient", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}
	recipient, err := cs.profileRepo.GetByID(dbc, in.RecipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, apierr.NotFound("recipient_not_found")
	}
	if !c.Roles.IsStaff {
		roles, err := cs.roleRepo.GetRoles(dbc, recipient.ID)
		if err != nil {
			return nil, err
		}
		if !user.ResolveRoles(roles).IsStaff {
			return nil, errStaffOnly
		}
	}

	now := nowUTC()
	rid := recipient.ID
	msg := &types.ChatMessage{
		ID:          uuid.New(),
		SenderID:    c.ID,
		RecipientID: &rid,
		Kind:        chat.KindDirect,
		Role:        chat.RoleUser,
		Content:     in.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := cs.messageRepo.Create(dbc, []*types.ChatMessage{msg}); err != nil {
		return nil, err
	}
	cs.emitBoth(ctx, msg, realtime.SSEEventChatMessageCreated, map[string]any{"message": msg})
	return msg, nil
}

func (cs *chatService) ListWith(ctx context.Context, peerID uuid.UUID, before *time.Time, limit int) ([]*types.ChatMessage, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return cs.messageRepo.ListBetween(dbctx.Context{Ctx: ctx}, c.ID, peerID, before, limit)
}

func (cs *chatService) ListConversations(ctx context.Context, limit int) ([]*types.Conversation, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return cs.messageRepo.ListConversations(dbctx.Context{Ctx: ctx}, c.ID, limit)
}

func (cs *chatService) CountUnread(ctx context.Context) (int64, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return 0, err
	}
	return cs.messageRepo.CountUnread(dbctx.Context{Ctx: ctx}, c.ID)
}

// own loads a direct message sent by the caller.
func (cs *chatService) own(dbc dbctx.Context, c caller, id uuid.UUID) (*types.ChatMessage, error) {
	msg, err := cs.messageRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.Kind != chat.KindDirect {
		return nil, apierr.NotFound("message_not_found")
	}
	if msg.SenderID != c.ID {
		if msg.RecipientID != nil && *msg.RecipientID == c.ID {
			return nil, errNotOwner
		}
		return nil, apierr.NotFound("message_not_found")
	}
	return msg, nil
}

func (cs *chatService) Edit(ctx context.Context, id uuid.UUID, in EditMessageInput) (*types.ChatMessage, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var out *types.ChatMessage
	err = inTx(cs.db, ctx, func(dbc dbctx.Context) error {
		if _, err := cs.own(dbc, c, id); err != nil {
			return err
		}
		if err := cs.messageRepo.UpdateContent(dbc, id, in.Content, nowUTC()); err != nil {
			return err
		}
		out, err = cs.messageRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	cs.emitBoth(ctx, out, realtime.SSEEventChatMessageUpdated, map[string]any{"message": out})
	return out, nil
}

func (cs *chatService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := callerFrom(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	msg, err := cs.own(dbc, c, id)
	if err != nil {
		return err
	}
	if err := cs.messageRepo.SoftDelete(dbc, id); err != nil {
		return err
	}
	cs.emitBoth(ctx, msg, realtime.SSEEventChatMessageDeleted, map[string]any{"message_id": msg.ID})
	return nil
}

// MarkRead stamps the peer's unread messages to the caller and tells the
// peer how many were read.
func (cs *chatService) MarkRead(ctx context.Context, peerID uuid.UUID) (int64, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return 0, err
	}
	n, err := cs.messageRepo.MarkRead(dbctx.Context{Ctx: ctx}, c.ID, peerID, nowUTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		payload := map[string]any{"reader_id": c.ID, "peer_id": peerID, "count": n}
		emit(ctx,
			realtime.SSEMessage{Channel: userChannel(peerID), Event: realtime.SSEEventChatMessagesRead, Data: payload},
			realtime.SSEMessage{Channel: userChannel(c.ID), Event: realtime.SSEEventChatMessagesRead, Data: payload},
		)
	}
	return n, nil
}

func (cs *chatService) emitBoth(ctx context.Context, msg *types.ChatMessage, event realtime.SSEEvent, data map[string]any) {
	msgs := []realtime.SSEMessage{{Channel: userChannel(msg.SenderID), Event: event, Data: data}}
	if msg.RecipientID != nil {
		msgs = append(msgs, realtime.SSEMessage{Channel: userChannel(*msg.RecipientID), Event: event, Data: data})
	}
	emit(ctx, msgs...)
}
