package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/chat"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type ChatMessageRepo interface {
	Create(dbc dbctx.Context, msgs []*types.ChatMessage) ([]*types.ChatMessage, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ChatMessage, error)
	ListBetween(dbc dbctx.Context, a, b uuid.UUID, before *time.Time, limit int) ([]*types.ChatMessage, error)
	ListConversations(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Conversation, error)
	CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	MarkRead(dbc dbctx.Context, recipientID, senderID uuid.UUID, at time.Time) (int64, error)
	UpdateContent(dbc dbctx.Context, id uuid.UUID, content string, at time.Time) error
	SoftDelete(dbc dbctx.Context, id uuid.UUID) error
	ListAssistantThread(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ChatMessage, error)
	DeleteAssistantThread(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type chatMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	repoLog := baseLog.With("repo", "ChatMessageRepo")
	return &chatMessageRepo{db: db, log: repoLog}
}

func (cr *chatMessageRepo) Create(dbc dbctx.Context, msgs []*types.ChatMessage) ([]*types.ChatMessage, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(msgs) == 0 {
		return []*types.ChatMessage{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (cr *chatMessageRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ChatMessage, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	var row types.ChatMessage
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// ListBetween pages backwards from before and returns the page in ascending
// order.
func (cr *chatMessageRepo) ListBetween(dbc dbctx.Context, a, b uuid.UUID, before *time.Time, limit int) ([]*types.ChatMessage, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("kind = ?", chat.KindDirect).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a)
	if before != nil {
		q = q.Where("created_at < ?", before.UTC())
	}

	var results []*types.ChatMessage
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

type peerRow struct {
	PeerID uuid.UUID
}

type unreadRow struct {
	SenderID uuid.UUID
	Unread   int64
}

// ListConversations returns the caller's direct-chat peers, most recent first.
func (cr *chatMessageRepo) ListConversations(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Conversation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var peers []peerRow
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ChatMessage{}).
		Select("CASE WHEN sender_id = ? THEN recipient_id ELSE sender_id END AS peer_id", userID).
		Where("kind = ?", chat.KindDirect).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Group("peer_id").
		Order("MAX(created_at) DESC").
		Limit(limit).
		Scan(&peers).Error; err != nil {
		return nil, err
	}
	if len(peers) == 0 {
		return []*types.Conversation{}, nil
	}

	var unread []unreadRow
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ChatMessage{}).
		Select("sender_id, COUNT(*) AS unread").
		Where("kind = ? AND recipient_id = ? AND read_at IS NULL", chat.KindDirect, userID).
		Group("sender_id").
		Scan(&unread).Error; err != nil {
		return nil, err
	}
	unreadBy := make(map[uuid.UUID]int64, len(unread))
	for _, u := range unread {
		unreadBy[u.SenderID] = u.Unread
	}

	out := make([]*types.Conversation, 0, len(peers))
	for _, p := range peers {
		last, err := cr.ListBetween(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, userID, p.PeerID, nil, 1)
		if err != nil {
			return nil, err
		}
		conv := &types.Conversation{PeerID: p.PeerID, UnreadCount: unreadBy[p.PeerID]}
		if len(last) > 0 {
			conv.LastMessage = last[0]
		}
		out = append(out, conv)
	}
	return out, nil
}

func (cr *chatMessageRepo) CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ChatMessage{}).
		Where("kind = ? AND recipient_id = ? AND read_at IS NULL", chat.KindDirect, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead stamps every unread message from senderID to recipientID.
func (cr *chatMessageRepo) MarkRead(dbc dbctx.Context, recipientID, senderID uuid.UUID, at time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Model(&types.ChatMessage{}).
		Where("kind = ? AND recipient_id = ? AND sender_id = ? AND read_at IS NULL", chat.KindDirect, recipientID, senderID).
		Update("read_at", at.UTC())
	return res.RowsAffected, res.Error
}

func (cr *chatMessageRepo) UpdateContent(dbc dbctx.Context, id uuid.UUID, content string, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.ChatMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{"content": content, "edited_at": at.UTC()}).Error
}

func (cr *chatMessageRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.ChatMessage{}).Error
}

// ListAssistantThread returns the newest limit turns in ascending order.
func (cr *chatMessageRepo) ListAssistantThread(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ChatMessage, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var results []*types.ChatMessage
	if err := transaction.WithContext(dbc.Ctx).
		Where("kind = ? AND sender_id = ?", chat.KindAssistant, userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

func (cr *chatMessageRepo) DeleteAssistantThread(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = cr.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Where("kind = ? AND sender_id = ?", chat.KindAssistant, userID).
		Delete(&types.ChatMessage{})
	return res.RowsAffected, res.Error
}
