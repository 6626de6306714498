package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KindDirect    = "direct"
	KindAssistant = "assistant"

	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is either a direct message between two profiles or one turn of
// a user's assistant thread. Assistant turns keep RecipientID nil and carry the
// thread owner as SenderID; Role tells the two sides apart.
type ChatMessage struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_chat_message_pair,priority:1" json:"sender_id"`
	RecipientID *uuid.UUID     `gorm:"type:uuid;index:idx_chat_message_pair,priority:2;index" json:"recipient_id,omitempty"`
	Kind        string         `gorm:"column:kind;not null;default:'direct';index" json:"kind"`
	Role        string         `gorm:"column:role;not null;default:'user'" json:"role"`
	Content     string         `gorm:"column:content;type:text;not null;default:''" json:"content"`
	ReadAt      *time.Time     `gorm:"column:read_at" json:"read_at,omitempty"`
	EditedAt    *time.Time     `gorm:"column:edited_at" json:"edited_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// Conversation summarizes the direct thread between the caller and one peer.
type Conversation struct {
	PeerID      uuid.UUID    `json:"peer_id"`
	LastMessage *ChatMessage `json:"last_message,omitempty"`
	UnreadCount int64        `json:"unread_count"`
}
