package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/chat"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
	"github.com/yungbote/quidz-backend/internal/platform/openai"
)

const (
	DefaultAssistantHistory = 20
	DefaultAssistantPrompt  = "Du bist ein freundlicher Lernbegleiter in einem Coaching-Programm. " +
		"Antworte kurz, konkret und auf Deutsch, sofern der Teilnehmer nicht in einer anderen Sprache schreibt."
)

type AssistantMessageInput struct {
	Content string `json:"content" validate:"notblank,max=8000"`
}

type AssistantReply struct {
	OK         bool        `json:"ok"`
	MessageIDs []uuid.UUID `json:"message_ids"`
}

type AssistantService interface {
	Send(ctx context.Context, in AssistantMessageInput) (*AssistantReply, error)
	ListThread(ctx context.Context, limit int) ([]*types.ChatMessage, error)
	ClearThread(ctx context.Context) (int64, error)
}

type assistantService struct {
	db          *gorm.DB
	log         *logger.Logger
	messageRepo repos.ChatMessageRepo
	client      openai.Client
	prompt      string
	history     int
}

// NewAssistantService accepts a nil client; Send then reports
// feature_unavailable while the stored thread stays readable.
func NewAssistantService(
	db *gorm.DB,
	log *logger.Logger,
	messageRepo repos.ChatMessageRepo,
	client openai.Client,
	prompt string,
	history int,
) AssistantService {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultAssistantPrompt
	}
	if history <= 0 {
		history = DefaultAssistantHistory
	}
	return &assistantService{
		db:          db,
		log:         log.With("service", "AssistantService"),
		messageRepo: messageRepo,
		client:      client,
		prompt:      prompt,
		history:     history,
	}
}

// Send stores the user turn, replays the recent thread to the model and
// stores the reply. A failed model call keeps the user turn.
func (as *assistantService) Send(ctx context.Context, in AssistantMessageInput) (*AssistantReply, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if as.client == nil {
		return nil, errAssistantUnavailable
	}

	dbc := dbctx.Context{Ctx: ctx}
	now := nowUTC()
	question := &types.ChatMessage{
		ID:        uuid.New(),
		SenderID:  c.ID,
		Kind:      chat.KindAssistant,
		Role:      chat.RoleUser,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := as.messageRepo.Create(dbc, []*types.ChatMessage{question}); err != nil {
		return nil, err
	}

	thread, err := as.messageRepo.ListAssistantThread(dbc, c.ID, as.history)
	if err != nil {
		return nil, err
	}
	turns := make([]openai.Turn, 0, len(thread))
	for _, m := range thread {
		role := openai.RoleUser
		if m.Role == chat.RoleAssistant {
			role = openai.RoleAssistant
		}
		turns = append(turns, openai.Turn{Role: role, Content: m.Content})
	}

	text, err := as.client.GenerateReply(ctx, as.prompt, turns)
	if err != nil {
		as.log.Warn("assistant reply failed", "user_id", c.ID, "error", err)
		return nil, apierr.New(http.StatusBadGateway, "assistant_failed", err)
	}

	// Reply sorts after the question even on coarse clocks.
	at := nowUTC()
	if !at.After(now) {
		at = now.Add(time.Millisecond)
	}
	reply := &types.ChatMessage{
		ID:        uuid.New(),
		SenderID:  c.ID,
		Kind:      chat.KindAssistant,
		Role:      chat.RoleAssistant,
		Content:   text,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if _, err := as.messageRepo.Create(dbc, []*types.ChatMessage{reply}); err != nil {
		return nil, err
	}
	return &AssistantReply{OK: true, MessageIDs: []uuid.UUID{question.ID, reply.ID}}, nil
}

func (as *assistantService) ListThread(ctx context.Context, limit int) ([]*types.ChatMessage, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return as.messageRepo.ListAssistantThread(dbctx.Context{Ctx: ctx}, c.ID, limit)
}

func (as *assistantService) ClearThread(ctx context.Context) (int64, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return 0, err
	}
	return as.messageRepo.DeleteAssistantThread(dbctx.Context{Ctx: ctx}, c.ID)
}
