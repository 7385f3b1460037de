package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"studyreels/internal/ai"
	"studyreels/internal/metrics"
	"studyreels/internal/model"
)

const studyBuddyPrompt = "You are a friendly and encouraging study buddy. Your role is to help students understand their study materials, provide clear explanations, and make learning engaging. Keep responses concise but informative. Always maintain a supportive and positive tone."

var (
	ErrMessageEmpty   = errors.New("message content is empty")
	ErrMessageEnqueue = errors.New("message enqueue failed")
)

type ChatMessageReader interface {
	ListRecentByUserID(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error)
}

type AsyncMessagePublisher interface {
	Publish(ctx context.Context, messages []model.ChatMessage) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, userID string) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, userID string, messages []model.ChatMessage) error
	Invalidate(ctx context.Context, userID string) error
	IsDirty(ctx context.Context, userID string) (bool, error)
}

type ChatService struct {
	provider     ai.Provider
	messages     ChatMessageReader
	publisher    AsyncMessagePublisher
	historyCache HistoryCache
	maxContext   int
	log          logrus.FieldLogger
	now          func() time.Time
}

type SendMessageResult struct {
	Messages []model.ChatMessage `json:"messages"`
}

func NewChatService(
	provider ai.Provider,
	messages ChatMessageReader,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
	maxContext int,
	log logrus.FieldLogger,
) *ChatService {
	if maxContext <= 0 {
		maxContext = 10
	}
	return &ChatService{
		provider:     provider,
		messages:     messages,
		publisher:    publisher,
		historyCache: historyCache,
		maxContext:   maxContext,
		log:          log,
		now:          time.Now,
	}
}

// SendMessage answers one study-buddy turn. Both sides of the exchange are
// queued together, in one publish, only once the model has replied.
func (s *ChatService) SendMessage(ctx context.Context, userID, content string) (*SendMessageResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	if s.publisher == nil {
		return nil, ErrMessageEnqueue
	}

	history, err := s.History(ctx, userID, s.maxContext)
	if err != nil {
		return nil, err
	}
	prompt := make([]ai.ChatMessage, 0, len(history)+2)
	prompt = append(prompt, ai.ChatMessage{Role: ai.RoleSystem, Content: studyBuddyPrompt})
	for _, m := range history {
		prompt = append(prompt, ai.ChatMessage{Role: m.Role(), Content: m.Content})
	}
	prompt = append(prompt, ai.ChatMessage{Role: ai.RoleUser, Content: content})

	userMessage := model.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: s.now(),
	}

	start := time.Now()
	reply, err := s.provider.Complete(ctx, prompt)
	metrics.ObserveLLM(s.provider.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = "The model returned an empty response."
	}

	botMessage := model.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   reply,
		IsBot:     true,
		CreatedAt: s.now(),
	}
	if !botMessage.CreatedAt.After(userMessage.CreatedAt) {
		botMessage.CreatedAt = userMessage.CreatedAt.Add(time.Millisecond)
	}

	if s.historyCache != nil {
		if err := s.historyCache.Invalidate(ctx, userID); err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("invalidate chat history")
		}
	}
	exchange := []model.ChatMessage{userMessage, botMessage}
	if err := s.publisher.Publish(ctx, exchange); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("publish chat exchange")
		return nil, ErrMessageEnqueue
	}

	return &SendMessageResult{Messages: exchange}, nil
}

// History returns the most recent messages, oldest first. The cache holds
// the last maxContext messages and is trusted only while no write is in
// flight.
func (s *ChatService) History(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if limit <= 0 {
		limit = s.maxContext
	}
	fetch := max(limit, s.maxContext)
	cacheable := s.historyCache != nil && fetch == s.maxContext

	if cacheable {
		dirty, err := s.historyCache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, userID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messages.ListRecentByUserID(ctx, userID, fetch)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, userID, messages)
		}
	}
	return trimMessages(messages, limit), nil
}

func trimMessages(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
