package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/cafe-bot/internal/classifier"
	"github.com/xaenox/cafe-bot/internal/models"
	"github.com/xaenox/cafe-bot/internal/schedule"
	"github.com/xaenox/cafe-bot/internal/storage"
	"go.uber.org/zap"
)

// DefaultTypingDelay is how long the bot "types" before replying.
const DefaultTypingDelay = 1500 * time.Millisecond

// ErrEmptyMessage is returned for blank input, which is not sent.
var ErrEmptyMessage = errors.New("empty message")

// Conversation is one visitor's chat with the café bot. User messages are
// stored immediately; the bot's reply is stored after the typing delay on
// the owner's scheduler.
type Conversation struct {
	chatID    string
	responder classifier.Responder
	store     storage.Storage
	sched     *schedule.Scheduler
	delay     time.Duration
	logger    *zap.Logger

	startMu sync.Mutex

	mu      sync.Mutex
	pending int
}

func NewConversation(
	chatID string,
	responder classifier.Responder,
	store storage.Storage,
	sched *schedule.Scheduler,
	delay time.Duration,
	logger *zap.Logger,
) *Conversation {
	return &Conversation{
		chatID:    chatID,
		responder: responder,
		store:     store,
		sched:     sched,
		delay:     delay,
		logger:    logger.With(zap.String("chat_id", chatID)),
	}
}

func (c *Conversation) ChatID() string {
	return c.chatID
}

// Start seeds an empty transcript with the greeting and returns it.
func (c *Conversation) Start(ctx context.Context) (*models.ChatMessage, error) {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	existing, err := c.store.GetMessages(ctx, c.chatID, 1)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	if len(existing) > 0 {
		return nil, nil
	}

	greeting := c.newMessage(classifier.Greeting.Text, true, classifier.Greeting.Suggestions)
	if err := c.store.SaveMessage(ctx, greeting); err != nil {
		return nil, fmt.Errorf("save greeting: %w", err)
	}
	return greeting, nil
}

// Send appends the user's message and schedules the bot's reply. onReply,
// if set, is called with the reply once it has been stored. Blank input
// returns ErrEmptyMessage.
func (c *Conversation) Send(ctx context.Context, text string, onReply func(*models.ChatMessage)) (*models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	userMsg := c.newMessage(text, false, nil)
	if err := c.store.SaveMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	c.mu.Lock()
	c.pending++
	c.mu.Unlock()

	_, err := c.sched.After(c.delay, func() {
		defer c.done()

		resp := c.responder.Respond(text)
		reply := c.newMessage(resp.Text, true, resp.Suggestions)

		// The request that triggered the reply may be gone by now.
		if err := c.store.SaveMessage(context.Background(), reply); err != nil {
			c.logger.Error("Failed to save bot reply",
				zap.Error(err),
				zap.String("message_id", reply.ID))
			return
		}
		c.logger.Debug("Bot replied",
			zap.String("rule", resp.Rule),
			zap.String("message_id", reply.ID))

		if onReply != nil {
			onReply(reply)
		}
	})
	if err != nil {
		c.done()
		return userMsg, fmt.Errorf("schedule reply: %w", err)
	}

	return userMsg, nil
}

// Typing reports whether a reply is still pending.
func (c *Conversation) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// Transcript returns the last limit messages, oldest first.
func (c *Conversation) Transcript(ctx context.Context, limit int) ([]*models.ChatMessage, error) {
	msgs, err := c.store.GetMessages(ctx, c.chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	return msgs, nil
}

func (c *Conversation) done() {
	c.mu.Lock()
	c.pending--
	c.mu.Unlock()
}

func (c *Conversation) newMessage(text string, isBot bool, suggestions []string) *models.ChatMessage {
	return &models.ChatMessage{
		ID:          uuid.New().String(),
		ChatID:      c.chatID,
		Text:        text,
		IsBot:       isBot,
		Suggestions: suggestions,
		CreatedAt:   time.Now(),
	}
}
