package storage

import (
	"context"
	"sync"

	"github.com/xaenox/cafe-bot/internal/models"
)

type MemoryStorage struct {
	mu    sync.RWMutex
	chats map[string][]*models.ChatMessage
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		chats: make(map[string][]*models.ChatMessage),
	}
}

func (s *MemoryStorage) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chats[msg.ChatID] = append(s.chats[msg.ChatID], copyMessage(msg))
	return nil
}

func (s *MemoryStorage) GetMessages(ctx context.Context, chatID string, limit int) ([]*models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.chats[chatID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]*models.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = copyMessage(m)
	}
	return out, nil
}

func (s *MemoryStorage) DeleteChat(ctx context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.chats, chatID)
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

func copyMessage(m *models.ChatMessage) *models.ChatMessage {
	c := *m
	if m.Suggestions != nil {
		c.Suggestions = append([]string(nil), m.Suggestions...)
	}
	return &c
}
