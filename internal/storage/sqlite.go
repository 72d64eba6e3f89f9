package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xaenox/cafe-bot/internal/models"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// SQLiteStorage keeps transcripts in a local SQLite file.
type SQLiteStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteStorage(dbPath string, logger *zap.Logger) (*SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS chat_messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			chat_id TEXT NOT NULL,
			text TEXT NOT NULL,
			is_bot INTEGER NOT NULL DEFAULT 0,
			suggestions TEXT NOT NULL DEFAULT '[]',
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create chat_messages table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_chat_messages_chat ON chat_messages(chat_id, seq)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create chat_messages index: %w", err)
	}

	logger.Info("SQLite storage ready", zap.String("path", dbPath))
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	suggestions := msg.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	encoded, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("failed to encode suggestions: %w", err)
	}

	isBot := 0
	if msg.IsBot {
		isBot = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, chat_id, text, is_bot, suggestions, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.ChatID, msg.Text, isBot, string(encoded), msg.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetMessages(ctx context.Context, chatID string, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chat_id, text, is_bot, suggestions, created_at FROM (
			SELECT seq, id, chat_id, text, is_bot, suggestions, created_at
			FROM chat_messages
			WHERE chat_id = ?
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []*models.ChatMessage
	for rows.Next() {
		var (
			msg         models.ChatMessage
			isBot       int
			suggestions string
			createdAt   int64
		)
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Text, &isBot, &suggestions, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.IsBot = isBot != 0
		msg.CreatedAt = time.Unix(0, createdAt)

		var list []string
		if err := json.Unmarshal([]byte(suggestions), &list); err != nil {
			s.logger.Warn("Dropping unreadable suggestions",
				zap.Error(err),
				zap.String("message_id", msg.ID))
		} else if len(list) > 0 {
			msg.Suggestions = list
		}
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return msgs, nil
}

func (s *SQLiteStorage) DeleteChat(ctx context.Context, chatID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
