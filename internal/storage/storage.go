package storage

import (
	"context"

	"github.com/xaenox/cafe-bot/internal/models"
)

// Storage keeps chat transcripts. Transcripts are append-only.
type Storage interface {
	SaveMessage(ctx context.Context, msg *models.ChatMessage) error
	// GetMessages returns the last limit messages of a chat, oldest first.
	// A non-positive limit returns the whole transcript.
	GetMessages(ctx context.Context, chatID string, limit int) ([]*models.ChatMessage, error)
	DeleteChat(ctx context.Context, chatID string) error
	Close() error
}

// DatabaseConfig selects and configures a storage backend.
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)
