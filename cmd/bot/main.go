package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/xaenox/cafe-bot/internal/bot"
	"github.com/xaenox/cafe-bot/internal/business"
	"github.com/xaenox/cafe-bot/internal/classifier"
	"github.com/xaenox/cafe-bot/internal/httpapi"
	"github.com/xaenox/cafe-bot/internal/loyalty"
	"github.com/xaenox/cafe-bot/internal/session"
	"github.com/xaenox/cafe-bot/internal/storage"
	"github.com/xaenox/cafe-bot/pkg/config"
	"go.uber.org/zap"

	_ "time/tzdata"
)

func main() {
	configPath := "config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		zap.NewExample().Fatal("Failed to load config", zap.Error(err), zap.String("path", configPath))
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Log.Development {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, err := storage.Open(storage.DatabaseConfig{
		Driver:     cfg.Database.Driver,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		DBName:     cfg.Database.DBName,
		SSLMode:    cfg.Database.SSLMode,
		SQLitePath: cfg.Database.SQLitePath,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	sessions := session.NewManager(
		classifier.NewKeywordResponder(classifier.DefaultRules),
		store,
		loyalty.NewWheel(nil, cfg.Loyalty.SpinDelay),
		session.Options{
			TypingDelay:    cfg.Chat.TypingDelay,
			StartingPoints: cfg.Loyalty.StartingPoints,
			IdleTimeout:    cfg.Session.IdleTimeout,
			MaxVisitors:    cfg.Session.MaxVisitors,
		},
		logger,
	)
	defer sessions.Close()
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	panel := business.NewPanel(cfg.Location())

	var wg sync.WaitGroup

	if cfg.HTTP.Enabled {
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpapi.NewServer(sessions, panel, logger).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("HTTP API listening", zap.String("addr", cfg.HTTP.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", zap.Error(err))
				stop()
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.Telegram.Enabled {
		b, err := bot.New(cfg.Telegram.Token, cfg.Telegram.Debug, sessions, panel, logger)
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Start(ctx); err != nil {
				logger.Error("Bot error", zap.Error(err))
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down")
	wg.Wait()
}
