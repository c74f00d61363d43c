package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reportes/backend/internal/analysis"
	"reportes/backend/internal/api/handler"
	"reportes/backend/internal/config"
	"reportes/backend/internal/lexicon"
	"reportes/backend/internal/lifecycle"
	"reportes/backend/internal/localization"
	"reportes/backend/internal/metrics"
	"reportes/backend/internal/reporthub"
	"reportes/backend/internal/routing"
	"reportes/backend/internal/storage"
	"reportes/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func setupDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, *redis.Client, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, nil, err
	}
	if err := storage.Migrate(db); err != nil {
		return nil, nil, err
	}

	// Redis is optional: without it entity lookups are uncached and events
	// stay in this process.
	if cfg.Redis.Addr == "" {
		logger.Warn("REDIS_ADDR not set; running without cache and shared event bus")
		return db, nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	logger.Info("Database and Redis connections established, migrations complete")
	return db, rdb, nil
}

func loadLexicon(path string) (*lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default()
	}
	return lexicon.LoadFile(path)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, rdb, err := setupDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to set up dependencies", zap.Error(err))
	}
	s := storage.NewStorageService(db, rdb, logger, cfg.EntityCacheTTL)

	lex, err := loadLexicon(cfg.LexiconPath)
	if err != nil {
		logger.Fatal("Failed to load lexicon", zap.String("path", cfg.LexiconPath), zap.Error(err))
	}
	logger.Info("Lexicon loaded", zap.Int("entities", lex.Len()), zap.String("fallback", lex.Fallback()))

	router := routing.NewRouter(analysis.NewClassifier(lex), cfg.ClassifyDelay)

	guard := lifecycle.AllowAll
	if cfg.StrictTransitions {
		guard = lifecycle.Strict
	}
	machine := lifecycle.NewMachine(guard)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hub := reporthub.NewManagerService(s, logger)
	go hub.Run(ctx)

	var notifier *telegram.Notifier
	if cfg.TelegramBotToken != "" {
		localizer, err := localization.NewDefaultLocalizer()
		if err != nil {
			logger.Fatal("Failed to load translations", zap.Error(err))
		}
		bot, err := telegram.NewBotService(cfg.TelegramBotToken, localizer, cfg.DefaultLang, logger)
		if err != nil {
			logger.Fatal("Failed to start Telegram bot", zap.Error(err))
		}
		notifier = telegram.NewNotifier(bot.BotAPI, s, localizer, cfg.DefaultLang, logger)
		if err := hub.Register(ctx, notifier); err != nil {
			logger.Fatal("Failed to register Telegram notifier", zap.Error(err))
		}
		notifier.Run()
		go bot.Run(ctx)
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set; entity notifications disabled")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handler.NewHandler(s, router, machine, hub, m, logger, cfg.JWTSecret)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        handler.NewEngine(h, reg),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	// The hub closes the notifier on shutdown; let it flush queued messages.
	if notifier != nil {
		select {
		case <-notifier.Done():
		case <-shutdownCtx.Done():
			logger.Warn("Telegram notifier did not flush before shutdown deadline")
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
