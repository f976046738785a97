package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nkov/comment-triage/internal/classifier"
	"github.com/nkov/comment-triage/internal/composer"
	"github.com/nkov/comment-triage/internal/crm"
	"github.com/nkov/comment-triage/internal/pipeline"
	"github.com/nkov/comment-triage/internal/server"
	"github.com/nkov/comment-triage/internal/storage"
	"github.com/nkov/comment-triage/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory history storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL history storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize classifier: keyword scoring locally, GPT when a key is set
	var clf classifier.Classifier
	if cfg.OpenAI.APIKey != "" {
		logger.Info("Using GPT classifier", zap.String("model", cfg.OpenAI.Model))
		clf = classifier.NewGPTClassifier(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			logger,
		)
	} else {
		logger.Info("Using local keyword classifier")
		clf = classifier.NewKeywordClassifier()
	}

	// Initialize CRM notifier; nil credentials disable it
	creds, err := crm.NewCredentials(cfg.GHL.APIKey, cfg.GHL.LocationID)
	if err != nil {
		logger.Fatal("Invalid CRM credentials", zap.Error(err))
	}
	if creds == nil {
		logger.Info("CRM integration disabled")
	}
	notifier := crm.NewClient(creds, logger,
		crm.WithBaseURL(cfg.GHL.BaseURL),
		crm.WithTimeout(time.Duration(cfg.GHL.TimeoutSeconds)*time.Second),
		crm.WithRateLimit(cfg.GHL.RateLimitRPS),
	)

	// Initialize pipeline and dashboard server
	metrics := pipeline.NewMetrics(prometheus.DefaultRegisterer)
	p := pipeline.New(clf, composer.New(), notifier, store, logger, metrics)
	handler := server.New(p, logger)

	logger.Info("Starting dashboard server", zap.String("addr", cfg.Server.Addr))
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
