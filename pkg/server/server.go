// Package server composes the onboarding backend: store, document store,
// policy library, chat pipeline, and the HTTP router. It is the single
// entry point main.go uses, and it keeps the wiring testable.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sumerudigitals/onboard/internal/api"
	"github.com/sumerudigitals/onboard/internal/api/handlers"
	"github.com/sumerudigitals/onboard/internal/chat"
	"github.com/sumerudigitals/onboard/internal/config"
	"github.com/sumerudigitals/onboard/internal/docstore"
	"github.com/sumerudigitals/onboard/internal/grounding"
	"github.com/sumerudigitals/onboard/internal/llm"
	"github.com/sumerudigitals/onboard/internal/policy"
	"github.com/sumerudigitals/onboard/internal/prompt"
	"github.com/sumerudigitals/onboard/internal/store"
	"github.com/sumerudigitals/onboard/internal/telemetry"
)

// Server holds the initialized onboarding backend.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the data store (PostgreSQL or in-memory).
	Store store.Store

	// Policies is the policy text library; closed on shutdown to stop
	// its filesystem watcher.
	Policies *policy.Library

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the backend with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	dataStore, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	docs, err := newDocStore(cfg)
	if err != nil {
		return nil, err
	}

	policies := policy.NewLibrary(cfg.Chat.PolicyDir)

	tracker := grounding.NewTracker(dataStore, docs)
	builder := prompt.NewBuilder(policies, tracker)
	invoker := llm.NewInvoker(cfg.Chat.OllamaEndpoint, cfg.Chat.Models, cfg.Chat.ModelTimeout)

	cache, err := newCache(cfg)
	if err != nil {
		return nil, err
	}

	pipeline := chat.NewPipeline(tracker, builder, invoker, cache)
	log.Info().Strs("models", cfg.Chat.Models).Msg("Chat pipeline initialized")

	h := handlers.New(dataStore, tracker, pipeline)
	router := api.NewRouter(cfg, h)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Policies:     policies,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

// newStore picks PostgreSQL when DATABASE_URL is set, else in-memory.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		log.Info().Msg("PostgreSQL store initialized")
		return pg, nil
	}

	log.Info().Msg("In-memory store initialized")
	return store.NewMemoryStore(), nil
}

// newDocStore picks the object store when an S3 endpoint is configured,
// else the local upload directory.
func newDocStore(cfg *config.Config) (docstore.Store, error) {
	if cfg.Documents.S3Endpoint != "" {
		s3, err := docstore.NewS3Store(docstore.S3Config{
			Endpoint:  cfg.Documents.S3Endpoint,
			AccessKey: cfg.Documents.S3AccessKey,
			SecretKey: cfg.Documents.S3SecretKey,
			Bucket:    cfg.Documents.S3Bucket,
			UseSSL:    cfg.Documents.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 document store: %w", err)
		}
		log.Info().Str("bucket", cfg.Documents.S3Bucket).Msg("S3 document store initialized")
		return s3, nil
	}

	log.Info().Str("dir", cfg.Documents.UploadDir).Msg("Local document store initialized")
	return docstore.NewLocalStore(cfg.Documents.UploadDir), nil
}

func newCache(cfg *config.Config) (*chat.Cache, error) {
	if cfg.Chat.CacheSize > 0 {
		backing, err := chat.NewLRUBacking(cfg.Chat.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("init response cache: %w", err)
		}
		return chat.NewCache(backing), nil
	}
	return chat.NewCache(chat.NewMapBacking()), nil
}
