// Package app wires configuration into the concrete services shared by the
// HTTP server and the ingest CLI.
package app

import (
	"ai-concierge/config"
	"ai-concierge/internal/core/chat"
	"ai-concierge/internal/core/embedding"
	"ai-concierge/internal/core/hotel"
	"ai-concierge/internal/core/retriever"
	"ai-concierge/internal/core/roster"
	"ai-concierge/internal/core/vectorstore"
	"ai-concierge/internal/database"
	"ai-concierge/internal/database/model"
	ingestsvc "ai-concierge/internal/services/ingest"
	"context"
	"fmt"
	"time"
)

type App struct {
	Store     vectorstore.Store
	Retriever *retriever.Retriever
	Roster    *roster.Service
	Hotel     *hotel.Service
	Ingest    *ingestsvc.Service
	Timeout   time.Duration
}

// Build connects MySQL and the vector store and assembles every service.
func Build(ctx context.Context) (*App, error) {
	cfg := config.Cfg

	if err := database.Migrate(ctx, &model.HotelStore{}, &model.IngestionRun{}); err != nil {
		return nil, fmt.Errorf("%v: migrate: %w", config.ModuleDatabase, err)
	}

	embedder, err := embedding.NewOpenAIEmbedder(embedding.Config{
		APIKey:    cfg.OpenAI.Key,
		BaseURL:   cfg.OpenAI.BaseURL,
		Model:     cfg.OpenAI.EmbeddingModel,
		Dimension: cfg.OpenAI.EmbeddingDimension,
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", config.ModuleOpenAI, err)
	}
	chatClient, err := chat.NewOpenAIClient(chat.ConfigFromSettings())
	if err != nil {
		return nil, fmt.Errorf("%v: %w", config.ModuleOpenAI, err)
	}

	store, err := vectorstore.Open(ctx, vectorstore.OptionsFromConfig())
	if err != nil {
		return nil, err
	}

	r := retriever.New(embedder, store, cfg.Retriever.TopK, cfg.Retriever.SimilarityThreshold)
	return &App{
		Store:     store,
		Retriever: r,
		Roster:    roster.NewService(chatClient, roster.PromptsFromConfig()),
		Hotel:     hotel.NewService(r, chatClient, hotel.PromptsFromConfig()),
		Ingest:    ingestsvc.NewService(ingestsvc.NewRepository(), embedder, store, ingestsvc.SettingsFromConfig()),
		Timeout:   time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
	}, nil
}

func (a *App) Close() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
}
