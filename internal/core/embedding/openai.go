package embedding

import (
	"ai-concierge/config"
	"ai-concierge/pkg/logger"
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultBatchSize caps inputs per embeddings request.
const DefaultBatchSize = 100

// Embedder maps texts to vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
	BatchSize int
}

type openAIEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIEmbedder calls the OpenAI embeddings endpoint. Retries are disabled;
// every batch is attempted once.
type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	dimension int
	batchSize int
}

func NewOpenAIEmbedder(cfg Config) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing openai key")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIEmbedder{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		batchSize: cfg.BatchSize,
	}, nil
}

// Embed batches inputs and returns one vector per text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		j := min(i+e.batchSize, len(texts))
		batch := texts[i:j]
		logger.WithFields(map[string]interface{}{
			"module":      config.ModuleOpenAI,
			"model":       e.model,
			"batch_start": i,
			"batch_end":   j,
		}).Debug("openai: embedding batch start")

		vectors, err := e.embedBatch(ctx, batch)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"module":      config.ModuleOpenAI,
				"model":       e.model,
				"batch_start": i,
				"batch_end":   j,
				"error":       err,
			}).Errorf("openai: embedding batch failed")
			return nil, fmt.Errorf("embed batch %d-%d: %w", i, j, err)
		}
		all = append(all, vectors...)
	}
	return all, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	reqBody := openAIEmbeddingRequest{Model: e.model, Input: batch}
	var out openAIEmbeddingResponse
	if err := e.client.Post(ctx, "embeddings", reqBody, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, errors.New(out.Error.Message)
	}
	if len(out.Data) != len(batch) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(out.Data), len(batch))
	}

	vectors := make([][]float32, len(batch))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(batch) || vectors[d.Index] != nil {
			return nil, fmt.Errorf("unexpected embedding index %d", d.Index)
		}
		if e.dimension > 0 && len(d.Embedding) != e.dimension {
			return nil, fmt.Errorf("embedding dimension %d, want %d", len(d.Embedding), e.dimension)
		}
		vec := make([]float32, len(d.Embedding))
		for k, v := range d.Embedding {
			vec[k] = float32(v)
		}
		vectors[d.Index] = vec
	}
	return vectors, nil
}
