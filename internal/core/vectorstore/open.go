package vectorstore

import (
	"ai-concierge/config"
	"ai-concierge/pkg/logger"
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Options struct {
	Backend string
	Milvus  MilvusOptions
	Qdrant  QdrantOptions

	// connect retry; zero values use the defaults below
	InitialInterval   time.Duration
	MaxElapsedTime    time.Duration
	PerAttemptTimeout time.Duration
}

// OptionsFromConfig maps config.Cfg onto Options.
func OptionsFromConfig() Options {
	cfg := config.Cfg
	return Options{
		Backend: cfg.VectorStore.Backend,
		Milvus: MilvusOptions{
			Address:        cfg.Milvus.Address,
			Collection:     cfg.VectorStore.Collection,
			Dimension:      cfg.OpenAI.EmbeddingDimension,
			MetricType:     cfg.Milvus.IndexHNSWConfig.MetricType,
			M:              cfg.Milvus.IndexHNSWConfig.M,
			EfConstruction: cfg.Milvus.IndexHNSWConfig.EfConstruction,
			Ef:             cfg.Milvus.IndexHNSWConfig.Ef,
		},
		Qdrant: QdrantOptions{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			APIKey:     cfg.Qdrant.APIKey,
			UseTLS:     cfg.Qdrant.UseTLS,
			Collection: cfg.VectorStore.Collection,
			Dimension:  cfg.OpenAI.EmbeddingDimension,
		},
	}
}

// Open connects to the configured backend and ensures the collection,
// retrying with exponential backoff since Milvus can take tens of seconds
// to boot.
func Open(ctx context.Context, opts Options) (Store, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = orDefault(opts.InitialInterval, 500*time.Millisecond)
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = orDefault(opts.MaxElapsedTime, 60*time.Second)
	perAttempt := orDefault(opts.PerAttemptTimeout, 5*time.Second)

	var store Store
	attempt := 0
	operation := func() error {
		attempt++
		actx, cancel := context.WithTimeout(ctx, perAttempt)
		defer cancel()

		s, err := connect(actx, opts)
		if err != nil {
			if err == ErrUnknownBackend {
				return backoff.Permanent(err)
			}
			logger.WithFields(map[string]interface{}{
				"module":  config.ModuleVectorStore,
				"backend": opts.Backend,
				"attempt": attempt,
				"error":   err.Error(),
			}).Warn("vectorstore: connect failed, retrying")
			return err
		}
		if err := s.EnsureCollection(actx); err != nil {
			_ = s.Close()
			return err
		}
		store = s
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("open %s vector store: %w", opts.Backend, err)
	}
	logger.WithModule(config.ModuleVectorStore).WithField("backend", opts.Backend).Info("vectorstore: ready")
	return store, nil
}

func connect(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "milvus", "":
		return NewMilvusStore(ctx, opts.Milvus)
	case "qdrant":
		return NewQdrantStore(opts.Qdrant)
	default:
		return nil, ErrUnknownBackend
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
