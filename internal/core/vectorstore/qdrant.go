package vectorstore

import (
	"ai-concierge/config"
	"ai-concierge/pkg/logger"
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

type QdrantOptions struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Dimension  int
}

// QdrantStore keeps one point per chunk in a cosine collection with an
// unnamed vector.
type QdrantStore struct {
	client *qdrant.Client
	opts   QdrantOptions
}

func NewQdrantStore(opts QdrantOptions) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   opts.Host,
		Port:   opts.Port,
		APIKey: opts.APIKey,
		UseTLS: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &QdrantStore{client: client, opts: opts}, nil
}

func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.opts.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.opts.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.opts.Dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (s *QdrantStore) Insert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(records))
	for i, r := range records {
		if err := checkDimensions(s.opts.Dimension, r.Vector); err != nil {
			return fmt.Errorf("record %d: %w", r.ID, err)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(r.ID)),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"document_index": r.DocumentIndex,
				"chunk_index":    r.ChunkIndex,
				"content":        r.Content,
			}),
		}
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.opts.Collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, vector []float32, topK int, threshold float32) ([]Hit, error) {
	if topK <= 0 {
		topK = 2
	}
	if err := checkDimensions(s.opts.Dimension, vector); err != nil {
		return nil, err
	}
	start := time.Now()
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.opts.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		ScoreThreshold: qdrant.PtrOf(threshold),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.Error(err, "%v: qdrant search failed", config.ModuleQdrant)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}
	logger.Debug("%v: qdrant search done in %dms", config.ModuleQdrant, time.Since(start).Milliseconds())

	hits := make([]Hit, 0, len(results))
	for _, p := range results {
		payload := p.GetPayload()
		hits = append(hits, Hit{
			ID:            int64(p.GetId().GetNum()),
			Score:         p.GetScore(),
			DocumentIndex: int(payload["document_index"].GetIntegerValue()),
			ChunkIndex:    int(payload["chunk_index"].GetIntegerValue()),
			Content:       payload["content"].GetStringValue(),
		})
	}
	return filterHits(hits, threshold), nil
}

func (s *QdrantStore) Ping(ctx context.Context) error {
	reply, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if reply == nil || reply.GetTitle() == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}
