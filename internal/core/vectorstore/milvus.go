package vectorstore

import (
	"ai-concierge/config"
	"ai-concierge/pkg/logger"
	"context"
	"fmt"
	"time"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const milvusContentMaxLength = 65535

type MilvusOptions struct {
	Address        string
	Collection     string
	Dimension      int
	MetricType     string
	M              int
	EfConstruction int
	Ef             int
}

type MilvusStore struct {
	cli  milvusclient.Client
	opts MilvusOptions
}

// NewMilvusStore dials Milvus once; callers retry through Open.
func NewMilvusStore(ctx context.Context, opts MilvusOptions) (*MilvusStore, error) {
	cli, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: opts.Address})
	if err != nil {
		return nil, err
	}
	if opts.MetricType == "" {
		opts.MetricType = string(milvusentity.COSINE)
	}
	return &MilvusStore{cli: cli, opts: opts}, nil
}

func (s *MilvusStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.cli.HasCollection(ctx, s.opts.Collection)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.createCollection(ctx); err != nil {
			return err
		}
	}
	return s.cli.LoadCollection(ctx, s.opts.Collection, false)
}

func (s *MilvusStore) createCollection(ctx context.Context) error {
	schema := milvusentity.NewSchema().WithName(s.opts.Collection).WithDescription("hotel corpus chunks")
	// Primary key without AutoID; ids come from RecordID
	schema.WithField(milvusentity.NewField().WithName("id").WithDataType(milvusentity.FieldTypeInt64).WithIsPrimaryKey(true))
	schema.WithField(milvusentity.NewField().WithName("document_index").WithDataType(milvusentity.FieldTypeInt64))
	schema.WithField(milvusentity.NewField().WithName("chunk_index").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("content").WithDataType(milvusentity.FieldTypeVarChar).WithMaxLength(milvusContentMaxLength))
	schema.WithField(milvusentity.NewField().WithName("embedding").WithDataType(milvusentity.FieldTypeFloatVector).WithDim(int64(s.opts.Dimension)))

	if err := s.cli.CreateCollection(ctx, schema, 2); err != nil {
		return err
	}

	idx, err := milvusentity.NewIndexHNSW(milvusentity.MetricType(s.opts.MetricType), s.opts.M, s.opts.EfConstruction)
	if err != nil {
		return err
	}
	return s.cli.CreateIndex(ctx, s.opts.Collection, "embedding", idx, false)
}

func (s *MilvusStore) Insert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]int64, len(records))
	docs := make([]int64, len(records))
	chunkIdxs := make([]int32, len(records))
	contents := make([]string, len(records))
	vectors := make([][]float32, len(records))
	for i, r := range records {
		if err := checkDimensions(s.opts.Dimension, r.Vector); err != nil {
			return fmt.Errorf("record %d: %w", r.ID, err)
		}
		ids[i] = r.ID
		docs[i] = int64(r.DocumentIndex)
		chunkIdxs[i] = int32(r.ChunkIndex)
		contents[i] = truncateRunes(r.Content, milvusContentMaxLength/4)
		vectors[i] = r.Vector
	}

	_, err := s.cli.Insert(ctx, s.opts.Collection, "",
		milvusentity.NewColumnInt64("id", ids),
		milvusentity.NewColumnInt64("document_index", docs),
		milvusentity.NewColumnInt32("chunk_index", chunkIdxs),
		milvusentity.NewColumnVarChar("content", contents),
		milvusentity.NewColumnFloatVector("embedding", s.opts.Dimension, vectors),
	)
	if err != nil {
		return err
	}
	return s.cli.Flush(ctx, s.opts.Collection, false)
}

func (s *MilvusStore) Search(ctx context.Context, vector []float32, topK int, threshold float32) ([]Hit, error) {
	if topK <= 0 {
		topK = 2
	}
	if err := checkDimensions(s.opts.Dimension, vector); err != nil {
		return nil, err
	}
	searchParam, err := milvusentity.NewIndexHNSWSearchParam(max(s.opts.Ef, topK))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := s.cli.Search(
		ctx,
		s.opts.Collection,
		nil, // partitions
		"",
		[]string{"document_index", "chunk_index", "content"},
		[]milvusentity.Vector{milvusentity.FloatVector(vector)},
		"embedding",
		milvusentity.MetricType(s.opts.MetricType),
		topK,
		searchParam,
	)
	if err != nil {
		logger.Error(err, "%v: milvus search failed", config.ModuleMilvus)
		return nil, err
	}
	logger.Debug("%v: milvus search done in %dms", config.ModuleMilvus, time.Since(start).Milliseconds())

	if len(results) == 0 {
		return []Hit{}, nil
	}
	return filterHits(s.parseHits(results[0]), threshold), nil
}

func (s *MilvusStore) parseHits(it milvusclient.SearchResult) []Hit {
	hits := make([]Hit, 0, it.ResultCount)
	ids, _ := it.IDs.(*milvusentity.ColumnInt64)
	for i := 0; i < it.ResultCount; i++ {
		var h Hit
		if ids != nil {
			h.ID = ids.Data()[i]
		}
		h.Score = Similarity(s.opts.MetricType, it.Scores[i])

		for _, field := range it.Fields {
			switch col := field.(type) {
			case *milvusentity.ColumnInt64:
				if col.Name() == "document_index" {
					h.DocumentIndex = int(col.Data()[i])
				}
			case *milvusentity.ColumnInt32:
				if col.Name() == "chunk_index" {
					h.ChunkIndex = int(col.Data()[i])
				}
			case *milvusentity.ColumnVarChar:
				if col.Name() == "content" {
					h.Content = col.Data()[i]
				}
			}
		}
		hits = append(hits, h)
	}
	return hits
}

func (s *MilvusStore) Ping(ctx context.Context) error {
	_, err := s.cli.HasCollection(ctx, s.opts.Collection)
	return err
}

func (s *MilvusStore) Close() error {
	return s.cli.Close()
}

// truncateRunes keeps VarChar payloads under the byte limit for any UTF-8 text.
func truncateRunes(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes])
}
