package ingest

import (
	"ai-concierge/internal/core/chunker"
	"ai-concierge/internal/core/embedding"
	"ai-concierge/internal/core/vectorstore"
	"context"
	"fmt"
)

// CatalogWriter records stored chunks in the relational catalog.
type CatalogWriter interface {
	InsertChunks(ctx context.Context, chunks []chunker.Chunk, vectorIDs []int64) error
}

// VectorSink embeds a document's chunks, writes them to the vector store and
// then catalogs them. The catalog is written last so its row count only
// grows once vectors exist.
type VectorSink struct {
	embedder embedding.Embedder
	store    vectorstore.Store
	catalog  CatalogWriter
}

func NewVectorSink(embedder embedding.Embedder, store vectorstore.Store, catalog CatalogWriter) *VectorSink {
	return &VectorSink{embedder: embedder, store: store, catalog: catalog}
}

func (s *VectorSink) Accept(ctx context.Context, chunks []chunker.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	inputs := make([]string, len(chunks))
	for i, ch := range chunks {
		inputs[i] = ch.Content
	}

	vectors, err := s.embedder.Embed(ctx, inputs)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	records := make([]vectorstore.Record, len(chunks))
	ids := make([]int64, len(chunks))
	for i, ch := range chunks {
		ids[i] = vectorstore.RecordID(ch.DocumentIndex, ch.Index)
		records[i] = vectorstore.Record{
			ID:            ids[i],
			DocumentIndex: ch.DocumentIndex,
			ChunkIndex:    ch.Index,
			Content:       ch.Content,
			Vector:        vectors[i],
		}
	}
	if err := s.store.Insert(ctx, records); err != nil {
		return fmt.Errorf("vector insert: %w", err)
	}
	if err := s.catalog.InsertChunks(ctx, chunks, ids); err != nil {
		return fmt.Errorf("catalog insert: %w", err)
	}
	return nil
}
