// Package vectorstore persists chunk embeddings and answers similarity
// queries. Milvus and Qdrant backends share the Store contract.
package vectorstore

import (
	"context"
	"errors"
	"sort"
)

var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrUnknownBackend    = errors.New("unknown vector store backend")
)

// Record is one chunk ready for insertion.
type Record struct {
	ID            int64
	DocumentIndex int
	ChunkIndex    int
	Content       string
	Vector        []float32
}

// Hit is one similarity search result. Score is a similarity in which higher
// is closer, whatever the backend metric.
type Hit struct {
	ID            int64   `json:"id"`
	Score         float32 `json:"score"`
	DocumentIndex int     `json:"document_index"`
	ChunkIndex    int     `json:"chunk_index"`
	Content       string  `json:"content"`
}

type Store interface {
	// EnsureCollection creates and loads the collection when missing.
	EnsureCollection(ctx context.Context) error
	Insert(ctx context.Context, records []Record) error
	// Search returns at most topK hits whose score is >= threshold, best first.
	Search(ctx context.Context, vector []float32, topK int, threshold float32) ([]Hit, error)
	Ping(ctx context.Context) error
	Close() error
}

// RecordID derives a stable primary key from the document and chunk index.
func RecordID(documentIndex, chunkIndex int) int64 {
	return (int64(documentIndex) << 20) + int64(chunkIndex)
}

// Similarity converts a raw metric score into higher-is-closer form.
// COSINE and IP already are; an L2 distance d becomes 1/(1+d).
func Similarity(metric string, score float32) float32 {
	if metric == "L2" {
		if score < 0 {
			score = 0
		}
		return 1 / (1 + score)
	}
	return score
}

// filterHits drops hits under threshold and orders the rest best first.
func filterHits(hits []Hit, threshold float32) []Hit {
	out := hits[:0]
	for _, h := range hits {
		if h.Score >= threshold {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func checkDimensions(dim int, vectors ...[]float32) error {
	for _, v := range vectors {
		if len(v) != dim {
			return ErrDimensionMismatch
		}
	}
	return nil
}
