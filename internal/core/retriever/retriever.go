package retriever

import (
	"ai-concierge/config"
	"ai-concierge/internal/core/embedding"
	"ai-concierge/internal/core/vectorstore"
	"ai-concierge/pkg/apperror/status"
	"ai-concierge/pkg/logger"
	"context"
	"errors"
	"strings"
	"time"
)

var ErrEmptyQuestion = errors.New("question is empty")

type Retriever struct {
	embedder  embedding.Embedder
	store     vectorstore.Store
	topK      int
	threshold float32
}

// New builds a retriever returning at most topK hits with similarity >= threshold.
func New(embedder embedding.Embedder, store vectorstore.Store, topK int, threshold float64) *Retriever {
	if topK <= 0 {
		topK = 2
	}
	return &Retriever{
		embedder:  embedder,
		store:     store,
		topK:      topK,
		threshold: float32(threshold),
	}
}

func (r *Retriever) TopK() int { return r.topK }

// Search embeds question and returns the closest chunks with the configured top-K.
func (r *Retriever) Search(ctx context.Context, question string) ([]vectorstore.Hit, error) {
	return r.SearchTopK(ctx, question, r.topK)
}

// SearchTopK is Search with a per-call limit; topK <= 0 uses the configured one.
// Embedding failures carry status.EmbeddingFailed, store failures
// status.RetrievalFailed.
func (r *Retriever) SearchTopK(ctx context.Context, question string, topK int) ([]vectorstore.Hit, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if topK <= 0 {
		topK = r.topK
	}

	vecs, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		logger.Error(err, "%v: embed question failed", config.ModuleRetriever)
		return nil, status.New(status.EmbeddingFailed, err)
	}
	if len(vecs) == 0 {
		return nil, status.New(status.EmbeddingFailed, errors.New("no embedding returned"))
	}

	start := time.Now()
	hits, err := r.store.Search(ctx, vecs[0], topK, r.threshold)
	if err != nil {
		logger.Error(err, "%v: vector search failed", config.ModuleRetriever)
		return nil, status.New(status.RetrievalFailed, err)
	}
	logger.WithFields(map[string]interface{}{
		"module":  config.ModuleRetriever,
		"top_k":   topK,
		"hits":    len(hits),
		"elapsed": time.Since(start).Milliseconds(),
	}).Debug("retriever: search done")
	return hits, nil
}

// Contents returns hit contents in retrieval order.
func Contents(hits []vectorstore.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Content
	}
	return out
}
