package ingest

import (
	"ai-concierge/internal/core/chunker"
	coreingest "ai-concierge/internal/core/ingest"
	"ai-concierge/internal/core/vectorstore"
	"ai-concierge/internal/resources"
	"ai-concierge/pkg/apperror/status"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCatalog struct {
	mu   sync.Mutex
	rows map[int64]chunker.Chunk
	runs []coreingest.Result
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{rows: map[int64]chunker.Chunk{}}
}

func (c *memoryCatalog) CountIngested(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.rows)), nil
}

func (c *memoryCatalog) InsertChunks(_ context.Context, chunks []chunker.Chunk, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, ch := range chunks {
		c.rows[ids[i]] = ch
	}
	return nil
}

func (c *memoryCatalog) Record(_ context.Context, res coreingest.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, res)
	return nil
}

func (c *memoryCatalog) LatestRun(context.Context) (*coreingest.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.runs) == 0 {
		return nil, nil
	}
	last := c.runs[len(c.runs)-1]
	return &last, nil
}

type constEmbedder struct{ err error }

func (e constEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type memoryStore struct {
	vectorstore.Store
	mu      sync.Mutex
	records []vectorstore.Record
	err     error
}

func (s *memoryStore) Insert(_ context.Context, records []vectorstore.Record) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func embeddedLines() int {
	n := 0
	for _, line := range strings.Split(string(resources.HotelCorpus), "\n") {
		if strings.TrimSpace(strings.TrimPrefix(line, "\uFEFF")) != "" {
			n++
		}
	}
	return n
}

func testSettings() Settings {
	return Settings{Source: "embedded", Splitter: chunker.DefaultOptions()}
}

func TestBootstrap_IngestsEmbeddedCorpusOnce(t *testing.T) {
	catalog := newMemoryCatalog()
	store := &memoryStore{}
	svc := NewService(catalog, constEmbedder{}, store, testSettings())

	first, err := svc.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, coreingest.StatusIngested, first.Status)
	assert.Equal(t, embeddedLines(), first.Documents)
	assert.Equal(t, first.Chunks, len(store.records))
	assert.Len(t, catalog.rows, first.Chunks)

	second, err := svc.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, coreingest.StatusSkipped, second.Status)
	assert.Equal(t, int64(first.Chunks), second.Existing)
	assert.Len(t, store.records, first.Chunks, "skipped run must not write")

	latest, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.RunID, latest.RunID)
}

func TestBootstrap_SinkFailureIsReported(t *testing.T) {
	catalog := newMemoryCatalog()
	boom := errors.New("embedding quota exceeded")
	svc := NewService(catalog, constEmbedder{err: boom}, &memoryStore{}, testSettings())

	res, err := svc.Bootstrap(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, status.IngestionFailed, status.CodeOf(err))
	assert.Equal(t, coreingest.StatusFailed, res.Status)
	assert.Empty(t, catalog.rows)
	require.NotEmpty(t, catalog.runs)
	assert.Equal(t, coreingest.StatusFailed, catalog.runs[len(catalog.runs)-1].Status)
}

func TestBootstrap_InvalidSource(t *testing.T) {
	settings := testSettings()
	settings.Source = "s3://bucket-only"
	svc := NewService(newMemoryCatalog(), constEmbedder{}, &memoryStore{}, settings)

	res, err := svc.Bootstrap(context.Background())

	require.Error(t, err)
	assert.Equal(t, coreingest.StatusFailed, res.Status)
}

func TestStatus_PendingThenPersisted(t *testing.T) {
	catalog := newMemoryCatalog()
	svc := NewService(catalog, constEmbedder{}, &memoryStore{}, testSettings())

	res, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, coreingest.StatusPending, res.Status)

	require.NoError(t, catalog.Record(context.Background(), coreingest.Result{RunID: "r-1", Status: coreingest.StatusIngested}))
	res, err = svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r-1", res.RunID)
}

func TestVectorSink_AssignsRecordIDs(t *testing.T) {
	catalog := newMemoryCatalog()
	store := &memoryStore{}
	sink := NewVectorSink(constEmbedder{}, store, catalog)

	err := sink.Accept(context.Background(), []chunker.Chunk{
		{DocumentIndex: 3, Index: 0, Content: "a"},
		{DocumentIndex: 3, Index: 1, Content: "b"},
	})

	require.NoError(t, err)
	require.Len(t, store.records, 2)
	assert.Equal(t, vectorstore.RecordID(3, 1), store.records[1].ID)
	assert.Contains(t, catalog.rows, vectorstore.RecordID(3, 0))
}

func TestVectorSink_StoreFailureSkipsCatalog(t *testing.T) {
	catalog := newMemoryCatalog()
	sink := NewVectorSink(constEmbedder{}, &memoryStore{err: errors.New("milvus down")}, catalog)

	err := sink.Accept(context.Background(), []chunker.Chunk{{DocumentIndex: 1, Content: "a"}})

	require.Error(t, err)
	assert.Empty(t, catalog.rows)
}

func TestTracker_ForwardsAndKeepsLast(t *testing.T) {
	catalog := newMemoryCatalog()
	tr := NewTracker(catalog)

	_, ok := tr.Last()
	assert.False(t, ok)

	require.NoError(t, tr.Record(context.Background(), coreingest.Result{RunID: "a", Status: coreingest.StatusRunning}))
	require.NoError(t, tr.Record(context.Background(), coreingest.Result{RunID: "a", Status: coreingest.StatusIngested}))

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, coreingest.StatusIngested, last.Status)
	assert.Len(t, catalog.runs, 2)
}
