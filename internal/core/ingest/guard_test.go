package ingest

import (
	"ai-concierge/internal/core/chunker"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is both the counter and the sink, like the real catalog.
type memoryStore struct {
	mu      sync.Mutex
	batches [][]chunker.Chunk
	failOn  int // 1-based submission that fails; 0 never
	calls   int
	times   []time.Time
}

func (m *memoryStore) CountIngested(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return int64(n), nil
}

func (m *memoryStore) Accept(_ context.Context, chunks []chunker.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.times = append(m.times, time.Now())
	if m.failOn == m.calls {
		return errors.New("vector store unavailable")
	}
	m.batches = append(m.batches, chunks)
	return nil
}

type sequenceCounter struct {
	counts []int64
	calls  int
	err    error
}

func (s *sequenceCounter) CountIngested(context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	c := s.counts[min(s.calls, len(s.counts)-1)]
	s.calls++
	return c, nil
}

type recorderSpy struct {
	results []Result
}

func (r *recorderSpy) Record(_ context.Context, res Result) error {
	r.results = append(r.results, res)
	return nil
}

type failingSource struct{ opened bool }

func (f *failingSource) Name() string { return "broken" }
func (f *failingSource) Open(context.Context) (io.ReadCloser, error) {
	f.opened = true
	return nil, errors.New("no such file")
}

const corpus = "체크인은 오후 3시입니다.\n조식은 오전 7시부터입니다.\n\n수영장은 지하 1층입니다.\n"

func newSplitter() *chunker.TokenSplitter {
	return chunker.NewTokenSplitter(chunker.DefaultOptions(), nil)
}

func TestGuard_IngestsEmptyStoreOnce(t *testing.T) {
	store := &memoryStore{}
	src := BytesSource{Label: "test", Data: []byte(corpus)}

	g := NewGuard(store, src, newSplitter(), store, WithPause(0))

	res, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusIngested, res.Status)
	assert.Equal(t, 3, res.Documents)
	assert.Equal(t, 3, res.Chunks)
	require.Len(t, store.batches, 3)
	assert.Equal(t, 1, store.batches[0][0].DocumentIndex)
	assert.Equal(t, 4, store.batches[2][0].DocumentIndex)

	again, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, again.Status)
	assert.Equal(t, int64(3), again.Existing)
	assert.Equal(t, 3, store.calls, "second run must not write")
}

func TestGuard_CountSequenceZeroThenPopulated(t *testing.T) {
	counter := &sequenceCounter{counts: []int64{0, 42}}
	sink := &memoryStore{}
	src := BytesSource{Label: "test", Data: []byte(corpus)}
	g := NewGuard(counter, src, newSplitter(), sink, WithPause(0))

	first, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusIngested, first.Status)

	second, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, second.Status)
	assert.Equal(t, int64(42), second.Existing)
	assert.Len(t, sink.batches, 3)
}

func TestGuard_PacesSubmissions(t *testing.T) {
	const pause = 20 * time.Millisecond
	store := &memoryStore{}
	src := BytesSource{Label: "test", Data: []byte("a one\nb two\nc three\nd four\n")}
	g := NewGuard(store, src, newSplitter(), store, WithPause(pause))

	start := time.Now()
	res, err := g.Run(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, 4, res.Documents)
	assert.GreaterOrEqual(t, elapsed, 3*pause)
	for i := 1; i < len(store.times); i++ {
		assert.GreaterOrEqual(t, store.times[i].Sub(store.times[i-1]), pause-time.Millisecond)
	}
}

// slowSink spends delay inside every submission and records when each one
// started and finished.
type slowSink struct {
	delay  time.Duration
	starts []time.Time
	ends   []time.Time
}

func (s *slowSink) Accept(context.Context, []chunker.Chunk) error {
	s.starts = append(s.starts, time.Now())
	time.Sleep(s.delay)
	s.ends = append(s.ends, time.Now())
	return nil
}

func TestGuard_PauseFollowsSlowSubmission(t *testing.T) {
	const pause = 60 * time.Millisecond
	sink := &slowSink{delay: 45 * time.Millisecond}
	src := BytesSource{Label: "test", Data: []byte("a one\nb two\nc three\n")}
	g := NewGuard(&sequenceCounter{counts: []int64{0}}, src, newSplitter(), sink, WithPause(pause))

	res, err := g.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 3, res.Documents)
	require.Len(t, sink.starts, 3)
	for i := 1; i < len(sink.starts); i++ {
		gap := sink.starts[i].Sub(sink.ends[i-1])
		assert.GreaterOrEqual(t, gap, pause-time.Millisecond, "gap after submission %d", i)
	}
}

func TestGuard_SinkFailureAborts(t *testing.T) {
	store := &memoryStore{failOn: 2}
	spy := &recorderSpy{}
	src := BytesSource{Label: "test", Data: []byte(corpus)}
	g := NewGuard(store, src, newSplitter(), store, WithPause(0), WithRecorder(spy))

	res, err := g.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit document 2")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 1, res.Documents, "first document stays stored")
	assert.Equal(t, 2, store.calls, "no retry after failure")

	require.Len(t, spy.results, 2)
	assert.Equal(t, StatusRunning, spy.results[0].Status)
	assert.Equal(t, StatusFailed, spy.results[1].Status)
	assert.Equal(t, spy.results[0].RunID, spy.results[1].RunID)
}

func TestGuard_ReadFailureAborts(t *testing.T) {
	store := &memoryStore{}
	r := io.MultiReader(strings.NewReader("first line\n"), iotest.ErrReader(errors.New("disk error")))
	src := readerSource{r: r}
	g := NewGuard(store, src, newSplitter(), store, WithPause(0))

	res, err := g.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk error")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 1, store.calls)
}

func TestGuard_OpenFailure(t *testing.T) {
	store := &memoryStore{}
	src := &failingSource{}
	g := NewGuard(store, src, newSplitter(), store)

	res, err := g.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Error, "open source broken")
	assert.Zero(t, store.calls)
}

func TestGuard_CountFailureSkipsSource(t *testing.T) {
	counter := &sequenceCounter{err: errors.New("table missing")}
	src := &failingSource{}
	g := NewGuard(counter, src, newSplitter(), &memoryStore{})

	res, err := g.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.False(t, src.opened)
}

func TestGuard_SkippedRunIsRecorded(t *testing.T) {
	spy := &recorderSpy{}
	g := NewGuard(&sequenceCounter{counts: []int64{5}}, &failingSource{}, newSplitter(), &memoryStore{}, WithRecorder(spy))

	res, err := g.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, res.Status)
	require.Len(t, spy.results, 1)
	assert.Equal(t, StatusSkipped, spy.results[0].Status)
}

func TestGuard_CancelledWhileWaiting(t *testing.T) {
	store := &memoryStore{}
	src := BytesSource{Label: "test", Data: []byte("a\nb\nc\n")}
	g := NewGuard(store, src, newSplitter(), store, WithPause(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res, err := g.Run(ctx)

	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 1, store.calls)
}

type readerSource struct{ r io.Reader }

func (s readerSource) Name() string { return "reader" }
func (s readerSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(s.r), nil
}
