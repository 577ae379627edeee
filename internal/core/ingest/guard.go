package ingest

import (
	"ai-concierge/config"
	"ai-concierge/internal/core/chunker"
	"ai-concierge/pkg/logger"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultPause is the gap kept after every sink submission to stay under
// embedding rate limits.
const DefaultPause = 200 * time.Millisecond

type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusIngested Status = "ingested"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Result describes one bootstrap run.
type Result struct {
	RunID      string    `json:"run_id"`
	Status     Status    `json:"status"`
	Source     string    `json:"source"`
	Existing   int64     `json:"existing"`
	Documents  int       `json:"documents"`
	Chunks     int       `json:"chunks"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Counter reports how many records the persistent store already holds.
type Counter interface {
	CountIngested(ctx context.Context) (int64, error)
}

// Sink embeds and persists the chunks of one document.
type Sink interface {
	Accept(ctx context.Context, chunks []chunker.Chunk) error
}

type Splitter interface {
	Split(doc chunker.Document) []chunker.Chunk
}

// Recorder persists run state transitions. Failures are logged, never fatal.
type Recorder interface {
	Record(ctx context.Context, res Result) error
}

// Guard loads the corpus into the sink once: if the store is empty it reads
// the source line by line, splits every line and hands each line's chunks to
// the sink, waiting pause after each submission returns. A non-empty store is left
// untouched. Read and sink failures abort the run without rollback.
type Guard struct {
	counter  Counter
	source   Source
	splitter Splitter
	sink     Sink
	recorder Recorder
	pause    time.Duration
}

type Option func(*Guard)

func WithRecorder(r Recorder) Option {
	return func(g *Guard) { g.recorder = r }
}

// WithPause overrides DefaultPause; zero or negative disables pacing.
func WithPause(d time.Duration) Option {
	return func(g *Guard) { g.pause = d }
}

func NewGuard(counter Counter, source Source, splitter Splitter, sink Sink, opts ...Option) *Guard {
	g := &Guard{
		counter:  counter,
		source:   source,
		splitter: splitter,
		sink:     sink,
		pause:    DefaultPause,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run executes the bootstrap. The returned Result is always populated; err is
// non-nil only when Status is StatusFailed.
func (g *Guard) Run(ctx context.Context) (Result, error) {
	res := Result{
		RunID:     uuid.NewString(),
		Status:    StatusRunning,
		Source:    g.source.Name(),
		StartedAt: time.Now(),
	}
	log := logger.WithFields(logrus.Fields{
		"module": config.ModuleIngest,
		"run_id": res.RunID,
		"source": res.Source,
	})

	count, err := g.counter.CountIngested(ctx)
	if err != nil {
		return g.fail(ctx, log, res, fmt.Errorf("count ingested records: %w", err))
	}
	if count > 0 {
		res.Existing = count
		res.Status = StatusSkipped
		res.FinishedAt = time.Now()
		log.WithField("existing", count).Info("ingest: store already populated; skip")
		g.record(ctx, log, res)
		return res, nil
	}

	g.record(ctx, log, res)
	log.Info("ingest: start")

	rc, err := g.source.Open(ctx)
	if err != nil {
		return g.fail(ctx, log, res, fmt.Errorf("open source %s: %w", res.Source, err))
	}
	defer rc.Close()

	var lastDone time.Time
	err = ScanDocuments(rc, func(doc chunker.Document) error {
		chunks := g.splitter.Split(doc)
		if len(chunks) == 0 {
			return nil
		}
		if err := g.wait(ctx, lastDone); err != nil {
			return err
		}
		err := g.sink.Accept(ctx, chunks)
		lastDone = time.Now()
		if err != nil {
			return fmt.Errorf("submit document %d: %w", doc.Index, err)
		}
		res.Documents++
		res.Chunks += len(chunks)
		log.WithFields(logrus.Fields{
			"document": doc.Index,
			"chunks":   len(chunks),
		}).Debug("ingest: document stored")
		return nil
	})
	if err != nil {
		return g.fail(ctx, log, res, err)
	}

	res.Status = StatusIngested
	res.FinishedAt = time.Now()
	log.WithFields(logrus.Fields{
		"documents": res.Documents,
		"chunks":    res.Chunks,
		"duration":  res.FinishedAt.Sub(res.StartedAt).String(),
	}).Info("ingest: embedding complete")
	g.record(ctx, log, res)
	return res, nil
}

// wait blocks until pause has passed since the previous submission finished.
// The last submission is not followed by a wait.
func (g *Guard) wait(ctx context.Context, lastDone time.Time) error {
	if g.pause <= 0 || lastDone.IsZero() {
		return nil
	}
	d := time.Until(lastDone.Add(g.pause))
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (g *Guard) fail(ctx context.Context, log *logrus.Entry, res Result, err error) (Result, error) {
	res.Status = StatusFailed
	res.Error = err.Error()
	res.FinishedAt = time.Now()
	log.WithFields(logrus.Fields{
		"documents": res.Documents,
		"chunks":    res.Chunks,
		"error":     err.Error(),
	}).Error("ingest: aborted")
	g.record(context.WithoutCancel(ctx), log, res)
	return res, err
}

func (g *Guard) record(ctx context.Context, log *logrus.Entry, res Result) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.Record(ctx, res); err != nil {
		log.WithField("error", err.Error()).Warn("ingest: record run state failed")
	}
}
