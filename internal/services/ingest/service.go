package ingest

import (
	"ai-concierge/config"
	"ai-concierge/internal/core/chunker"
	"ai-concierge/internal/core/embedding"
	coreingest "ai-concierge/internal/core/ingest"
	"ai-concierge/internal/core/vectorstore"
	"ai-concierge/internal/resources"
	"ai-concierge/pkg/apperror/status"
	"ai-concierge/pkg/logger"
	"ai-concierge/pkg/s3"
	"context"
	"time"
)

// Catalog is the persistent side of ingestion; *Repository implements it.
type Catalog interface {
	coreingest.Counter
	coreingest.Recorder
	CatalogWriter
	LatestRun(ctx context.Context) (*coreingest.Result, error)
}

type Settings struct {
	Source   string
	Splitter chunker.Options
	Pause    time.Duration
}

// SettingsFromConfig reads the ingest section of config.Cfg.
func SettingsFromConfig() Settings {
	c := config.Cfg.Ingest
	return Settings{
		Source: c.Source,
		Splitter: chunker.Options{
			ChunkTokens:       c.ChunkTokens,
			OverlapTokens:     c.ChunkOverlap,
			MinChunkTokens:    c.MinChunkTokens,
			MaxChunks:         c.MaxChunks,
			RespectBoundaries: c.RespectBoundaries,
		},
		Pause: time.Duration(c.PauseMillis) * time.Millisecond,
	}
}

type Service struct {
	catalog  Catalog
	sink     coreingest.Sink
	tracker  *Tracker
	settings Settings
	newS3    func() (coreingest.ObjectGetter, error)
}

func NewService(catalog Catalog, embedder embedding.Embedder, store vectorstore.Store, settings Settings) *Service {
	return &Service{
		catalog:  catalog,
		sink:     NewVectorSink(embedder, store, catalog),
		tracker:  NewTracker(catalog),
		settings: settings,
		newS3: func() (coreingest.ObjectGetter, error) {
			return s3.GetClient(context.Background())
		},
	}
}

// Bootstrap loads the configured corpus unless the catalog already holds it.
func (s *Service) Bootstrap(ctx context.Context) (coreingest.Result, error) {
	source, err := coreingest.NewSource(s.settings.Source, resources.HotelCorpus, s.newS3)
	if err != nil {
		logger.Error(err, "%v: resolve source %q failed", config.ModuleIngest, s.settings.Source)
		return coreingest.Result{Status: coreingest.StatusFailed, Source: s.settings.Source, Error: err.Error()}, status.New(status.IngestionFailed, err)
	}

	guard := coreingest.NewGuard(
		s.catalog,
		source,
		chunker.NewTokenSplitter(s.settings.Splitter, nil),
		s.sink,
		coreingest.WithRecorder(s.tracker),
		coreingest.WithPause(s.settings.Pause),
	)
	res, err := guard.Run(ctx)
	return res, status.New(status.IngestionFailed, err)
}

// Status reports the latest run: this process first, then the runs table.
// With neither, the status is pending.
func (s *Service) Status(ctx context.Context) (coreingest.Result, error) {
	if res, ok := s.tracker.Last(); ok {
		return res, nil
	}
	res, err := s.catalog.LatestRun(ctx)
	if err != nil {
		return coreingest.Result{}, err
	}
	if res == nil {
		return coreingest.Result{Status: coreingest.StatusPending, Source: s.settings.Source}, nil
	}
	return *res, nil
}
