package main

import (
	"ai-concierge/config"
	"ai-concierge/internal/database/model"
	"ai-concierge/pkg/logger"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gen"
	"gorm.io/gorm"
)

// RunQuerier adds lookups on ingestion_runs beyond the basic CRUD.
type RunQuerier interface {
	// SELECT * FROM @@table WHERE run_id = @runID LIMIT 1
	FindByRunID(runID string) (*gen.T, error)

	// SELECT * FROM @@table WHERE status = @status ORDER BY started_at DESC LIMIT 1
	LatestByStatus(status string) (*gen.T, error)
}

func main() {
	_ = godotenv.Load()
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if err := config.Init(path); err != nil {
		logger.Fatal(err, "failed to load config")
	}

	db, err := gorm.Open(mysql.Open(config.Cfg.Dns), &gorm.Config{})
	if err != nil {
		logger.Fatal(err, "failed to connect to database")
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:        "internal/database/query",
		ModelPkgPath:   "internal/database/model",
		Mode:           gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:  true,
		FieldCoverable: true,
	})
	g.UseDB(db)

	g.ApplyBasic(model.HotelStore{})
	g.ApplyInterface(func(RunQuerier) {}, model.IngestionRun{})

	g.Execute()
	logger.WithModule(config.ModuleDatabase).Info("gen: query code written to internal/database/query")
}
