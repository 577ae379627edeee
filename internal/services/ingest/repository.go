package ingest

import (
	"ai-concierge/internal/core/chunker"
	coreingest "ai-concierge/internal/core/ingest"
	"ai-concierge/internal/database"
	"ai-concierge/internal/database/model"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	previewRunes    = 512
	insertBatchSize = 200
)

var runUpdateColumns = []string{"status", "existing", "documents", "chunks", "error", "finished_at"}

// Repository keeps the MySQL side of ingestion: the hotel_store catalog and
// the ingestion_runs log.
type Repository struct{}

func NewRepository() *Repository { return &Repository{} }

// CountIngested counts catalog rows; any row means the corpus is loaded.
func (r *Repository) CountIngested(ctx context.Context) (int64, error) {
	return database.CountEntities[model.HotelStore](ctx)
}

func (r *Repository) InsertChunks(ctx context.Context, chunks []chunker.Chunk, vectorIDs []int64) error {
	rows, err := buildRows(chunks, vectorIDs)
	if err != nil {
		return err
	}
	return database.CreateEntities(ctx, rows, insertBatchSize)
}

// Record writes res as one ingestion_runs row keyed by run id. The first
// record of a run inserts the row, whatever its status; later ones update it.
func (r *Repository) Record(ctx context.Context, res coreingest.Result) error {
	db, err := database.GetDB()
	if err != nil {
		return err
	}
	row := runRow(res)
	return upsertRun(db.WithContext(ctx), &row).Error
}

// LatestRun returns the most recent run, or nil when none was recorded.
func (r *Repository) LatestRun(ctx context.Context) (*coreingest.Result, error) {
	run, err := database.LatestEntity[model.IngestionRun](ctx, "started_at")
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res := resultFromRow(*run)
	return &res, nil
}

// upsertRun inserts row, or on a duplicate run_id overwrites the columns that
// change during a run. source and started_at keep their first value.
func upsertRun(db *gorm.DB, row *model.IngestionRun) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}},
		DoUpdates: clause.AssignmentColumns(runUpdateColumns),
	}).Create(row)
}

func buildRows(chunks []chunker.Chunk, vectorIDs []int64) ([]model.HotelStore, error) {
	if len(chunks) != len(vectorIDs) {
		return nil, errors.New("chunk and vector id count mismatch")
	}
	rows := make([]model.HotelStore, 0, len(chunks))
	for i, ch := range chunks {
		content := ch.Content
		preview := buildContentPreview(content, previewRunes)
		h := sha256.Sum256([]byte(content))
		tokens := int32(ch.TokenCount)
		rows = append(rows, model.HotelStore{
			VectorID:       vectorIDs[i],
			DocumentIndex:  int32(ch.DocumentIndex),
			ChunkIndex:     int32(ch.Index),
			Content:        content,
			ContentHash:    hex.EncodeToString(h[:]),
			ContentPreview: &preview,
			TokenCount:     &tokens,
		})
	}
	return rows, nil
}

func runRow(res coreingest.Result) model.IngestionRun {
	row := model.IngestionRun{
		RunID:     res.RunID,
		Status:    string(res.Status),
		Source:    res.Source,
		Existing:  res.Existing,
		Documents: int32(res.Documents),
		Chunks:    int32(res.Chunks),
		StartedAt: res.StartedAt,
	}
	if res.Error != "" {
		msg := res.Error
		row.Error = &msg
	}
	if !res.FinishedAt.IsZero() {
		finished := res.FinishedAt
		row.FinishedAt = &finished
	}
	return row
}

func resultFromRow(row model.IngestionRun) coreingest.Result {
	res := coreingest.Result{
		RunID:     row.RunID,
		Status:    coreingest.Status(row.Status),
		Source:    row.Source,
		Existing:  row.Existing,
		Documents: int(row.Documents),
		Chunks:    int(row.Chunks),
		StartedAt: row.StartedAt,
	}
	if row.Error != nil {
		res.Error = *row.Error
	}
	if row.FinishedAt != nil {
		res.FinishedAt = *row.FinishedAt
	}
	return res
}

// buildContentPreview sanitizes the preview to valid UTF-8 printable characters
// and truncates by runes to avoid splitting multi-byte sequences.
func buildContentPreview(s string, maxRunes int) string {
	var b strings.Builder
	b.Grow(len(s))
	count := 0
	for _, r := range s {
		if r == '\uFEFF' { // BOM
			continue
		}
		if r == '\n' || r == '\t' || r == '\r' {
			// keep common whitespace
		} else if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		count++
		if count >= maxRunes {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
