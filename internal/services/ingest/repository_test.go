package ingest

import (
	"ai-concierge/internal/core/chunker"
	coreingest "ai-concierge/internal/core/ingest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// dryRunDB renders MySQL statements without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/concierge?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestBuildRows(t *testing.T) {
	rows, err := buildRows([]chunker.Chunk{
		{DocumentIndex: 2, Index: 1, Content: "조식은 오전 7시부터 제공됩니다.", TokenCount: 4},
	}, []int64{2<<20 + 1})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2<<20+1), rows[0].VectorID)
	assert.Equal(t, int32(2), rows[0].DocumentIndex)
	assert.Equal(t, int32(1), rows[0].ChunkIndex)
	assert.Len(t, rows[0].ContentHash, 64)
	assert.Equal(t, "조식은 오전 7시부터 제공됩니다.", *rows[0].ContentPreview)
	assert.Equal(t, int32(4), *rows[0].TokenCount)

	_, err = buildRows([]chunker.Chunk{{}}, nil)
	assert.Error(t, err)
}

func TestBuildContentPreview(t *testing.T) {
	assert.Equal(t, "abc", buildContentPreview("\uFEFF a\x00bc ", 10))
	assert.Equal(t, "가나", buildContentPreview("가나다라", 2))
	assert.Equal(t, 512, len([]rune(buildContentPreview(strings.Repeat("호", 600), 512))))
}

func TestRunRowRoundTrip(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	res := coreingest.Result{
		RunID:      "run-1",
		Status:     coreingest.StatusFailed,
		Source:     "embedded",
		Documents:  3,
		Chunks:     4,
		Error:      "submit document 4: boom",
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}

	row := runRow(res)
	require.NotNil(t, row.Error)
	require.NotNil(t, row.FinishedAt)
	assert.Equal(t, res, resultFromRow(row))

	running := runRow(coreingest.Result{RunID: "run-2", Status: coreingest.StatusRunning, StartedAt: started})
	assert.Nil(t, running.Error)
	assert.Nil(t, running.FinishedAt)
}

func TestUpsertRun_FailureBeforeRunningRowIsInserted(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	row := runRow(coreingest.Result{
		RunID:      "run-3",
		Status:     coreingest.StatusFailed,
		Source:     "embedded",
		Error:      "count ingested records: table missing",
		StartedAt:  started,
		FinishedAt: started.Add(time.Millisecond),
	})

	stmt := upsertRun(dryRunDB(t), &row).Statement
	sql := stmt.SQL.String()

	require.True(t, strings.HasPrefix(sql, "INSERT INTO `ingestion_runs`"), sql)
	parts := strings.SplitN(sql, "ON DUPLICATE KEY UPDATE", 2)
	require.Len(t, parts, 2, sql)
	for _, col := range runUpdateColumns {
		assert.Contains(t, parts[1], "`"+col+"`")
	}
	assert.NotContains(t, parts[1], "`started_at`")
	assert.NotContains(t, parts[1], "`source`")
	assert.Contains(t, stmt.Vars, "run-3")
	assert.Contains(t, stmt.Vars, "failed")
}
