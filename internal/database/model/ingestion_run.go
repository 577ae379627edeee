package model

import "time"

const TableNameIngestionRun = "ingestion_runs"

// IngestionRun mirrors one bootstrap attempt.
type IngestionRun struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	RunID      string     `gorm:"column:run_id;type:char(36);not null;uniqueIndex" json:"run_id"`
	Status     string     `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Source     string     `gorm:"column:source;type:varchar(255)" json:"source"`
	Existing   int64      `gorm:"column:existing" json:"existing"`
	Documents  int32      `gorm:"column:documents" json:"documents"`
	Chunks     int32      `gorm:"column:chunks" json:"chunks"`
	Error      *string    `gorm:"column:error;type:text" json:"error"`
	StartedAt  time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at"`
}

// TableName IngestionRun's table name
func (*IngestionRun) TableName() string {
	return TableNameIngestionRun
}
