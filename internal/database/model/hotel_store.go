package model

import "time"

const TableNameHotelStore = "hotel_store"

// HotelStore catalogs one embedded chunk of the hotel corpus. Any row means
// the corpus has been ingested.
type HotelStore struct {
	ID             int64      `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	VectorID       int64      `gorm:"column:vector_id;not null;uniqueIndex" json:"vector_id"`
	DocumentIndex  int32      `gorm:"column:document_index;not null" json:"document_index"`
	ChunkIndex     int32      `gorm:"column:chunk_index;not null" json:"chunk_index"`
	Content        string     `gorm:"column:content;type:text;not null" json:"content"`
	ContentHash    string     `gorm:"column:content_hash;type:char(64);not null" json:"content_hash"`
	ContentPreview *string    `gorm:"column:content_preview;type:varchar(512)" json:"content_preview"`
	TokenCount     *int32     `gorm:"column:token_count" json:"token_count"`
	CreatedAt      *time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName HotelStore's table name
func (*HotelStore) TableName() string {
	return TableNameHotelStore
}
