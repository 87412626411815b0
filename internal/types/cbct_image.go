package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CbctImage struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RecordID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"record_id"`
	Record       *CbctRecord    `gorm:"constraint:OnDelete:CASCADE;foreignKey:RecordID;references:ID" json:"record,omitempty"`
	OriginalName string         `gorm:"column:original_name;not null" json:"original_name"`
	MimeType     string         `gorm:"column:mime_type" json:"mime_type"`
	SizeBytes    int64          `gorm:"column:size_bytes" json:"size_bytes"`
	StorageKey   string         `gorm:"column:storage_key;not null" json:"storage_key"`
	FileURL      string         `gorm:"column:file_url" json:"file_url"`
	Position     int            `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CbctImage) TableName() string { return "cbct_image" }
