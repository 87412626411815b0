package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CbctRecord is immutable after creation; only its child images soft-delete.
// Its ID is the pre-generated identifier minted before any bytes were stored,
// so storage keys under patient/cbct/{id}/ were computable ahead of the insert.
type CbctRecord struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"patient_id"`
	Patient     *Patient       `gorm:"constraint:OnDelete:CASCADE;foreignKey:PatientID;references:ID" json:"patient,omitempty"`
	CaptureDate time.Time      `gorm:"column:capture_date;not null" json:"capture_date"`
	Images      []*CbctImage   `gorm:"foreignKey:RecordID;references:ID" json:"images,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CbctRecord) TableName() string { return "cbct_record" }
