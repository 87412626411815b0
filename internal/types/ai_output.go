package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AIOutputStatusPending    = "pending"
	AIOutputStatusProcessing = "processing"
	AIOutputStatusCompleted  = "completed"
	AIOutputStatusFailed     = "failed"
)

// AIOutputNonTerminalStatuses are the states a completion callback may still
// transition out of. The conditional update in the repo keys on this set.
var AIOutputNonTerminalStatuses = []string{AIOutputStatusPending, AIOutputStatusProcessing}

func IsTerminalAIOutputStatus(status string) bool {
	return status == AIOutputStatusCompleted || status == AIOutputStatusFailed
}

// AIOutput tracks the external inference service's analysis of one CBCT
// record. Exactly one row per record, created pending in the same transaction
// as the record, mutated only by the completion callback flow, cascading with
// the record on delete.
type AIOutput struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RecordID          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"record_id"`
	Record            *CbctRecord    `gorm:"constraint:OnDelete:CASCADE;foreignKey:RecordID;references:ID" json:"record,omitempty"`
	Model             string         `gorm:"column:model;not null" json:"model"`
	Status            string         `gorm:"column:status;not null;default:'pending';index" json:"status"`
	Risk              *string        `gorm:"column:risk" json:"risk,omitempty"`
	Phenotype         *string        `gorm:"column:phenotype" json:"phenotype,omitempty"`
	Prescription      *string        `gorm:"column:prescription" json:"prescription,omitempty"`
	TreatmentImageKey *string        `gorm:"column:treatment_image_key" json:"treatment_image_key,omitempty"`
	PhenotypeImageKey *string        `gorm:"column:phenotype_image_key" json:"phenotype_image_key,omitempty"`
	OutputFileKeys    datatypes.JSON `gorm:"column:output_file_keys;type:jsonb" json:"output_file_keys,omitempty"`
	ErrorDetail       *string        `gorm:"column:error_detail" json:"error_detail,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AIOutput) TableName() string { return "ai_output" }
