package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Patient struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ClinicID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Clinic    *Clinic        `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClinicID;references:ID" json:"clinic,omitempty"`
	Name      string         `gorm:"not null" json:"name"`
	BirthDate *time.Time     `gorm:"column:birth_date" json:"birth_date,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Patient) TableName() string { return "patient" }
