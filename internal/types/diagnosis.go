package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Diagnosis struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PatientID uuid.UUID      `gorm:"type:uuid;not null;index" json:"patient_id"`
	Patient   *Patient       `gorm:"constraint:OnDelete:CASCADE;foreignKey:PatientID;references:ID" json:"patient,omitempty"`
	DoctorID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Doctor    *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:DoctorID;references:ID" json:"doctor,omitempty"`
	Date      time.Time      `gorm:"column:date;not null" json:"date"`
	Note      string         `gorm:"column:note;not null" json:"note"`
	Tags      []*Tag         `gorm:"many2many:diagnosis_tag" json:"tags,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Diagnosis) TableName() string { return "diagnosis" }

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Tag) TableName() string { return "tag" }
