package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Clinic struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Clinic) TableName() string { return "clinic" }

type ClinicMember struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ClinicID  uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_clinic_member_clinic_user" json:"clinic_id"`
	Clinic    *Clinic        `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClinicID;references:ID" json:"clinic,omitempty"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_clinic_member_clinic_user" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Role      string         `gorm:"column:role;not null;default:'doctor'" json:"role"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ClinicMember) TableName() string { return "clinic_member" }
