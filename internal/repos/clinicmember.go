package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

type ClinicMemberRepo interface {
  Create(ctx context.Context, tx *gorm.DB, members []*types.ClinicMember) ([]*types.ClinicMember, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ClinicMember, error)
  SoftDeleteByClinicAndUserID(ctx context.Context, tx *gorm.DB, clinicID, userID uuid.UUID) error
}

type clinicMemberRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewClinicMemberRepo(db *gorm.DB, baseLog *logger.Logger) ClinicMemberRepo {
  repoLog := baseLog.With("repo", "ClinicMemberRepo")
  return &clinicMemberRepo{db: db, log: repoLog}
}

func (r *clinicMemberRepo) Create(ctx context.Context, tx *gorm.DB, members []*types.ClinicMember) ([]*types.ClinicMember, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(members) == 0 {
    return []*types.ClinicMember{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&members).Error; err != nil {
    return nil, err
  }
  return members, nil
}

func (r *clinicMemberRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ClinicMember, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ClinicMember
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *clinicMemberRepo) SoftDeleteByClinicAndUserID(ctx context.Context, tx *gorm.DB, clinicID, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Where("clinic_id = ? AND user_id = ?", clinicID, userID).
    Delete(&types.ClinicMember{}).Error; err != nil {
    return err
  }
  return nil
}
