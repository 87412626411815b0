package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

type PatientRepo interface {
  Create(ctx context.Context, tx *gorm.DB, patients []*types.Patient) ([]*types.Patient, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, patientIDs []uuid.UUID) ([]*types.Patient, error)
}

type patientRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPatientRepo(db *gorm.DB, baseLog *logger.Logger) PatientRepo {
  repoLog := baseLog.With("repo", "PatientRepo")
  return &patientRepo{db: db, log: repoLog}
}

func (r *patientRepo) Create(ctx context.Context, tx *gorm.DB, patients []*types.Patient) ([]*types.Patient, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(patients) == 0 {
    return []*types.Patient{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&patients).Error; err != nil {
    return nil, err
  }
  return patients, nil
}

func (r *patientRepo) GetByIDs(ctx context.Context, tx *gorm.DB, patientIDs []uuid.UUID) ([]*types.Patient, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Patient
  if len(patientIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", patientIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
