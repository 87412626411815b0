package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

type DiagnosisRepo interface {
  Create(ctx context.Context, tx *gorm.DB, diagnoses []*types.Diagnosis) ([]*types.Diagnosis, error)
  GetByPatientID(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]*types.Diagnosis, error)
}

type diagnosisRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewDiagnosisRepo(db *gorm.DB, baseLog *logger.Logger) DiagnosisRepo {
  repoLog := baseLog.With("repo", "DiagnosisRepo")
  return &diagnosisRepo{db: db, log: repoLog}
}

func (r *diagnosisRepo) Create(ctx context.Context, tx *gorm.DB, diagnoses []*types.Diagnosis) ([]*types.Diagnosis, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(diagnoses) == 0 {
    return []*types.Diagnosis{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&diagnoses).Error; err != nil {
    return nil, err
  }
  return diagnoses, nil
}

func (r *diagnosisRepo) GetByPatientID(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]*types.Diagnosis, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Diagnosis
  if err := transaction.WithContext(ctx).
    Preload("Doctor").
    Preload("Tags").
    Where("patient_id = ?", patientID).
    Order("date DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
