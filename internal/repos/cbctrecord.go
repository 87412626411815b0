package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

type CbctRecordRepo interface {
  Create(ctx context.Context, tx *gorm.DB, records []*types.CbctRecord) ([]*types.CbctRecord, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, recordIDs []uuid.UUID) ([]*types.CbctRecord, error)
  GetByPatientID(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]*types.CbctRecord, error)
}

type cbctRecordRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCbctRecordRepo(db *gorm.DB, baseLog *logger.Logger) CbctRecordRepo {
  repoLog := baseLog.With("repo", "CbctRecordRepo")
  return &cbctRecordRepo{db: db, log: repoLog}
}

func (r *cbctRecordRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.CbctRecord) ([]*types.CbctRecord, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(records) == 0 {
    return []*types.CbctRecord{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
    return nil, err
  }
  return records, nil
}

func (r *cbctRecordRepo) GetByIDs(ctx context.Context, tx *gorm.DB, recordIDs []uuid.UUID) ([]*types.CbctRecord, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CbctRecord
  if len(recordIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("Images").
    Where("id IN ?", recordIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *cbctRecordRepo) GetByPatientID(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]*types.CbctRecord, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CbctRecord
  if err := transaction.WithContext(ctx).
    Preload("Images").
    Where("patient_id = ?", patientID).
    Order("capture_date DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
