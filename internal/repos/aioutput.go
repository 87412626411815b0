package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

// AIOutputCompletion carries the result fields the completion callback
// persists in the terminal transition.
type AIOutputCompletion struct {
  Risk              *string
  Phenotype         *string
  Prescription      *string
  TreatmentImageKey *string
  PhenotypeImageKey *string
  OutputFileKeys    datatypes.JSON
}

type AIOutputRepo interface {
  Create(ctx context.Context, tx *gorm.DB, outputs []*types.AIOutput) ([]*types.AIOutput, error)
  GetByRecordIDs(ctx context.Context, tx *gorm.DB, recordIDs []uuid.UUID) ([]*types.AIOutput, error)
  GetCompletedByPatientID(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]*types.AIOutput, error)
  GetStalePending(ctx context.Context, tx *gorm.DB, olderThan time.Time, limit int) ([]*types.AIOutput, error)
  TouchByIDs(ctx context.Context, tx *gorm.DB, outputIDs []uuid.UUID) error
  CompleteIfPending(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, fields AIOutputCompletion) (bool, error)
  FailIfPending(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, errorDetail string) (bool, error)
}

type aiOutputRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAIOutputRepo(db *gorm.DB, baseLog *logger.Logger) AIOutputRepo {
  repoLog := baseLog.With("repo", "AIOutputRepo")
  return &aiOutputRepo{db: db, log: repoLog}
}

func (r *aiOutputRepo) Create(ctx context.Context, tx *gorm.DB, outputs []*types.AIOutput) ([]*types.AIOutput, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(outputs) == 0 {
    return []*types.AIOutput{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&outputs).Error; err != nil {
    return nil, err
  }
  return outputs, nil
}

func (r *aiOutputRepo) GetByRecordIDs(ctx context.Context, tx *gorm.DB, recordIDs []uuid.UUID) ([]*types.AIOutput, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.AIOutput
  if len(recordIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("record_id IN ?", recordIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *aiOutputRepo) GetCompletedByPatientID(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]*types.AIOutput, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.AIOutput
  if err := transaction.WithContext(ctx).
    Joins("JOIN cbct_record ON cbct_record.id = ai_output.record_id").
    Where("cbct_record.patient_id = ? AND cbct_record.deleted_at IS NULL", patientID).
    Where("ai_output.status = ?", types.AIOutputStatusCompleted).
    Preload("Record").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *aiOutputRepo) GetStalePending(ctx context.Context, tx *gorm.DB, olderThan time.Time, limit int) ([]*types.AIOutput, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.AIOutput
  if err := transaction.WithContext(ctx).
    Where("status = ? AND updated_at < ?", types.AIOutputStatusPending, olderThan).
    Order("updated_at ASC").
    Limit(limit).
    Preload("Record").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *aiOutputRepo) TouchByIDs(ctx context.Context, tx *gorm.DB, outputIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(outputIDs) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.AIOutput{}).
    Where("id IN ?", outputIDs).
    Update("updated_at", time.Now()).Error; err != nil {
    return err
  }
  return nil
}

// CompleteIfPending performs the terminal transition as a single conditional
// UPDATE keyed on a non-terminal current status. Concurrent callbacks for the
// same record race on this statement and exactly one observes rows_affected=1;
// callers treat false as "already settled".
func (r *aiOutputRepo) CompleteIfPending(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, fields AIOutputCompletion) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.AIOutput{}).
    Where("record_id = ? AND status IN ?", recordID, types.AIOutputNonTerminalStatuses).
    Updates(map[string]interface{}{
      "status":              types.AIOutputStatusCompleted,
      "risk":                fields.Risk,
      "phenotype":           fields.Phenotype,
      "prescription":        fields.Prescription,
      "treatment_image_key": fields.TreatmentImageKey,
      "phenotype_image_key": fields.PhenotypeImageKey,
      "output_file_keys":    fields.OutputFileKeys,
      "updated_at":          time.Now(),
    })
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected > 0, nil
}

func (r *aiOutputRepo) FailIfPending(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, errorDetail string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.AIOutput{}).
    Where("record_id = ? AND status IN ?", recordID, types.AIOutputNonTerminalStatuses).
    Updates(map[string]interface{}{
      "status":       types.AIOutputStatusFailed,
      "error_detail": errorDetail,
      "updated_at":   time.Now(),
    })
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected > 0, nil
}
