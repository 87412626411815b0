package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

type CbctImageRepo interface {
  Create(ctx context.Context, tx *gorm.DB, images []*types.CbctImage) ([]*types.CbctImage, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, imageIDs []uuid.UUID) ([]*types.CbctImage, error)
  GetByRecordIDs(ctx context.Context, tx *gorm.DB, recordIDs []uuid.UUID) ([]*types.CbctImage, error)
  SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, imageIDs []uuid.UUID) error
}

type cbctImageRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCbctImageRepo(db *gorm.DB, baseLog *logger.Logger) CbctImageRepo {
  repoLog := baseLog.With("repo", "CbctImageRepo")
  return &cbctImageRepo{db: db, log: repoLog}
}

func (r *cbctImageRepo) Create(ctx context.Context, tx *gorm.DB, images []*types.CbctImage) ([]*types.CbctImage, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(images) == 0 {
    return []*types.CbctImage{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&images).Error; err != nil {
    return nil, err
  }
  return images, nil
}

func (r *cbctImageRepo) GetByIDs(ctx context.Context, tx *gorm.DB, imageIDs []uuid.UUID) ([]*types.CbctImage, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CbctImage
  if len(imageIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", imageIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *cbctImageRepo) GetByRecordIDs(ctx context.Context, tx *gorm.DB, recordIDs []uuid.UUID) ([]*types.CbctImage, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CbctImage
  if len(recordIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("record_id IN ?", recordIDs).
    Order("position ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *cbctImageRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, imageIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(imageIDs) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", imageIDs).
    Delete(&types.CbctImage{}).Error; err != nil {
    return err
  }
  return nil
}
