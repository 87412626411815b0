package services

import (
  "context"
  "fmt"
  "io"
  "path"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/repos"
  "github.com/dentiqcloud/dentiq-backend/internal/requestdata"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

// RecordInputKey is the deterministic storage key for an uploaded image,
// computable from the pre-generated record id before anything is persisted.
func RecordInputKey(recordID uuid.UUID, position int, originalName string) string {
  return fmt.Sprintf("patient/cbct/%s/input/%02d_%s", recordID, position, path.Base(originalName))
}

// RecordOutputKey addresses AI result artifacts for a record.
func RecordOutputKey(recordID uuid.UUID, name string) string {
  return fmt.Sprintf("patient/cbct/%s/output/%s", recordID, name)
}

type RecordUpload struct {
  OriginalName string
  MimeType     string
  SizeBytes    int64
  Reader       io.Reader
}

type CreateRecordInput struct {
  PatientID   uuid.UUID
  CaptureDate time.Time
  Uploads     []RecordUpload
}

type CreateRecordResult struct {
  Record     *types.CbctRecord `json:"record"`
  Dispatched bool              `json:"dispatched"`
}

type RecordService interface {
  CreateRecord(ctx context.Context, input CreateRecordInput) (*CreateRecordResult, error)
  ListRecords(ctx context.Context, patientID uuid.UUID) ([]*types.CbctRecord, error)
  GetRecord(ctx context.Context, recordID uuid.UUID) (*types.CbctRecord, error)
  DeleteImage(ctx context.Context, imageID uuid.UUID) error
}

type recordService struct {
  db         *gorm.DB
  log        *logger.Logger
  recordRepo repos.CbctRecordRepo
  imageRepo  repos.CbctImageRepo
  aiRepo     repos.AIOutputRepo
  bucket     BucketService
  dispatch   AIDispatchClient
  modelID    string
}

func NewRecordService(
  db *gorm.DB,
  log *logger.Logger,
  recordRepo repos.CbctRecordRepo,
  imageRepo repos.CbctImageRepo,
  aiRepo repos.AIOutputRepo,
  bucket BucketService,
  dispatch AIDispatchClient,
  modelID string,
) RecordService {
  serviceLog := log.With("service", "RecordService")
  return &recordService{
    db:         db,
    log:        serviceLog,
    recordRepo: recordRepo,
    imageRepo:  imageRepo,
    aiRepo:     aiRepo,
    bucket:     bucket,
    dispatch:   dispatch,
    modelID:    modelID,
  }
}

// CreateRecord consumes the pre-generated id from request context, stores the
// uploaded bytes under keys derived from it, then commits the record, its
// images and a pending AI output in one transaction. Dispatch to the inference
// service happens after commit and is never allowed to fail the request: a
// pending row with no dispatch is recoverable, a dispatched callback with no
// row is not.
func (rs *recordService) CreateRecord(ctx context.Context, input CreateRecordInput) (*CreateRecordResult, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.PreGeneratedID == uuid.Nil {
    return nil, apierr.Fatal(fmt.Errorf("no pre-generated id in request context"))
  }
  if len(input.Uploads) == 0 {
    return nil, apierr.Validation(fmt.Errorf("at least one image file is required"))
  }
  recordID := rd.PreGeneratedID

  images := make([]*types.CbctImage, 0, len(input.Uploads))
  imageKeys := make([]string, 0, len(input.Uploads))
  for i, upload := range input.Uploads {
    key := RecordInputKey(recordID, i, upload.OriginalName)
    if err := rs.bucket.UploadFile(ctx, key, upload.Reader); err != nil {
      return nil, fmt.Errorf("Failed to store uploaded image: %w", err)
    }
    images = append(images, &types.CbctImage{
      ID:           uuid.New(),
      RecordID:     recordID,
      OriginalName: upload.OriginalName,
      MimeType:     upload.MimeType,
      SizeBytes:    upload.SizeBytes,
      StorageKey:   key,
      FileURL:      rs.bucket.GetPublicURL(key),
      Position:     i,
    })
    imageKeys = append(imageKeys, key)
  }

  record := &types.CbctRecord{
    ID:          recordID,
    PatientID:   input.PatientID,
    CaptureDate: input.CaptureDate,
  }

  err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, cErr := rs.recordRepo.Create(ctx, tx, []*types.CbctRecord{record}); cErr != nil {
      return fmt.Errorf("Failed to create record: %w", cErr)
    }
    if _, iErr := rs.imageRepo.Create(ctx, tx, images); iErr != nil {
      return fmt.Errorf("Failed to create record images: %w", iErr)
    }
    output := &types.AIOutput{
      ID:       uuid.New(),
      RecordID: recordID,
      Model:    rs.modelID,
      Status:   types.AIOutputStatusPending,
    }
    if _, oErr := rs.aiRepo.Create(ctx, tx, []*types.AIOutput{output}); oErr != nil {
      return fmt.Errorf("Failed to create pending ai output: %w", oErr)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }

  record.Images = images

  dispatched := true
  if dErr := rs.dispatch.Dispatch(ctx, record, imageKeys); dErr != nil {
    dispatched = false
    rs.log.Warn("Dispatch to inference service failed, record stays pending", "record_id", recordID, "error", dErr)
  }

  return &CreateRecordResult{Record: record, Dispatched: dispatched}, nil
}

func (rs *recordService) ListRecords(ctx context.Context, patientID uuid.UUID) ([]*types.CbctRecord, error) {
  records, err := rs.recordRepo.GetByPatientID(ctx, nil, patientID)
  if err != nil {
    return nil, fmt.Errorf("Failed to list records: %w", err)
  }
  return records, nil
}

func (rs *recordService) GetRecord(ctx context.Context, recordID uuid.UUID) (*types.CbctRecord, error) {
  records, err := rs.recordRepo.GetByIDs(ctx, nil, []uuid.UUID{recordID})
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch record: %w", err)
  }
  if len(records) == 0 {
    return nil, apierr.NotFound(fmt.Errorf("record %s not found", recordID))
  }
  return records[0], nil
}

func (rs *recordService) DeleteImage(ctx context.Context, imageID uuid.UUID) error {
  images, err := rs.imageRepo.GetByIDs(ctx, nil, []uuid.UUID{imageID})
  if err != nil {
    return fmt.Errorf("Failed to fetch image: %w", err)
  }
  if len(images) == 0 {
    return apierr.NotFound(fmt.Errorf("image %s not found", imageID))
  }
  if sdErr := rs.imageRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{imageID}); sdErr != nil {
    return fmt.Errorf("Failed to soft delete image: %w", sdErr)
  }
  return nil
}
