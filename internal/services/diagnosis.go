package services

import (
  "context"
  "fmt"
  "time"
  "github.com/google/uuid"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/repos"
  "github.com/dentiqcloud/dentiq-backend/internal/requestdata"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

type CreateDiagnosisInput struct {
  PatientID uuid.UUID
  Date      time.Time
  Note      string
  TagIDs    []uuid.UUID
}

type DiagnosisService interface {
  CreateDiagnosis(ctx context.Context, input CreateDiagnosisInput) (*types.Diagnosis, error)
  ListDiagnoses(ctx context.Context, patientID uuid.UUID) ([]*types.Diagnosis, error)
}

type diagnosisService struct {
  log      *logger.Logger
  diagRepo repos.DiagnosisRepo
}

func NewDiagnosisService(log *logger.Logger, diagRepo repos.DiagnosisRepo) DiagnosisService {
  serviceLog := log.With("service", "DiagnosisService")
  return &diagnosisService{log: serviceLog, diagRepo: diagRepo}
}

func (ds *diagnosisService) CreateDiagnosis(ctx context.Context, input CreateDiagnosisInput) (*types.Diagnosis, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthenticated(fmt.Errorf("no principal in request context"))
  }
  if input.Note == "" {
    return nil, apierr.Validation(fmt.Errorf("note is required"))
  }
  date := input.Date
  if date.IsZero() {
    date = time.Now()
  }

  tags := make([]*types.Tag, 0, len(input.TagIDs))
  for _, tagID := range input.TagIDs {
    tags = append(tags, &types.Tag{ID: tagID})
  }

  diagnosis := &types.Diagnosis{
    ID:        uuid.New(),
    PatientID: input.PatientID,
    DoctorID:  rd.UserID,
    Date:      date,
    Note:      input.Note,
    Tags:      tags,
  }
  created, err := ds.diagRepo.Create(ctx, nil, []*types.Diagnosis{diagnosis})
  if err != nil {
    return nil, fmt.Errorf("Failed to create diagnosis: %w", err)
  }
  return created[0], nil
}

func (ds *diagnosisService) ListDiagnoses(ctx context.Context, patientID uuid.UUID) ([]*types.Diagnosis, error) {
  diagnoses, err := ds.diagRepo.GetByPatientID(ctx, nil, patientID)
  if err != nil {
    return nil, fmt.Errorf("Failed to list diagnoses: %w", err)
  }
  return diagnoses, nil
}
