package services

import (
  "context"
  "fmt"
  "sort"
  "strings"
  "time"
  "github.com/google/uuid"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/repos"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

const (
  AnalysisRowTypeDoctor = "doctor"
  AnalysisRowTypeAI     = "ai"
)

// AnalysisRow is the common projection both doctor diagnoses and completed AI
// outputs are normalized into for the patient analysis feed.
type AnalysisRow struct {
  ID          uuid.UUID `json:"id"`
  Date        time.Time `json:"date"`
  Type        string    `json:"type"`
  Subject     string    `json:"subject"`
  Description string    `json:"description"`
  PatientID   uuid.UUID `json:"patient_id"`
  CreatedAt   time.Time `json:"-"`
}

type AnalysisService interface {
  ListAnalysis(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AnalysisRow, error)
}

type analysisService struct {
  log       *logger.Logger
  diagRepo  repos.DiagnosisRepo
  aiRepo    repos.AIOutputRepo
}

func NewAnalysisService(log *logger.Logger, diagRepo repos.DiagnosisRepo, aiRepo repos.AIOutputRepo) AnalysisService {
  serviceLog := log.With("service", "AnalysisService")
  return &analysisService{
    log:      serviceLog,
    diagRepo: diagRepo,
    aiRepo:   aiRepo,
  }
}

// ListAnalysis merges doctor diagnoses with completed AI outputs, newest
// first. Pending and failed outputs never appear: a failed inference is
// operator-facing detail, not part of the patient's clinical feed.
func (as *analysisService) ListAnalysis(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AnalysisRow, error) {
  diagnoses, err := as.diagRepo.GetByPatientID(ctx, nil, patientID)
  if err != nil {
    return nil, fmt.Errorf("Failed to load diagnoses: %w", err)
  }
  outputs, err := as.aiRepo.GetCompletedByPatientID(ctx, nil, patientID)
  if err != nil {
    return nil, fmt.Errorf("Failed to load completed ai outputs: %w", err)
  }

  rows := make([]*AnalysisRow, 0, len(diagnoses)+len(outputs))
  for _, d := range diagnoses {
    rows = append(rows, diagnosisRow(d))
  }
  for _, o := range outputs {
    rows = append(rows, aiOutputRow(patientID, o))
  }

  sort.SliceStable(rows, func(i, j int) bool {
    if !rows[i].Date.Equal(rows[j].Date) {
      return rows[i].Date.After(rows[j].Date)
    }
    return rows[i].CreatedAt.After(rows[j].CreatedAt)
  })

  if offset >= len(rows) {
    return []*AnalysisRow{}, nil
  }
  rows = rows[offset:]
  if limit > 0 && limit < len(rows) {
    rows = rows[:limit]
  }
  return rows, nil
}

func diagnosisRow(d *types.Diagnosis) *AnalysisRow {
  subject := "doctor"
  if d.Doctor != nil && d.Doctor.Name != "" {
    subject = d.Doctor.Name
  }
  return &AnalysisRow{
    ID:          d.ID,
    Date:        d.Date,
    Type:        AnalysisRowTypeDoctor,
    Subject:     subject,
    Description: d.Note,
    PatientID:   d.PatientID,
    CreatedAt:   d.CreatedAt,
  }
}

func aiOutputRow(patientID uuid.UUID, o *types.AIOutput) *AnalysisRow {
  date := o.CreatedAt
  if o.Record != nil {
    date = o.Record.CaptureDate
  }
  parts := make([]string, 0, 3)
  if o.Risk != nil {
    parts = append(parts, fmt.Sprintf("risk: %s", *o.Risk))
  }
  if o.Phenotype != nil {
    parts = append(parts, fmt.Sprintf("phenotype: %s", *o.Phenotype))
  }
  if o.Prescription != nil {
    parts = append(parts, *o.Prescription)
  }
  return &AnalysisRow{
    ID:          o.ID,
    Date:        date,
    Type:        AnalysisRowTypeAI,
    Subject:     o.Model,
    Description: strings.Join(parts, "; "),
    PatientID:   patientID,
    CreatedAt:   o.CreatedAt,
  }
}
