package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentiqcloud/dentiq-backend/internal/types"
)

type fakeDiagnosisRepo struct {
	diagnoses []*types.Diagnosis
}

func (f *fakeDiagnosisRepo) Create(ctx context.Context, tx *gorm.DB, diagnoses []*types.Diagnosis) ([]*types.Diagnosis, error) {
	f.diagnoses = append(f.diagnoses, diagnoses...)
	return diagnoses, nil
}

func (f *fakeDiagnosisRepo) GetByPatientID(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]*types.Diagnosis, error) {
	return f.diagnoses, nil
}

type fakeCompletedOutputRepo struct {
	fakeAIOutputRepo
	completed []*types.AIOutput
}

func (f *fakeCompletedOutputRepo) GetCompletedByPatientID(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]*types.AIOutput, error) {
	return f.completed, nil
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestListAnalysisMergesNewestFirst(t *testing.T) {
	patientID := uuid.New()
	diagRepo := &fakeDiagnosisRepo{
		diagnoses: []*types.Diagnosis{
			{
				ID:        uuid.New(),
				PatientID: patientID,
				Date:      day("2025-01-05"),
				Note:      "stable occlusion",
				Doctor:    &types.User{Name: "Dr. Ruiz"},
				CreatedAt: day("2025-01-05"),
			},
		},
	}
	aiRepo := &fakeCompletedOutputRepo{
		completed: []*types.AIOutput{
			{
				ID:        uuid.New(),
				RecordID:  uuid.New(),
				Model:     "cbct-analyzer-v1",
				Status:    types.AIOutputStatusCompleted,
				Risk:      strptr("moderate"),
				Record:    &types.CbctRecord{CaptureDate: day("2025-01-10")},
				CreatedAt: day("2025-01-11"),
			},
		},
	}
	svc := NewAnalysisService(newTestLogger(t), diagRepo, aiRepo)

	rows, err := svc.ListAnalysis(context.Background(), patientID, 0, 0)
	if err != nil {
		t.Fatalf("ListAnalysis: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: want=2 got=%d", len(rows))
	}
	if rows[0].Type != AnalysisRowTypeAI {
		t.Fatalf("first row type: want=%q got=%q", AnalysisRowTypeAI, rows[0].Type)
	}
	if rows[0].Subject != "cbct-analyzer-v1" {
		t.Fatalf("ai row subject: got=%q", rows[0].Subject)
	}
	if rows[1].Type != AnalysisRowTypeDoctor || rows[1].Subject != "Dr. Ruiz" {
		t.Fatalf("doctor row: got type=%q subject=%q", rows[1].Type, rows[1].Subject)
	}
	// The AI row is dated by capture date, not callback time.
	if !rows[0].Date.Equal(day("2025-01-10")) {
		t.Fatalf("ai row date: want=%v got=%v", day("2025-01-10"), rows[0].Date)
	}
}

func TestListAnalysisTieBreaksOnCreation(t *testing.T) {
	patientID := uuid.New()
	early := day("2025-02-01")
	diagRepo := &fakeDiagnosisRepo{
		diagnoses: []*types.Diagnosis{
			{ID: uuid.New(), PatientID: patientID, Date: early, Note: "first", CreatedAt: early.Add(1 * time.Hour)},
			{ID: uuid.New(), PatientID: patientID, Date: early, Note: "second", CreatedAt: early.Add(2 * time.Hour)},
		},
	}
	svc := NewAnalysisService(newTestLogger(t), diagRepo, &fakeCompletedOutputRepo{})

	rows, err := svc.ListAnalysis(context.Background(), patientID, 0, 0)
	if err != nil {
		t.Fatalf("ListAnalysis: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: want=2 got=%d", len(rows))
	}
	if rows[0].Description != "second" || rows[1].Description != "first" {
		t.Fatalf("tie-break order wrong: got %q then %q", rows[0].Description, rows[1].Description)
	}
}

func TestListAnalysisPaging(t *testing.T) {
	patientID := uuid.New()
	diagRepo := &fakeDiagnosisRepo{}
	for i := 0; i < 5; i++ {
		diagRepo.diagnoses = append(diagRepo.diagnoses, &types.Diagnosis{
			ID:        uuid.New(),
			PatientID: patientID,
			Date:      day("2025-03-01").AddDate(0, 0, i),
			Note:      "note",
			CreatedAt: day("2025-03-01").AddDate(0, 0, i),
		})
	}
	svc := NewAnalysisService(newTestLogger(t), diagRepo, &fakeCompletedOutputRepo{})

	rows, err := svc.ListAnalysis(context.Background(), patientID, 2, 1)
	if err != nil {
		t.Fatalf("ListAnalysis: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("page size: want=2 got=%d", len(rows))
	}
	if !rows[0].Date.Equal(day("2025-03-04")) {
		t.Fatalf("offset skipped wrong row: got date=%v", rows[0].Date)
	}

	rows, err = svc.ListAnalysis(context.Background(), patientID, 10, 100)
	if err != nil {
		t.Fatalf("ListAnalysis past end: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("offset past end: want=0 got=%d", len(rows))
	}
}
