package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dentiqcloud/dentiq-backend/internal/apierr"
	"github.com/dentiqcloud/dentiq-backend/internal/repos"
	"github.com/dentiqcloud/dentiq-backend/internal/requestdata"
	"github.com/dentiqcloud/dentiq-backend/internal/types"
)

// openTestDB builds an isolated in-memory database with the record tables.
// Schema is created by hand: the production DDL leans on postgres defaults
// that sqlite has no equivalent for, and these tests always set ids explicitly.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cbct_record (
			id TEXT PRIMARY KEY,
			patient_id TEXT NOT NULL,
			capture_date DATETIME NOT NULL,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS cbct_image (
			id TEXT PRIMARY KEY,
			record_id TEXT NOT NULL,
			original_name TEXT,
			mime_type TEXT,
			size_bytes INTEGER,
			storage_key TEXT,
			file_url TEXT,
			position INTEGER,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS ai_output (
			id TEXT PRIMARY KEY,
			record_id TEXT NOT NULL UNIQUE,
			model TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			risk TEXT,
			phenotype TEXT,
			prescription TEXT,
			treatment_image_key TEXT,
			phenotype_image_key TEXT,
			output_file_keys TEXT,
			error_detail TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

type fakeDispatch struct {
	calls   int
	lastID  uuid.UUID
	failErr error
}

func (f *fakeDispatch) Dispatch(ctx context.Context, record *types.CbctRecord, imageKeys []string) error {
	f.calls++
	f.lastID = record.ID
	return f.failErr
}

func newRecordServiceForTest(t *testing.T, db *gorm.DB, bucket BucketService, dispatch AIDispatchClient) RecordService {
	t.Helper()
	log := newTestLogger(t)
	return NewRecordService(
		db,
		log,
		repos.NewCbctRecordRepo(db, log),
		repos.NewCbctImageRepo(db, log),
		repos.NewAIOutputRepo(db, log),
		bucket,
		dispatch,
		"cbct-analyzer-v1",
	)
}

func ctxWithPreGeneratedID(id uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:         uuid.New(),
		PreGeneratedID: id,
	})
}

func TestCreateRecordUsesPreGeneratedID(t *testing.T) {
	db := openTestDB(t)
	bucket := newFakeBucket()
	dispatch := &fakeDispatch{}
	svc := newRecordServiceForTest(t, db, bucket, dispatch)

	preID := uuid.New()
	result, err := svc.CreateRecord(ctxWithPreGeneratedID(preID), CreateRecordInput{
		PatientID:   uuid.New(),
		CaptureDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Uploads: []RecordUpload{
			{OriginalName: "slice_a.dcm", MimeType: "application/dicom", SizeBytes: 4, Reader: strings.NewReader("aaaa")},
			{OriginalName: "slice_b.dcm", MimeType: "application/dicom", SizeBytes: 4, Reader: strings.NewReader("bbbb")},
		},
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if result.Record.ID != preID {
		t.Fatalf("record id: want=%s got=%s", preID, result.Record.ID)
	}
	if !result.Dispatched {
		t.Fatal("expected dispatched=true")
	}
	if dispatch.calls != 1 || dispatch.lastID != preID {
		t.Fatalf("dispatch: calls=%d lastID=%s", dispatch.calls, dispatch.lastID)
	}

	// Storage keys are derived from the pre-generated id.
	wantKey := RecordInputKey(preID, 0, "slice_a.dcm")
	if _, ok := bucket.uploads[wantKey]; !ok {
		t.Fatalf("upload missing under derived key %q, have %v", wantKey, bucket.uploads)
	}

	var outputs []*types.AIOutput
	if err := db.Where("record_id = ?", preID).Find(&outputs).Error; err != nil {
		t.Fatalf("load ai outputs: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("ai outputs: want=1 got=%d", len(outputs))
	}
	if outputs[0].Status != types.AIOutputStatusPending {
		t.Fatalf("output status: want=%q got=%q", types.AIOutputStatusPending, outputs[0].Status)
	}
}

func TestCreateRecordSurvivesDispatchFailure(t *testing.T) {
	db := openTestDB(t)
	dispatch := &fakeDispatch{failErr: errors.New("connection refused")}
	svc := newRecordServiceForTest(t, db, newFakeBucket(), dispatch)

	preID := uuid.New()
	result, err := svc.CreateRecord(ctxWithPreGeneratedID(preID), CreateRecordInput{
		PatientID:   uuid.New(),
		CaptureDate: time.Now().UTC(),
		Uploads: []RecordUpload{
			{OriginalName: "scan.dcm", MimeType: "application/dicom", SizeBytes: 1, Reader: strings.NewReader("x")},
		},
	})
	if err != nil {
		t.Fatalf("CreateRecord with failed dispatch: %v", err)
	}
	if result.Dispatched {
		t.Fatal("expected dispatched=false")
	}

	// The pending row survives so the sweep can redispatch later.
	var count int64
	if err := db.Model(&types.AIOutput{}).
		Where("record_id = ? AND status = ?", preID, types.AIOutputStatusPending).
		Count(&count).Error; err != nil {
		t.Fatalf("count outputs: %v", err)
	}
	if count != 1 {
		t.Fatalf("pending outputs after failed dispatch: want=1 got=%d", count)
	}
}

func TestCreateRecordRequiresPreGeneratedID(t *testing.T) {
	db := openTestDB(t)
	svc := newRecordServiceForTest(t, db, newFakeBucket(), &fakeDispatch{})

	_, err := svc.CreateRecord(context.Background(), CreateRecordInput{
		PatientID:   uuid.New(),
		CaptureDate: time.Now().UTC(),
		Uploads: []RecordUpload{
			{OriginalName: "scan.dcm", Reader: strings.NewReader("x")},
		},
	})
	if err == nil {
		t.Fatal("expected error without pre-generated id")
	}
	if apierr.From(err).Code != apierr.CodeFatal {
		t.Fatalf("code: want=%q got=%q", apierr.CodeFatal, apierr.From(err).Code)
	}
}

func TestCreateRecordRequiresUploads(t *testing.T) {
	db := openTestDB(t)
	svc := newRecordServiceForTest(t, db, newFakeBucket(), &fakeDispatch{})

	_, err := svc.CreateRecord(ctxWithPreGeneratedID(uuid.New()), CreateRecordInput{
		PatientID:   uuid.New(),
		CaptureDate: time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("expected validation error without uploads")
	}
	if apierr.From(err).Code != apierr.CodeValidation {
		t.Fatalf("code: want=%q got=%q", apierr.CodeValidation, apierr.From(err).Code)
	}
}

func TestDeleteImageSoftDeletes(t *testing.T) {
	db := openTestDB(t)
	svc := newRecordServiceForTest(t, db, newFakeBucket(), &fakeDispatch{})

	preID := uuid.New()
	result, err := svc.CreateRecord(ctxWithPreGeneratedID(preID), CreateRecordInput{
		PatientID:   uuid.New(),
		CaptureDate: time.Now().UTC(),
		Uploads: []RecordUpload{
			{OriginalName: "scan.dcm", Reader: strings.NewReader("x")},
		},
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	imageID := result.Record.Images[0].ID

	if err := svc.DeleteImage(context.Background(), imageID); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	if err := svc.DeleteImage(context.Background(), imageID); err == nil {
		t.Fatal("expected not found deleting an already-deleted image")
	}

	// Record itself is untouched.
	if _, err := svc.GetRecord(context.Background(), preID); err != nil {
		t.Fatalf("GetRecord after image delete: %v", err)
	}
}
