package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dentiqcloud/dentiq-backend/internal/apierr"
	"github.com/dentiqcloud/dentiq-backend/internal/types"
)

func testRecord() *types.CbctRecord {
	return &types.CbctRecord{
		ID:          uuid.New(),
		PatientID:   uuid.New(),
		CaptureDate: time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC),
	}
}

func TestDispatchSendsAnalyzeRequest(t *testing.T) {
	var got dispatchRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode dispatch body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	t.Setenv("AI_SERVICE_URL", server.URL)
	t.Setenv("AI_SERVICE_TOKEN", "svc-token")
	client, err := NewAIDispatchClient(newTestLogger(t))
	if err != nil {
		t.Fatalf("NewAIDispatchClient: %v", err)
	}

	record := testRecord()
	keys := []string{"patient/cbct/x/input/00_a.dcm", "patient/cbct/x/input/01_b.dcm"}
	if err := client.Dispatch(context.Background(), record, keys); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got.RecordID != record.ID.String() {
		t.Fatalf("record_id: want=%q got=%q", record.ID, got.RecordID)
	}
	if len(got.ImagePaths) != 2 {
		t.Fatalf("image_paths: want=2 got=%d", len(got.ImagePaths))
	}
	if gotAuth != "Bearer svc-token" {
		t.Fatalf("auth header: got=%q", gotAuth)
	}
}

func TestDispatchNon2xxIsUpstreamUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model cold start", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	t.Setenv("AI_SERVICE_URL", server.URL)
	client, err := NewAIDispatchClient(newTestLogger(t))
	if err != nil {
		t.Fatalf("NewAIDispatchClient: %v", err)
	}

	err = client.Dispatch(context.Background(), testRecord(), []string{"k"})
	if err == nil {
		t.Fatal("expected dispatch error")
	}
	if apierr.From(err).Code != apierr.CodeUpstreamUnavailable {
		t.Fatalf("code: want=%q got=%q", apierr.CodeUpstreamUnavailable, apierr.From(err).Code)
	}
}

func TestDispatchUnreachableServiceIsUpstreamUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	t.Setenv("AI_SERVICE_URL", server.URL)
	client, err := NewAIDispatchClient(newTestLogger(t))
	if err != nil {
		t.Fatalf("NewAIDispatchClient: %v", err)
	}

	err = client.Dispatch(context.Background(), testRecord(), nil)
	if err == nil {
		t.Fatal("expected dispatch error")
	}
	if apierr.From(err).Code != apierr.CodeUpstreamUnavailable {
		t.Fatalf("code: want=%q got=%q", apierr.CodeUpstreamUnavailable, apierr.From(err).Code)
	}
}

func TestDispatchRequiresServiceURL(t *testing.T) {
	t.Setenv("AI_SERVICE_URL", "")
	if _, err := NewAIDispatchClient(newTestLogger(t)); err == nil {
		t.Fatal("expected error without AI_SERVICE_URL")
	}
}
