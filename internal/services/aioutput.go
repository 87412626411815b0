package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/repos"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

// ArtifactFetcher pulls a result artifact from the inference service so it can
// be re-stored in our own bucket before the external retention window closes.
type ArtifactFetcher interface {
  Fetch(ctx context.Context, url string) ([]byte, error)
}

type httpArtifactFetcher struct {
  httpClient *http.Client
}

func NewHTTPArtifactFetcher() ArtifactFetcher {
  return &httpArtifactFetcher{
    httpClient: &http.Client{Timeout: 60 * time.Second},
  }
}

func (f *httpArtifactFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
  req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
  if err != nil {
    return nil, fmt.Errorf("Failed to build artifact request: %w", err)
  }
  resp, err := f.httpClient.Do(req)
  if err != nil {
    return nil, apierr.UpstreamUnavailable(fmt.Errorf("Failed to fetch artifact: %w", err))
  }
  defer resp.Body.Close()
  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    return nil, apierr.UpstreamUnavailable(fmt.Errorf("artifact fetch returned %d", resp.StatusCode))
  }
  return io.ReadAll(resp.Body)
}

type CompleteOutputInput struct {
  Risk              *string
  Phenotype         *string
  Prescription      *string
  TreatmentImageURL *string
  PhenotypeImageURL *string
  OutputFileURLs    []string
}

type AIOutputService interface {
  Complete(ctx context.Context, recordID uuid.UUID, input CompleteOutputInput) (*types.AIOutput, error)
  Fail(ctx context.Context, recordID uuid.UUID, errorDetail string) (*types.AIOutput, error)
}

type aiOutputService struct {
  log     *logger.Logger
  aiRepo  repos.AIOutputRepo
  bucket  BucketService
  fetcher ArtifactFetcher
}

func NewAIOutputService(log *logger.Logger, aiRepo repos.AIOutputRepo, bucket BucketService, fetcher ArtifactFetcher) AIOutputService {
  serviceLog := log.With("service", "AIOutputService")
  return &aiOutputService{
    log:     serviceLog,
    aiRepo:  aiRepo,
    bucket:  bucket,
    fetcher: fetcher,
  }
}

// Complete drives the pending -> completed transition. The callback is
// at-least-once, so a row already in a terminal state is returned as-is
// without touching storage; the terminal write itself is a conditional update
// so two racing callbacks settle on exactly one outcome.
func (s *aiOutputService) Complete(ctx context.Context, recordID uuid.UUID, input CompleteOutputInput) (*types.AIOutput, error) {
  output, err := s.getByRecordID(ctx, recordID)
  if err != nil {
    return nil, err
  }
  if types.IsTerminalAIOutputStatus(output.Status) {
    s.log.Debug("Duplicate completion callback for settled output", "record_id", recordID, "status", output.Status)
    return output, nil
  }

  fields, err := s.storeArtifacts(ctx, recordID, input)
  if err != nil {
    return nil, err
  }

  updated, err := s.aiRepo.CompleteIfPending(ctx, nil, recordID, fields)
  if err != nil {
    return nil, fmt.Errorf("Failed to complete ai output: %w", err)
  }
  if !updated {
    // Lost the race to another callback; the row settled underneath us.
    settled, rErr := s.getByRecordID(ctx, recordID)
    if rErr != nil {
      return nil, rErr
    }
    s.log.Debug("Completion lost conditional update, returning settled row", "record_id", recordID, "status", settled.Status)
    return settled, nil
  }

  return s.getByRecordID(ctx, recordID)
}

// Fail drives the pending -> failed transition. Failure detail is persisted
// for operators; nothing is retried automatically.
func (s *aiOutputService) Fail(ctx context.Context, recordID uuid.UUID, errorDetail string) (*types.AIOutput, error) {
  output, err := s.getByRecordID(ctx, recordID)
  if err != nil {
    return nil, err
  }
  if types.IsTerminalAIOutputStatus(output.Status) {
    return output, nil
  }

  updated, err := s.aiRepo.FailIfPending(ctx, nil, recordID, errorDetail)
  if err != nil {
    return nil, fmt.Errorf("Failed to mark ai output failed: %w", err)
  }
  if !updated {
    settled, rErr := s.getByRecordID(ctx, recordID)
    if rErr != nil {
      return nil, rErr
    }
    return settled, nil
  }

  return s.getByRecordID(ctx, recordID)
}

// getByRecordID treats an absent row as a retryable not-found: the callback
// can land before the creation transaction is visible, and the external
// service retries with backoff.
func (s *aiOutputService) getByRecordID(ctx context.Context, recordID uuid.UUID) (*types.AIOutput, error) {
  outputs, err := s.aiRepo.GetByRecordIDs(ctx, nil, []uuid.UUID{recordID})
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch ai output: %w", err)
  }
  if len(outputs) == 0 {
    return nil, apierr.NotFound(fmt.Errorf("ai output for record %s not visible yet", recordID))
  }
  return outputs[0], nil
}

func (s *aiOutputService) storeArtifacts(ctx context.Context, recordID uuid.UUID, input CompleteOutputInput) (repos.AIOutputCompletion, error) {
  fields := repos.AIOutputCompletion{
    Risk:         input.Risk,
    Phenotype:    input.Phenotype,
    Prescription: input.Prescription,
  }

  if input.TreatmentImageURL != nil {
    key, err := s.copyArtifact(ctx, *input.TreatmentImageURL, RecordOutputKey(recordID, "treatment_image"))
    if err != nil {
      return fields, err
    }
    fields.TreatmentImageKey = &key
  }
  if input.PhenotypeImageURL != nil {
    key, err := s.copyArtifact(ctx, *input.PhenotypeImageURL, RecordOutputKey(recordID, "phenotype_image"))
    if err != nil {
      return fields, err
    }
    fields.PhenotypeImageKey = &key
  }
  if len(input.OutputFileURLs) > 0 {
    keys := make([]string, 0, len(input.OutputFileURLs))
    for i, url := range input.OutputFileURLs {
      key, err := s.copyArtifact(ctx, url, RecordOutputKey(recordID, fmt.Sprintf("files/%02d", i)))
      if err != nil {
        return fields, err
      }
      keys = append(keys, key)
    }
    raw, mErr := json.Marshal(keys)
    if mErr != nil {
      return fields, fmt.Errorf("Failed to marshal output file keys: %w", mErr)
    }
    fields.OutputFileKeys = datatypes.JSON(raw)
  }

  return fields, nil
}

func (s *aiOutputService) copyArtifact(ctx context.Context, url, key string) (string, error) {
  data, err := s.fetcher.Fetch(ctx, url)
  if err != nil {
    return "", fmt.Errorf("Failed to fetch artifact %q: %w", url, err)
  }
  if err := s.bucket.UploadFile(ctx, key, bytes.NewReader(data)); err != nil {
    return "", fmt.Errorf("Failed to store artifact %q: %w", key, err)
  }
  return key, nil
}
