package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "time"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
  "github.com/dentiqcloud/dentiq-backend/internal/utils"
)

// AIDispatchClient notifies the external inference service that a CBCT record
// is ready for analysis. The send is at-least-once and fire-and-continue: the
// remote service is idempotent keyed by record id, and a failed dispatch never
// rolls back the committed record.
type AIDispatchClient interface {
  Dispatch(ctx context.Context, record *types.CbctRecord, imageKeys []string) error
}

type dispatchRequest struct {
  RecordID    string   `json:"record_id"`
  PatientID   string   `json:"patient_id"`
  CaptureDate string   `json:"capture_date"`
  ImagePaths  []string `json:"image_paths"`
}

type aiDispatchClient struct {
  httpClient *http.Client
  log        *logger.Logger
  baseURL    string
  authToken  string
}

func NewAIDispatchClient(log *logger.Logger) (AIDispatchClient, error) {
  serviceLog := log.With("service", "AIDispatchClient")
  baseURL := utils.GetEnv("AI_SERVICE_URL", "", log)
  if baseURL == "" {
    return nil, fmt.Errorf("AI_SERVICE_URL is not set")
  }
  authToken := utils.GetEnv("AI_SERVICE_TOKEN", "", log)
  timeoutSeconds := utils.GetEnvAsInt("AI_DISPATCH_TIMEOUT_SECONDS", 30, log)
  return &aiDispatchClient{
    httpClient: &http.Client{
      Timeout: time.Duration(timeoutSeconds) * time.Second,
    },
    log:       serviceLog,
    baseURL:   baseURL,
    authToken: authToken,
  }, nil
}

func (c *aiDispatchClient) Dispatch(ctx context.Context, record *types.CbctRecord, imageKeys []string) error {
  payload := dispatchRequest{
    RecordID:    record.ID.String(),
    PatientID:   record.PatientID.String(),
    CaptureDate: record.CaptureDate.Format(time.RFC3339),
    ImagePaths:  imageKeys,
  }
  body, err := json.Marshal(payload)
  if err != nil {
    return fmt.Errorf("Failed to marshal dispatch payload: %w", err)
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
  if err != nil {
    return fmt.Errorf("Failed to build dispatch request: %w", err)
  }
  req.Header.Set("Content-Type", "application/json")
  if c.authToken != "" {
    req.Header.Set("Authorization", "Bearer "+c.authToken)
  }

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return apierr.UpstreamUnavailable(fmt.Errorf("Failed to reach inference service: %w", err))
  }
  defer resp.Body.Close()
  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
    return apierr.UpstreamUnavailable(fmt.Errorf("inference service returned %d: %s", resp.StatusCode, string(snippet)))
  }
  c.log.Debug("Dispatched record to inference service", "record_id", record.ID, "images", len(imageKeys))
  return nil
}
