package handlers

import (
  "fmt"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/services"
)

type AIOutputHandler struct {
  log             *logger.Logger
  aiOutputService services.AIOutputService
}

func NewAIOutputHandler(log *logger.Logger, aiOutputService services.AIOutputService) *AIOutputHandler {
  return &AIOutputHandler{
    log:             log.With("handler", "AIOutputHandler"),
    aiOutputService: aiOutputService,
  }
}

type completeOutputRequest struct {
  Success           bool     `json:"success"`
  Risk              *string  `json:"risk"`
  Phenotype         *string  `json:"phenotype"`
  Prescription      *string  `json:"prescription"`
  TreatmentImageURL *string  `json:"treatment_image_url"`
  PhenotypeImageURL *string  `json:"phenotype_image_url"`
  OutputFileURLs    []string `json:"output_file_urls"`
  ErrorDetail       string   `json:"error_detail"`
}

// PUT /cbct/ai-outputs/:id/complete
// Inbound completion callback from the inference service, authenticated with
// the service-scoped token. The path id is the record id the output was
// dispatched under. Duplicate callbacks for a settled output get a success
// envelope, never an error: the external service must not retry forever.
func (h *AIOutputHandler) CompleteOutput(c *gin.Context) {
  recordID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation(fmt.Errorf("malformed record id")))
    return
  }
  var req completeOutputRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation(fmt.Errorf("invalid callback payload: %w", err)))
    return
  }

  if !req.Success {
    detail := req.ErrorDetail
    if detail == "" {
      detail = "inference service reported failure without detail"
    }
    if _, err := h.aiOutputService.Fail(c.Request.Context(), recordID, detail); err != nil {
      RespondError(c, err)
      return
    }
    RespondSuccess(c, "failure recorded")
    return
  }

  if _, err := h.aiOutputService.Complete(c.Request.Context(), recordID, services.CompleteOutputInput{
    Risk:              req.Risk,
    Phenotype:         req.Phenotype,
    Prescription:      req.Prescription,
    TreatmentImageURL: req.TreatmentImageURL,
    PhenotypeImageURL: req.PhenotypeImageURL,
    OutputFileURLs:    req.OutputFileURLs,
  }); err != nil {
    RespondError(c, err)
    return
  }
  RespondSuccess(c, "completion recorded")
}
