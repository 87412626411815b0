package handlers

import (
  "fmt"
  "time"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/requestdata"
  "github.com/dentiqcloud/dentiq-backend/internal/services"
)

type DiagnosisHandler struct {
  diagnosisService services.DiagnosisService
}

func NewDiagnosisHandler(diagnosisService services.DiagnosisService) *DiagnosisHandler {
  return &DiagnosisHandler{diagnosisService: diagnosisService}
}

type createDiagnosisRequest struct {
  Date   *time.Time  `json:"date"`
  Note   string      `json:"note" binding:"required"`
  TagIDs []uuid.UUID `json:"tag_ids"`
}

// POST /api/patients/:patientId/diagnoses
func (h *DiagnosisHandler) CreateDiagnosis(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.PatientID == uuid.Nil {
    RespondError(c, apierr.Fatal(fmt.Errorf("patient scope missing from request context")))
    return
  }
  var req createDiagnosisRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation(fmt.Errorf("invalid diagnosis payload: %w", err)))
    return
  }
  input := services.CreateDiagnosisInput{
    PatientID: rd.PatientID,
    Note:      req.Note,
    TagIDs:    req.TagIDs,
  }
  if req.Date != nil {
    input.Date = *req.Date
  }
  diagnosis, err := h.diagnosisService.CreateDiagnosis(c.Request.Context(), input)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, diagnosis)
}

// GET /api/patients/:patientId/diagnoses
func (h *DiagnosisHandler) ListDiagnoses(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.PatientID == uuid.Nil {
    RespondError(c, apierr.Fatal(fmt.Errorf("patient scope missing from request context")))
    return
  }
  diagnoses, err := h.diagnosisService.ListDiagnoses(c.Request.Context(), rd.PatientID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"diagnoses": diagnoses})
}
