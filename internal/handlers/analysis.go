package handlers

import (
  "fmt"
  "strconv"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/requestdata"
  "github.com/dentiqcloud/dentiq-backend/internal/services"
)

type AnalysisHandler struct {
  analysisService services.AnalysisService
}

func NewAnalysisHandler(analysisService services.AnalysisService) *AnalysisHandler {
  return &AnalysisHandler{analysisService: analysisService}
}

// GET /api/patients/:patientId/analysis?limit=&offset=
func (h *AnalysisHandler) ListAnalysis(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.PatientID == uuid.Nil {
    RespondError(c, apierr.Fatal(fmt.Errorf("patient scope missing from request context")))
    return
  }
  limit := parseIntQuery(c, "limit", 0)
  offset := parseIntQuery(c, "offset", 0)

  rows, err := h.analysisService.ListAnalysis(c.Request.Context(), rd.PatientID, limit, offset)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"analysis": rows})
}

func parseIntQuery(c *gin.Context, key string, defaultVal int) int {
  raw := c.Query(key)
  if raw == "" {
    return defaultVal
  }
  v, err := strconv.Atoi(raw)
  if err != nil || v < 0 {
    return defaultVal
  }
  return v
}
