package handlers

import (
  "fmt"
  "time"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/requestdata"
  "github.com/dentiqcloud/dentiq-backend/internal/services"
)

type RecordHandler struct {
  log           *logger.Logger
  recordService services.RecordService
}

func NewRecordHandler(log *logger.Logger, recordService services.RecordService) *RecordHandler {
  return &RecordHandler{
    log:           log.With("handler", "RecordHandler"),
    recordService: recordService,
  }
}

// POST /api/patients/:patientId/cbct-records
// Multipart upload: "capture_date" field (RFC3339 or 2006-01-02) plus one or
// more "images" files. The patient guard has already resolved the patient and
// the pregen middleware minted the record id.
func (h *RecordHandler) CreateRecord(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.PatientID == uuid.Nil {
    RespondError(c, apierr.Fatal(fmt.Errorf("patient scope missing from request context")))
    return
  }

  form, err := c.MultipartForm()
  if err != nil {
    RespondError(c, apierr.Validation(fmt.Errorf("invalid multipart form: %w", err)))
    return
  }
  captureDate, err := parseCaptureDate(c.PostForm("capture_date"))
  if err != nil {
    RespondError(c, apierr.Validation(err))
    return
  }
  files := form.File["images"]
  if len(files) == 0 {
    RespondError(c, apierr.Validation(fmt.Errorf("at least one image file is required")))
    return
  }

  uploads := make([]services.RecordUpload, 0, len(files))
  for _, fh := range files {
    f, oErr := fh.Open()
    if oErr != nil {
      RespondError(c, apierr.Validation(fmt.Errorf("Failed to open uploaded file: %w", oErr)))
      return
    }
    defer f.Close()
    uploads = append(uploads, services.RecordUpload{
      OriginalName: fh.Filename,
      MimeType:     fh.Header.Get("Content-Type"),
      SizeBytes:    fh.Size,
      Reader:       f,
    })
  }

  result, err := h.recordService.CreateRecord(c.Request.Context(), services.CreateRecordInput{
    PatientID:   rd.PatientID,
    CaptureDate: captureDate,
    Uploads:     uploads,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, result)
}

// GET /api/patients/:patientId/cbct-records
func (h *RecordHandler) ListRecords(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.PatientID == uuid.Nil {
    RespondError(c, apierr.Fatal(fmt.Errorf("patient scope missing from request context")))
    return
  }
  records, err := h.recordService.ListRecords(c.Request.Context(), rd.PatientID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"records": records})
}

// GET /api/cbct-records/:recordId
func (h *RecordHandler) GetRecord(c *gin.Context) {
  recordID, err := uuid.Parse(c.Param("recordId"))
  if err != nil {
    RespondError(c, apierr.Validation(fmt.Errorf("malformed record id")))
    return
  }
  record, err := h.recordService.GetRecord(c.Request.Context(), recordID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, record)
}

// DELETE /api/cbct-images/:imageId
func (h *RecordHandler) DeleteImage(c *gin.Context) {
  imageID, err := uuid.Parse(c.Param("imageId"))
  if err != nil {
    RespondError(c, apierr.Validation(fmt.Errorf("malformed image id")))
    return
  }
  if err := h.recordService.DeleteImage(c.Request.Context(), imageID); err != nil {
    RespondError(c, err)
    return
  }
  RespondSuccess(c, "image deleted")
}

func parseCaptureDate(raw string) (time.Time, error) {
  if raw == "" {
    return time.Now(), nil
  }
  if t, err := time.Parse(time.RFC3339, raw); err == nil {
    return t, nil
  }
  if t, err := time.Parse("2006-01-02", raw); err == nil {
    return t, nil
  }
  return time.Time{}, fmt.Errorf("capture_date must be RFC3339 or YYYY-MM-DD")
}
