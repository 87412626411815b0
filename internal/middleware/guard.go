package middleware

import (
  "context"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/handlers"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/repos"
  "github.com/dentiqcloud/dentiq-backend/internal/requestdata"
  "github.com/dentiqcloud/dentiq-backend/internal/services"
)

// ScopeKind selects which resource the guard resolves to a clinic scope.
type ScopeKind string

const (
  ScopeClinic  ScopeKind = "clinic"
  ScopePatient ScopeKind = "patient"
  ScopeRecord  ScopeKind = "record"
  ScopeImage   ScopeKind = "image"
)

// ScopeSource names where in the request the scoping identifier lives.
type ScopeSource string

const (
  SourceHeader ScopeSource = "header"
  SourceParam  ScopeSource = "param"
  SourceQuery  ScopeSource = "query"
)

// GuardSpec is the variant configuration for one guarded route: which field
// holds the scoping id and from which part of the request to read it. All
// variants share the same resolution logic, they only differ in how the
// owning clinic is reached.
type GuardSpec struct {
  Kind   ScopeKind
  Source ScopeSource
  Field  string
}

// ScopeGuard enforces the tenant boundary: the authenticated user must be an
// active member of the clinic owning the resource under request. It runs after
// request validation and before the business handler, and attaches the
// resolved clinic/patient ids to request context so handlers skip the lookups.
type ScopeGuard struct {
  log         *logger.Logger
  membership  services.MembershipService
  patientRepo repos.PatientRepo
  recordRepo  repos.CbctRecordRepo
  imageRepo   repos.CbctImageRepo
}

func NewScopeGuard(
  log *logger.Logger,
  membership services.MembershipService,
  patientRepo repos.PatientRepo,
  recordRepo repos.CbctRecordRepo,
  imageRepo repos.CbctImageRepo,
) *ScopeGuard {
  return &ScopeGuard{
    log:         log.With("middleware", "ScopeGuard"),
    membership:  membership,
    patientRepo: patientRepo,
    recordRepo:  recordRepo,
    imageRepo:   imageRepo,
  }
}

func (g *ScopeGuard) Require(spec GuardSpec) gin.HandlerFunc {
  return func(c *gin.Context) {
    ctx := c.Request.Context()
    rd := requestdata.GetRequestData(ctx)
    if rd == nil || rd.UserID == uuid.Nil {
      handlers.RespondAbort(c, http.StatusUnauthorized, apierr.CodeUnauthenticated, "no principal attached")
      return
    }

    rawID := extractScopeID(c, spec)
    if rawID == "" {
      handlers.RespondAbort(c, http.StatusBadRequest, apierr.CodeValidation, "missing "+spec.Field)
      return
    }
    scopeID, err := uuid.Parse(rawID)
    if err != nil {
      handlers.RespondAbort(c, http.StatusBadRequest, apierr.CodeValidation, "malformed "+spec.Field)
      return
    }

    clinicID, patientID, rErr := g.resolveClinicScope(ctx, spec.Kind, scopeID)
    if rErr != nil {
      apiErr := apierr.From(rErr)
      handlers.RespondAbort(c, apiErr.Status, apiErr.Code, apiErr.Error())
      return
    }

    member, mErr := g.membership.IsMember(ctx, rd.UserID, clinicID)
    if mErr != nil {
      apiErr := apierr.From(mErr)
      handlers.RespondAbort(c, apiErr.Status, apiErr.Code, apiErr.Error())
      return
    }
    if !member {
      handlers.RespondAbort(c, http.StatusForbidden, apierr.CodeForbidden, "not a member of the owning clinic")
      return
    }

    rd.ClinicID = clinicID
    rd.PatientID = patientID
    c.Next()
  }
}

func extractScopeID(c *gin.Context, spec GuardSpec) string {
  switch spec.Source {
  case SourceHeader:
    return c.GetHeader(spec.Field)
  case SourceQuery:
    return c.Query(spec.Field)
  default:
    return c.Param(spec.Field)
  }
}

// resolveClinicScope walks from the scoping resource up to its owning clinic.
// A missing resource along the walk is the caller's NotFound, not Forbidden:
// membership is only checked against clinics that exist.
func (g *ScopeGuard) resolveClinicScope(ctx context.Context, kind ScopeKind, scopeID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
  switch kind {
  case ScopeClinic:
    return scopeID, uuid.Nil, nil
  case ScopePatient:
    return g.clinicOfPatient(ctx, scopeID)
  case ScopeRecord:
    return g.clinicOfRecord(ctx, scopeID)
  case ScopeImage:
    images, err := g.imageRepo.GetByIDs(ctx, nil, []uuid.UUID{scopeID})
    if err != nil {
      return uuid.Nil, uuid.Nil, err
    }
    if len(images) == 0 {
      return uuid.Nil, uuid.Nil, apierr.NotFound(errImageNotFound)
    }
    return g.clinicOfRecord(ctx, images[0].RecordID)
  default:
    return uuid.Nil, uuid.Nil, apierr.Fatal(errUnknownScopeKind)
  }
}

func (g *ScopeGuard) clinicOfPatient(ctx context.Context, patientID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
  patients, err := g.patientRepo.GetByIDs(ctx, nil, []uuid.UUID{patientID})
  if err != nil {
    return uuid.Nil, uuid.Nil, err
  }
  if len(patients) == 0 {
    return uuid.Nil, uuid.Nil, apierr.NotFound(errPatientNotFound)
  }
  return patients[0].ClinicID, patients[0].ID, nil
}

func (g *ScopeGuard) clinicOfRecord(ctx context.Context, recordID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
  records, err := g.recordRepo.GetByIDs(ctx, nil, []uuid.UUID{recordID})
  if err != nil {
    return uuid.Nil, uuid.Nil, err
  }
  if len(records) == 0 {
    return uuid.Nil, uuid.Nil, apierr.NotFound(errRecordNotFound)
  }
  return g.clinicOfPatient(ctx, records[0].PatientID)
}
