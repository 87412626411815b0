package middleware

import "errors"

var (
  errPatientNotFound  = errors.New("patient not found")
  errRecordNotFound   = errors.New("record not found")
  errImageNotFound    = errors.New("image not found")
  errUnknownScopeKind = errors.New("unknown scope kind")
)
