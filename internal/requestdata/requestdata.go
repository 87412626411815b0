package requestdata

import (
  "context"
  "github.com/google/uuid"
)

var requestDataKey = struct{}{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
  return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
  val := ctx.Value(requestDataKey)
  if rd, ok := val.(*RequestData); ok {
    return rd
  }
  return nil
}

// RequestData carries the authenticated principal and the scopes the guard
// chain has resolved so far. Middleware mutates the pointer in place so later
// handlers see what earlier guards attached.
type RequestData struct {
  TokenString     string
  UserID          uuid.UUID
  ServiceName     string
  ClinicID        uuid.UUID
  PatientID       uuid.UUID
  PreGeneratedID  uuid.UUID
}
