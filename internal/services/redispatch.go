package services

import (
  "context"
  "time"
  "github.com/google/uuid"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/repos"
)

// RedispatchWorker sweeps AI outputs stuck in pending and re-sends their
// dispatch. The inference service is idempotent keyed by record id, so a
// duplicate send is harmless.
type RedispatchWorker struct {
  log       *logger.Logger
  aiRepo    repos.AIOutputRepo
  imageRepo repos.CbctImageRepo
  dispatch  AIDispatchClient
  interval  time.Duration
  minAge    time.Duration
  batchSize int
}

func NewRedispatchWorker(
  log *logger.Logger,
  aiRepo repos.AIOutputRepo,
  imageRepo repos.CbctImageRepo,
  dispatch AIDispatchClient,
  interval time.Duration,
  minAge time.Duration,
  batchSize int,
) *RedispatchWorker {
  return &RedispatchWorker{
    log:       log.With("worker", "RedispatchWorker"),
    aiRepo:    aiRepo,
    imageRepo: imageRepo,
    dispatch:  dispatch,
    interval:  interval,
    minAge:    minAge,
    batchSize: batchSize,
  }
}

func (w *RedispatchWorker) Start(ctx context.Context) {
  go func() {
    ticker := time.NewTicker(w.interval)
    defer ticker.Stop()
    for {
      select {
      case <-ctx.Done():
        return
      case <-ticker.C:
        w.sweep(ctx)
      }
    }
  }()
}

func (w *RedispatchWorker) sweep(ctx context.Context) {
  cutoff := time.Now().Add(-w.minAge)
  stale, err := w.aiRepo.GetStalePending(ctx, nil, cutoff, w.batchSize)
  if err != nil {
    w.log.Warn("Stale pending sweep query failed", "error", err)
    return
  }
  if len(stale) == 0 {
    return
  }
  w.log.Info("Re-dispatching stale pending ai outputs", "count", len(stale))

  touched := make([]uuid.UUID, 0, len(stale))
  for _, output := range stale {
    if output.Record == nil {
      continue
    }
    images, iErr := w.imageRepo.GetByRecordIDs(ctx, nil, []uuid.UUID{output.RecordID})
    if iErr != nil {
      w.log.Warn("Failed to load images for re-dispatch", "record_id", output.RecordID, "error", iErr)
      continue
    }
    keys := make([]string, 0, len(images))
    for _, img := range images {
      keys = append(keys, img.StorageKey)
    }
    if dErr := w.dispatch.Dispatch(ctx, output.Record, keys); dErr != nil {
      w.log.Warn("Re-dispatch failed", "record_id", output.RecordID, "error", dErr)
      continue
    }
    touched = append(touched, output.ID)
  }

  // Bump updated_at so the next sweep skips records just re-sent.
  if err := w.aiRepo.TouchByIDs(ctx, nil, touched); err != nil {
    w.log.Warn("Failed to touch re-dispatched outputs", "error", err)
  }
}
