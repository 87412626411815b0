package services

import (
  "context"
  "fmt"
  "golang.org/x/sync/singleflight"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/membercache"
  "github.com/dentiqcloud/dentiq-backend/internal/repos"
  "github.com/dentiqcloud/dentiq-backend/internal/types"
)

// MembershipService answers "is this user an active member of this clinic"
// through a read-through cache keyed by user id. Stale reads inside the cache
// TTL are acceptable; membership-changing writes invalidate the key.
type MembershipService interface {
  IsMember(ctx context.Context, userID, clinicID uuid.UUID) (bool, error)
  ClinicIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
  AddMember(ctx context.Context, tx *gorm.DB, member *types.ClinicMember) (*types.ClinicMember, error)
  RemoveMember(ctx context.Context, tx *gorm.DB, clinicID, userID uuid.UUID) error
}

type membershipService struct {
  log        *logger.Logger
  memberRepo repos.ClinicMemberRepo
  cache      membercache.Store
  group      singleflight.Group
}

func NewMembershipService(log *logger.Logger, memberRepo repos.ClinicMemberRepo, cache membercache.Store) MembershipService {
  serviceLog := log.With("service", "MembershipService")
  return &membershipService{
    log:        serviceLog,
    memberRepo: memberRepo,
    cache:      cache,
  }
}

func (ms *membershipService) ClinicIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
  cached, ok, err := ms.cache.Get(ctx, userID)
  if err != nil {
    ms.log.Warn("Membership cache read failed, falling through to db", "error", err)
  }
  if ok {
    return cached, nil
  }

  // Collapse concurrent misses for the same user into one db read.
  v, err, _ := ms.group.Do(userID.String(), func() (interface{}, error) {
    members, mErr := ms.memberRepo.GetByUserID(ctx, nil, userID)
    if mErr != nil {
      return nil, fmt.Errorf("Failed to load clinic memberships: %w", mErr)
    }
    ids := make([]uuid.UUID, 0, len(members))
    for _, m := range members {
      ids = append(ids, m.ClinicID)
    }
    if sErr := ms.cache.Set(ctx, userID, ids); sErr != nil {
      ms.log.Warn("Membership cache write failed", "error", sErr)
    }
    return ids, nil
  })
  if err != nil {
    return nil, err
  }
  return v.([]uuid.UUID), nil
}

func (ms *membershipService) IsMember(ctx context.Context, userID, clinicID uuid.UUID) (bool, error) {
  ids, err := ms.ClinicIDs(ctx, userID)
  if err != nil {
    return false, err
  }
  for _, id := range ids {
    if id == clinicID {
      return true, nil
    }
  }
  return false, nil
}

func (ms *membershipService) AddMember(ctx context.Context, tx *gorm.DB, member *types.ClinicMember) (*types.ClinicMember, error) {
  created, err := ms.memberRepo.Create(ctx, tx, []*types.ClinicMember{member})
  if err != nil {
    return nil, fmt.Errorf("Failed to create clinic member: %w", err)
  }
  if iErr := ms.cache.Invalidate(ctx, member.UserID); iErr != nil {
    ms.log.Warn("Membership cache invalidation failed", "error", iErr, "user_id", member.UserID)
  }
  return created[0], nil
}

func (ms *membershipService) RemoveMember(ctx context.Context, tx *gorm.DB, clinicID, userID uuid.UUID) error {
  if err := ms.memberRepo.SoftDeleteByClinicAndUserID(ctx, tx, clinicID, userID); err != nil {
    return fmt.Errorf("Failed to remove clinic member: %w", err)
  }
  if iErr := ms.cache.Invalidate(ctx, userID); iErr != nil {
    ms.log.Warn("Membership cache invalidation failed", "error", iErr, "user_id", userID)
  }
  return nil
}
