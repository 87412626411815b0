package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentiqcloud/dentiq-backend/internal/membercache"
	"github.com/dentiqcloud/dentiq-backend/internal/types"
)

type fakeClinicMemberRepo struct {
	mu      sync.Mutex
	members map[uuid.UUID][]*types.ClinicMember
	loads   int
}

func newFakeClinicMemberRepo() *fakeClinicMemberRepo {
	return &fakeClinicMemberRepo{members: make(map[uuid.UUID][]*types.ClinicMember)}
}

func (f *fakeClinicMemberRepo) Create(ctx context.Context, tx *gorm.DB, members []*types.ClinicMember) ([]*types.ClinicMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range members {
		f.members[m.UserID] = append(f.members[m.UserID], m)
	}
	return members, nil
}

func (f *fakeClinicMemberRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ClinicMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.members[userID], nil
}

func (f *fakeClinicMemberRepo) SoftDeleteByClinicAndUserID(ctx context.Context, tx *gorm.DB, clinicID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.members[userID][:0]
	for _, m := range f.members[userID] {
		if m.ClinicID != clinicID {
			kept = append(kept, m)
		}
	}
	f.members[userID] = kept
	return nil
}

func (f *fakeClinicMemberRepo) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func TestIsMemberReadsThroughCache(t *testing.T) {
	repo := newFakeClinicMemberRepo()
	cache := membercache.NewMemoryStore(time.Minute)
	svc := NewMembershipService(newTestLogger(t), repo, cache)

	userID := uuid.New()
	clinicID := uuid.New()
	repo.Create(context.Background(), nil, []*types.ClinicMember{
		{ID: uuid.New(), ClinicID: clinicID, UserID: userID, Role: "doctor"},
	})
	repo.loads = 0

	for i := 0; i < 3; i++ {
		ok, err := svc.IsMember(context.Background(), userID, clinicID)
		if err != nil {
			t.Fatalf("IsMember: %v", err)
		}
		if !ok {
			t.Fatalf("want member, got not-member on call %d", i)
		}
	}
	if repo.loadCount() != 1 {
		t.Fatalf("db loads: want=1 got=%d", repo.loadCount())
	}

	ok, err := svc.IsMember(context.Background(), userID, uuid.New())
	if err != nil {
		t.Fatalf("IsMember other clinic: %v", err)
	}
	if ok {
		t.Fatal("member of unrelated clinic")
	}
}

func TestAddMemberInvalidatesCache(t *testing.T) {
	repo := newFakeClinicMemberRepo()
	cache := membercache.NewMemoryStore(time.Minute)
	svc := NewMembershipService(newTestLogger(t), repo, cache)

	userID := uuid.New()
	clinicID := uuid.New()

	ok, err := svc.IsMember(context.Background(), userID, clinicID)
	if err != nil {
		t.Fatalf("IsMember before add: %v", err)
	}
	if ok {
		t.Fatal("member before being added")
	}

	if _, err := svc.AddMember(context.Background(), nil, &types.ClinicMember{
		ID:       uuid.New(),
		ClinicID: clinicID,
		UserID:   userID,
		Role:     "doctor",
	}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	// The cached empty set must not survive the write.
	ok, err = svc.IsMember(context.Background(), userID, clinicID)
	if err != nil {
		t.Fatalf("IsMember after add: %v", err)
	}
	if !ok {
		t.Fatal("stale cache still denies membership after AddMember")
	}
}

func TestRemoveMemberInvalidatesCache(t *testing.T) {
	repo := newFakeClinicMemberRepo()
	cache := membercache.NewMemoryStore(time.Minute)
	svc := NewMembershipService(newTestLogger(t), repo, cache)

	userID := uuid.New()
	clinicID := uuid.New()
	if _, err := svc.AddMember(context.Background(), nil, &types.ClinicMember{
		ID:       uuid.New(),
		ClinicID: clinicID,
		UserID:   userID,
		Role:     "doctor",
	}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if ok, _ := svc.IsMember(context.Background(), userID, clinicID); !ok {
		t.Fatal("member missing after add")
	}

	if err := svc.RemoveMember(context.Background(), nil, clinicID, userID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	ok, err := svc.IsMember(context.Background(), userID, clinicID)
	if err != nil {
		t.Fatalf("IsMember after remove: %v", err)
	}
	if ok {
		t.Fatal("stale cache still grants membership after RemoveMember")
	}
}
