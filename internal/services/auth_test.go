package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dentiqcloud/dentiq-backend/internal/requestdata"
	"github.com/dentiqcloud/dentiq-backend/internal/types"
)

type fakeUserRepo struct {
	users []*types.User
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	f.users = append(f.users, users...)
	return users, nil
}

func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error) {
	var results []*types.User
	for _, u := range f.users {
		for _, e := range emails {
			if u.Email == e {
				results = append(results, u)
			}
		}
	}
	return results, nil
}

func newAuthServiceForTest(t *testing.T, userRepo *fakeUserRepo) AuthService {
	t.Helper()
	return NewAuthService(newTestLogger(t), userRepo, "session-secret", "service-secret", time.Hour)
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string) *types.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &types.User{
		ID:       uuid.New(),
		Name:     "Test Doctor",
		Email:    email,
		Password: string(hash),
	}
	repo.Create(context.Background(), nil, []*types.User{user})
	return user
}

func TestLoginRoundTrip(t *testing.T) {
	userRepo := &fakeUserRepo{}
	svc := newAuthServiceForTest(t, userRepo)
	user := seedUser(t, userRepo, "doc@clinic.test", "hunter22")

	token, err := svc.Login(context.Background(), "doc@clinic.test", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("principal: want=%s got=%+v", user.ID, rd)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	userRepo := &fakeUserRepo{}
	svc := newAuthServiceForTest(t, userRepo)
	seedUser(t, userRepo, "doc@clinic.test", "hunter22")

	if _, err := svc.Login(context.Background(), "doc@clinic.test", "wrong"); err == nil {
		t.Fatal("expected login failure on bad password")
	}
	if _, err := svc.Login(context.Background(), "nobody@clinic.test", "hunter22"); err == nil {
		t.Fatal("expected login failure on unknown email")
	}
}

func TestVerifyServiceToken(t *testing.T) {
	svc := newAuthServiceForTest(t, &fakeUserRepo{})

	claims := ServiceClaims{
		Service: "cbct-inference",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("service-secret"))
	if err != nil {
		t.Fatalf("sign service token: %v", err)
	}

	service, err := svc.VerifyServiceToken(signed)
	if err != nil {
		t.Fatalf("VerifyServiceToken: %v", err)
	}
	if service != "cbct-inference" {
		t.Fatalf("service identity: want=%q got=%q", "cbct-inference", service)
	}
}

// A session token must never pass the service-token check even if both are
// valid HS256: the secrets differ.
func TestServiceTokenRejectsSessionToken(t *testing.T) {
	userRepo := &fakeUserRepo{}
	svc := newAuthServiceForTest(t, userRepo)
	seedUser(t, userRepo, "doc@clinic.test", "hunter22")

	sessionToken, err := svc.Login(context.Background(), "doc@clinic.test", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.VerifyServiceToken(sessionToken); err == nil {
		t.Fatal("session token accepted as service token")
	}
}

func TestSessionRejectsServiceToken(t *testing.T) {
	svc := newAuthServiceForTest(t, &fakeUserRepo{})

	claims := ServiceClaims{
		Service: "cbct-inference",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("service-secret"))
	if err != nil {
		t.Fatalf("sign service token: %v", err)
	}
	if _, err := svc.SetContextFromToken(context.Background(), signed); err == nil {
		t.Fatal("service token accepted as session token")
	}
}
