package services

import (
  "context"
  "fmt"
  "time"
  "golang.org/x/crypto/bcrypt"
  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/repos"
  "github.com/dentiqcloud/dentiq-backend/internal/requestdata"
)

// ServiceClaims is the capability-scoped token shape the inference service
// authenticates with. It asserts a service identity, never a user subject, and
// is signed with a secret distinct from session tokens so one credential can
// never be replayed as the other.
type ServiceClaims struct {
  Service string `json:"svc"`
  jwt.RegisteredClaims
}

type sessionClaims struct {
  jwt.RegisteredClaims
}

type AuthService interface {
  Login(ctx context.Context, email, password string) (string, error)
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  VerifyServiceToken(tokenString string) (string, error)
}

type authService struct {
  log            *logger.Logger
  userRepo       repos.UserRepo
  jwtSecretKey   string
  serviceSecret  string
  accessTTL      time.Duration
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey, serviceSecret string, accessTTL time.Duration) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    log:           serviceLog,
    userRepo:      userRepo,
    jwtSecretKey:  jwtSecretKey,
    serviceSecret: serviceSecret,
    accessTTL:     accessTTL,
  }
}

func (as *authService) Login(ctx context.Context, email, password string) (string, error) {
  users, usErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if usErr != nil {
    return "", fmt.Errorf("Failed to fetch user by email: %w", usErr)
  }
  if len(users) == 0 {
    return "", apierr.Unauthenticated(fmt.Errorf("invalid email or password"))
  }
  user := users[0]
  if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
    return "", apierr.Unauthenticated(fmt.Errorf("invalid email or password"))
  }

  claims := sessionClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  signed, err := token.SignedString([]byte(as.jwtSecretKey))
  if err != nil {
    return "", fmt.Errorf("Failed to sign access token: %w", err)
  }
  return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  parsedToken, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, apierr.Unauthenticated(fmt.Errorf("Failed to parse token: %w", err))
  }
  claims, ok := parsedToken.Claims.(*sessionClaims)
  if !ok || !parsedToken.Valid {
    return ctx, apierr.Unauthenticated(fmt.Errorf("invalid or expired token"))
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, apierr.Unauthenticated(fmt.Errorf("invalid user id in token: %w", err))
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      userID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

// VerifyServiceToken validates the callback credential and returns the service
// identity it asserts. Session tokens fail here: they are signed with a
// different secret and carry no service claim.
func (as *authService) VerifyServiceToken(tokenString string) (string, error) {
  parsedToken, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.serviceSecret), nil
  })
  if err != nil {
    return "", apierr.Unauthenticated(fmt.Errorf("Failed to parse service token: %w", err))
  }
  claims, ok := parsedToken.Claims.(*ServiceClaims)
  if !ok || !parsedToken.Valid {
    return "", apierr.Unauthenticated(fmt.Errorf("invalid service token"))
  }
  if claims.Service == "" {
    return "", apierr.Unauthenticated(fmt.Errorf("service token missing service identity"))
  }
  return claims.Service, nil
}
