package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/clouddelivery/backend/internal/dal/interfaces/iuserrepo"
	"github.com/clouddelivery/backend/internal/errs"
	"github.com/clouddelivery/backend/internal/service/models/claims"
	"github.com/clouddelivery/backend/internal/service/models/role"
	"github.com/clouddelivery/backend/internal/service/models/user"
)

// AuthService registers users, authenticates credentials and issues
// signed session tokens.
type AuthService struct {
	users    iuserrepo.IUserRepository
	secret   []byte
	tokenTTL time.Duration
}

// option is a function that configures the AuthService.
type option func(*AuthService)

// MustNewAuthService creates a new AuthService. It panics without a
// signing secret: issuing unsigned tokens is never acceptable.
func MustNewAuthService(opts ...option) *AuthService {
	s := &AuthService{
		tokenTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.secret) == 0 {
		panic("authsvc: signing secret is not configured")
	}

	return s
}

// WithUserRepository sets the user repository for the AuthService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUserRepository(users iuserrepo.IUserRepository) option {
	return func(s *AuthService) {
		s.users = users
	}
}

// WithSecret sets the token signing secret.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSecret(secret []byte) option {
	return func(s *AuthService) {
		s.secret = secret
	}
}

// WithTokenTTL sets the token lifetime.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTokenTTL(ttl time.Duration) option {
	return func(s *AuthService) {
		s.tokenTTL = ttl
	}
}

// Register hashes the password and persists a new customer-role user.
// The plaintext password is never stored.
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	if name == "" || email == "" || password == "" {
		return fmt.Errorf("name, email and password are required: %w", errs.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.users.Insert(ctx, user.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role.RoleCustomer,
	}); err != nil {
		return err
	}

	return nil
}

// Login verifies the credentials and issues a signed session token.
// An unknown email surfaces as errs.ErrNotFound and a password mismatch
// as errs.ErrInvalidCredentials; the transport layer maps them to
// different status codes.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("password mismatch for %s: %w", email, errs.ErrInvalidCredentials)
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}

func (s *AuthService) issueToken(u *user.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims.Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken validates the token signature and expiry and returns the
// decoded claims.
func (s *AuthService) VerifyToken(tokenString string) (*claims.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	decoded, ok := token.Claims.(*claims.Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return decoded, nil
}
