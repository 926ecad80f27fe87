package authsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/clouddelivery/backend/internal/errs"
	"github.com/clouddelivery/backend/internal/service/models/role"
	"github.com/clouddelivery/backend/internal/service/models/user"
)

type fakeUserRepo struct {
	usersByEmail map[string]*user.User
	nextID       int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{usersByEmail: make(map[string]*user.User), nextID: 1}
}

func (r *fakeUserRepo) Insert(_ context.Context, u user.User) (*user.User, error) {
	if _, exists := r.usersByEmail[u.Email]; exists {
		return nil, errs.ErrConflict
	}
	u.ID = r.nextID
	r.nextID++
	r.usersByEmail[u.Email] = &u
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := r.usersByEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListCustomers(_ context.Context) ([]user.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, _ int64) error {
	return nil
}

func newTestService(repo *fakeUserRepo, opts ...option) *AuthService {
	base := []option{
		WithUserRepository(repo),
		WithSecret([]byte("test-secret")),
	}
	return MustNewAuthService(append(base, opts...)...)
}

func TestMustNewAuthService_PanicsWithoutSecret(t *testing.T) {
	assert.Panics(t, func() {
		MustNewAuthService(WithUserRepository(newFakeUserRepo()))
	})
}

func TestRegister_HashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	stored := repo.usersByEmail["alice@example.com"]
	require.NotNil(t, stored)
	assert.Equal(t, role.RoleCustomer, stored.Role)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
}

func TestRegister_RejectsMissingFields(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	err := svc.Register(context.Background(), "", "alice@example.com", "s3cret")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	require.NoError(t, svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret"))
	err := svc.Register(context.Background(), "Alice Again", "alice@example.com", "0ther")
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	require.NoError(t, svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret"))

	_, _, err := svc.Login(context.Background(), "alice@example.com", "not-the-password")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestLogin_TokenRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	require.NoError(t, svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret"))

	token, u, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice@example.com", u.Email)

	decoded, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, decoded.UserID)
	assert.Equal(t, "alice@example.com", decoded.Email)
	assert.Equal(t, role.RoleCustomer, decoded.Role)
}

func TestVerifyToken_RejectsTamperedToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	require.NoError(t, svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret"))

	token, _, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token + "x")
	assert.Error(t, err)
}

func TestVerifyToken_RejectsWrongSecret(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	require.NoError(t, svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret"))

	token, _, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)

	other := newTestService(repo, WithSecret([]byte("another-secret")))
	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_RejectsExpiredToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, WithTokenTTL(-time.Minute))
	require.NoError(t, svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret"))

	token, _, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.Error(t, err)
}
