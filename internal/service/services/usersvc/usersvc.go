package usersvc

import (
	"context"

	"github.com/clouddelivery/backend/internal/dal/interfaces/iuserrepo"
	"github.com/clouddelivery/backend/internal/service/models/user"
)

// UserService exposes user administration operations.
type UserService struct {
	users iuserrepo.IUserRepository
}

// option is a function that configures the UserService.
type option func(*UserService)

// MustNewUserService creates a new UserService.
func MustNewUserService(opts ...option) *UserService {
	s := &UserService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithUserRepository sets the user repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUserRepository(users iuserrepo.IUserRepository) option {
	return func(s *UserService) {
		s.users = users
	}
}

// ListCustomers retrieves all customer-role users.
func (s *UserService) ListCustomers(ctx context.Context) ([]user.User, error) {
	return s.users.ListCustomers(ctx)
}

// Delete removes a user by id. Role enforcement happens at the
// transport layer.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}
