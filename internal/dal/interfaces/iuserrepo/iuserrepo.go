package iuserrepo

import (
	"context"

	"github.com/clouddelivery/backend/internal/service/models/user"
)

// IUserRepository is an interface for the user postgres repository.
type IUserRepository interface {
	Insert(ctx context.Context, u user.User) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	ListCustomers(ctx context.Context) ([]user.User, error)
	Delete(ctx context.Context, id int64) error
}
