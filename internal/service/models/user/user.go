package user

import (
	"time"

	"github.com/clouddelivery/backend/internal/service/models/role"
)

// User represents an identity record in the system.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         role.Role `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
