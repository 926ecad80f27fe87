package claims

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/clouddelivery/backend/internal/service/models/role"
)

// Claims are the identity fields embedded in a session token.
type Claims struct {
	UserID int64     `json:"id"`
	Email  string    `json:"email"`
	Role   role.Role `json:"role"`
	jwt.RegisteredClaims
}
