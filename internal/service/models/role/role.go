package role

import (
	"database/sql/driver"
	"errors"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

var ErrInvalidRole = errors.New("invalid role")

func (r Role) String() string {
	return string(r)
}

func (r Role) Value() (driver.Value, error) {
	return r.String(), nil
}

func ParseRole(s string) (Role, error) {
	switch s {
	case RoleCustomer.String():
		return RoleCustomer, nil
	case RoleAdmin.String():
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}
