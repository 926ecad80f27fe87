package status

import (
	"database/sql/driver"
	"errors"
)

// Status is an order lifecycle state. Transitions are not ordered: any
// state may be set from any other.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusDelivered Status = "delivered"
)

var ErrInvalidStatus = errors.New("invalid status")

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

func ParseStatus(s string) (Status, error) {
	switch s {
	case StatusPending.String():
		return StatusPending, nil
	case StatusPreparing.String():
		return StatusPreparing, nil
	case StatusDelivered.String():
		return StatusDelivered, nil
	default:
		return "", ErrInvalidStatus
	}
}
