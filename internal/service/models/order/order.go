package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/clouddelivery/backend/internal/service/models/orderitem"
	"github.com/clouddelivery/backend/internal/service/models/status"
)

// Order represents a checkout in the system.
type Order struct {
	ID            int64                 `json:"id"`
	UserID        int64                 `json:"userId"`
	UserName      string                `json:"userName,omitempty"`
	Status        status.Status         `json:"status"`
	PaymentMethod string                `json:"paymentMethod"`
	TotalPrice    decimal.Decimal       `json:"totalPrice"`
	CreatedAt     time.Time             `json:"createdAt"`
	Items         []orderitem.OrderItem `json:"items"`
}

// NewItem is a requested (product, quantity) pair in a checkout request.
type NewItem struct {
	ProductID int64
	Quantity  int
}
