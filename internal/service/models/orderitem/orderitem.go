package orderitem

import (
	"github.com/shopspring/decimal"
)

// OrderItem is a line of an order. Price is the line total (unit price at
// order time multiplied by quantity), snapshotted when the order is placed.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"orderId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}
