package iorderitemrepo

import (
	"context"

	"github.com/clouddelivery/backend/internal/service/models/orderitem"
)

// IOrderItemRepository is an interface for the order item postgres repository.
type IOrderItemRepository interface {
	Insert(ctx context.Context, item orderitem.OrderItem) (*orderitem.OrderItem, error)
	ListByOrders(ctx context.Context, orderIDs []int64) ([]orderitem.OrderItem, error)
}
