package iorderrepo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/clouddelivery/backend/internal/service/models/order"
	"github.com/clouddelivery/backend/internal/service/models/status"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (*order.Order, error)
	UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error
	UpdateStatus(ctx context.Context, id int64, st status.Status) (*order.Order, error)
	GetByID(ctx context.Context, id int64) (*order.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]order.Order, error)
	ListAll(ctx context.Context) ([]order.Order, error)
}
