package ordersvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clouddelivery/backend/internal/dal/interfaces/iorderitemrepo"
	"github.com/clouddelivery/backend/internal/dal/interfaces/iorderrepo"
	"github.com/clouddelivery/backend/internal/dal/interfaces/ioutboxrepo"
	"github.com/clouddelivery/backend/internal/dal/interfaces/iproductrepo"
	"github.com/clouddelivery/backend/internal/dal/postgres"
	"github.com/clouddelivery/backend/internal/dal/uow"
	"github.com/clouddelivery/backend/internal/errs"
	"github.com/clouddelivery/backend/internal/service/models/order"
	"github.com/clouddelivery/backend/internal/service/models/orderitem"
	"github.com/clouddelivery/backend/internal/service/models/outbox"
	"github.com/clouddelivery/backend/internal/service/models/status"
)

const defaultMaxRetries = 5

// OrderService is a service for placing and querying orders.
type OrderService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	ProductRepository() iproductrepo.IProductRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

func (s *OrderService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}
	return uow.NewUnitOfWork(s.pgClient)
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides how transactional scopes are created.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// orderEvent is the payload published to the outbox on order mutations.
type orderEvent struct {
	OrderID    int64           `json:"orderId"`
	UserID     int64           `json:"userId"`
	Status     status.Status   `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	OccurredAt time.Time       `json:"occurredAt"`
}

func rollback(ctx context.Context, work unitOfWork) {
	if err := work.Rollback(ctx); err != nil {
		slog.Error("Failed to roll back transaction", "error", err)
	}
}

func appendEvent(ctx context.Context, work unitOfWork, routingKey string, o *order.Order) error {
	payload, err := json.Marshal(orderEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		TotalPrice: o.TotalPrice,
		OccurredAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	return work.OutboxRepository().Insert(ctx, outbox.Message{
		RoutingKey:  routingKey,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  defaultMaxRetries,
		NextRetryAt: time.Now(),
	})
}

// Create places an order for the given user: it inserts the order row,
// resolves each product's current price, snapshots line totals into
// order_items and writes the accumulated total back, all within one
// transaction. Either every row is committed or none are.
func (s *OrderService) Create(ctx context.Context, userID int64, items []order.NewItem, paymentMethod string) (*order.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("order needs at least one item: %w", errs.ErrInvalidArgument)
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("quantity for product %d must be at least 1: %w", item.ProductID, errs.ErrInvalidArgument)
		}
	}

	work := s.newUOW()

	if err := work.Begin(ctx); err != nil {
		return nil, err
	}

	created, err := work.OrderRepository().Insert(ctx, order.Order{
		UserID:        userID,
		Status:        status.StatusPending,
		PaymentMethod: paymentMethod,
		TotalPrice:    decimal.Zero,
	})
	if err != nil {
		rollback(ctx, work)
		return nil, err
	}

	total := decimal.Zero
	orderItems := make([]orderitem.OrderItem, 0, len(items))
	for _, item := range items {
		prod, err := work.ProductRepository().GetByID(ctx, item.ProductID)
		if err != nil {
			rollback(ctx, work)
			return nil, err
		}

		lineTotal := prod.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)

		inserted, err := work.OrderItemRepository().Insert(ctx, orderitem.OrderItem{
			OrderID:     created.ID,
			ProductID:   prod.ID,
			ProductName: prod.Name,
			Quantity:    item.Quantity,
			Price:       lineTotal,
		})
		if err != nil {
			rollback(ctx, work)
			return nil, err
		}
		orderItems = append(orderItems, *inserted)
	}

	if err := work.OrderRepository().UpdateTotal(ctx, created.ID, total); err != nil {
		rollback(ctx, work)
		return nil, err
	}

	created.TotalPrice = total
	created.Items = orderItems

	if err := appendEvent(ctx, work, outbox.EventOrderCreated, created); err != nil {
		rollback(ctx, work)
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		rollback(ctx, work)
		return nil, err
	}

	return created, nil
}

// GetByID retrieves a single order with its items joined with product names.
func (s *OrderService) GetByID(ctx context.Context, orderID int64) (*order.Order, error) {
	work := s.newUOW()

	found, err := work.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := work.OrderItemRepository().ListByOrders(ctx, []int64{found.ID})
	if err != nil {
		return nil, err
	}
	found.Items = items

	return found, nil
}

func attachItems(ctx context.Context, work unitOfWork, orders []order.Order) ([]order.Order, error) {
	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIDs := make([]int64, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}

	items, err := work.OrderItemRepository().ListByOrders(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].Items = append(orders[i].Items, item)
			}
		}
	}

	return orders, nil
}

// ListByUser retrieves the user's orders with items, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return attachItems(ctx, work, orders)
}

// ListAll retrieves every order across all users with owner names and
// items attached. Role enforcement happens at the transport layer.
func (s *OrderService) ListAll(ctx context.Context) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return attachItems(ctx, work, orders)
}

// UpdateStatus moves the order to the given status. Any status from the
// fixed set may follow any other; strings outside the set are rejected
// without touching the row.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, rawStatus string) (*order.Order, error) {
	st, err := status.ParseStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("status %q: %w", rawStatus, errs.ErrInvalidArgument)
	}

	work := s.newUOW()

	if err := work.Begin(ctx); err != nil {
		return nil, err
	}

	updated, err := work.OrderRepository().UpdateStatus(ctx, orderID, st)
	if err != nil {
		rollback(ctx, work)
		return nil, err
	}

	if err := appendEvent(ctx, work, outbox.EventOrderStatusChanged, updated); err != nil {
		rollback(ctx, work)
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		rollback(ctx, work)
		return nil, err
	}

	return updated, nil
}
