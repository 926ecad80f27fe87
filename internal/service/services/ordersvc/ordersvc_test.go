package ordersvc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clouddelivery/backend/internal/dal/interfaces/iorderitemrepo"
	"github.com/clouddelivery/backend/internal/dal/interfaces/iorderrepo"
	"github.com/clouddelivery/backend/internal/dal/interfaces/ioutboxrepo"
	"github.com/clouddelivery/backend/internal/dal/interfaces/iproductrepo"
	"github.com/clouddelivery/backend/internal/errs"
	"github.com/clouddelivery/backend/internal/service/models/order"
	"github.com/clouddelivery/backend/internal/service/models/orderitem"
	"github.com/clouddelivery/backend/internal/service/models/outbox"
	"github.com/clouddelivery/backend/internal/service/models/product"
	"github.com/clouddelivery/backend/internal/service/models/status"
)

type fakeOrderRepo struct {
	orders map[int64]*order.Order
	nextID int64
}

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (*order.Order, error) {
	o.ID = r.nextID
	r.nextID++
	o.CreatedAt = time.Now()
	stored := o
	r.orders[o.ID] = &stored
	return &o, nil
}

func (r *fakeOrderRepo) UpdateTotal(_ context.Context, id int64, total decimal.Decimal) error {
	o, ok := r.orders[id]
	if !ok {
		return errs.ErrNotFound
	}
	o.TotalPrice = total
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, st status.Status) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	o.Status = st
	updated := *o
	return &updated, nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	found := *o
	return &found, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID int64) ([]order.Order, error) {
	var result []order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (r *fakeOrderRepo) ListAll(_ context.Context) ([]order.Order, error) {
	var result []order.Order
	for _, o := range r.orders {
		result = append(result, *o)
	}
	return result, nil
}

type fakeOrderItemRepo struct {
	items  []orderitem.OrderItem
	nextID int64
}

func (r *fakeOrderItemRepo) Insert(_ context.Context, item orderitem.OrderItem) (*orderitem.OrderItem, error) {
	item.ID = r.nextID
	r.nextID++
	r.items = append(r.items, item)
	return &item, nil
}

func (r *fakeOrderItemRepo) ListByOrders(_ context.Context, orderIDs []int64) ([]orderitem.OrderItem, error) {
	var result []orderitem.OrderItem
	for _, item := range r.items {
		for _, id := range orderIDs {
			if item.OrderID == id {
				result = append(result, item)
			}
		}
	}
	return result, nil
}

type fakeProductRepo struct {
	products map[int64]*product.Product
}

func (r *fakeProductRepo) Insert(_ context.Context, _ product.Product) (*product.Product, error) {
	panic("not used")
}

func (r *fakeProductRepo) Update(_ context.Context, _ product.Product) (*product.Product, error) {
	panic("not used")
}

func (r *fakeProductRepo) Delete(_ context.Context, _ int64) error {
	panic("not used")
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) Query(_ context.Context, _ *product.QueryProductsModel) ([]product.Product, error) {
	panic("not used")
}

type fakeOutboxRepo struct {
	messages []outbox.Message
}

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outbox.Message, error) {
	return r.messages, nil
}

func (r *fakeOutboxRepo) UpdateRetry(_ context.Context, _ int64, _ int, _ string, _ time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) Delete(_ context.Context, _ int64) error {
	return nil
}

type fakeUOW struct {
	orderRepo     *fakeOrderRepo
	orderItemRepo *fakeOrderItemRepo
	productRepo   *fakeProductRepo
	outboxRepo    *fakeOutboxRepo

	begun      int
	committed  int
	rolledBack int
}

func newFakeUOW() *fakeUOW {
	return &fakeUOW{
		orderRepo:     &fakeOrderRepo{orders: make(map[int64]*order.Order), nextID: 1},
		orderItemRepo: &fakeOrderItemRepo{nextID: 1},
		productRepo:   &fakeProductRepo{products: make(map[int64]*product.Product)},
		outboxRepo:    &fakeOutboxRepo{},
	}
}

func (u *fakeUOW) Begin(_ context.Context) error    { u.begun++; return nil }
func (u *fakeUOW) Commit(_ context.Context) error   { u.committed++; return nil }
func (u *fakeUOW) Rollback(_ context.Context) error { u.rolledBack++; return nil }

func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository             { return u.orderRepo }
func (u *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository { return u.orderItemRepo }
func (u *fakeUOW) ProductRepository() iproductrepo.IProductRepository       { return u.productRepo }
func (u *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository          { return u.outboxRepo }

func newTestService(work *fakeUOW) *OrderService {
	return MustNewOrderService(
		WithUnitOfWorkFactory(func() unitOfWork { return work }),
	)
}

func addProduct(work *fakeUOW, id int64, name, price string) {
	work.productRepo.products[id] = &product.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
	}
}

func TestCreate_TotalIsSumOfLineTotals(t *testing.T) {
	work := newFakeUOW()
	addProduct(work, 1, "Margherita", "5.00")
	addProduct(work, 2, "Lemonade", "3.50")
	svc := newTestService(work)

	created, err := svc.Create(context.Background(), 7, []order.NewItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}, "cash")
	require.NoError(t, err)

	assert.True(t, created.TotalPrice.Equal(decimal.RequireFromString("13.50")),
		"total = %s", created.TotalPrice)
	assert.Equal(t, status.StatusPending, created.Status)
	assert.Equal(t, int64(7), created.UserID)
	require.Len(t, created.Items, 2)
	assert.True(t, created.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, created.Items[1].Price.Equal(decimal.RequireFromString("3.50")))

	assert.Equal(t, 1, work.begun)
	assert.Equal(t, 1, work.committed)
	assert.Equal(t, 0, work.rolledBack)
	assert.True(t, work.orderRepo.orders[created.ID].TotalPrice.Equal(created.TotalPrice))
}

func TestCreate_WritesOrderCreatedEvent(t *testing.T) {
	work := newFakeUOW()
	addProduct(work, 1, "Margherita", "5.00")
	svc := newTestService(work)

	created, err := svc.Create(context.Background(), 7, []order.NewItem{
		{ProductID: 1, Quantity: 1},
	}, "card")
	require.NoError(t, err)

	require.Len(t, work.outboxRepo.messages, 1)
	msg := work.outboxRepo.messages[0]
	assert.Equal(t, outbox.EventOrderCreated, msg.RoutingKey)
	assert.Equal(t, "application/json", msg.ContentType)

	var event struct {
		OrderID int64 `json:"orderId"`
		UserID  int64 `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	assert.Equal(t, created.ID, event.OrderID)
	assert.Equal(t, int64(7), event.UserID)
}

func TestCreate_UnknownProductRollsBack(t *testing.T) {
	work := newFakeUOW()
	addProduct(work, 1, "Margherita", "5.00")
	svc := newTestService(work)

	_, err := svc.Create(context.Background(), 7, []order.NewItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 99, Quantity: 1},
	}, "cash")
	require.ErrorIs(t, err, errs.ErrNotFound)

	assert.Equal(t, 1, work.rolledBack)
	assert.Equal(t, 0, work.committed)
}

func TestCreate_RejectsEmptyItems(t *testing.T) {
	work := newFakeUOW()
	svc := newTestService(work)

	_, err := svc.Create(context.Background(), 7, nil, "cash")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	assert.Equal(t, 0, work.begun)
}

func TestCreate_RejectsNonPositiveQuantity(t *testing.T) {
	work := newFakeUOW()
	addProduct(work, 1, "Margherita", "5.00")
	svc := newTestService(work)

	_, err := svc.Create(context.Background(), 7, []order.NewItem{
		{ProductID: 1, Quantity: 0},
	}, "cash")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	assert.Equal(t, 0, work.begun)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	work := newFakeUOW()
	svc := newTestService(work)

	_, err := svc.UpdateStatus(context.Background(), 1, "shipped")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	assert.Equal(t, 0, work.begun)
}

func TestUpdateStatus_PersistsAndPublishesEvent(t *testing.T) {
	work := newFakeUOW()
	addProduct(work, 1, "Margherita", "5.00")
	svc := newTestService(work)

	created, err := svc.Create(context.Background(), 7, []order.NewItem{
		{ProductID: 1, Quantity: 1},
	}, "cash")
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), created.ID, "preparing")
	require.NoError(t, err)
	assert.Equal(t, status.StatusPreparing, updated.Status)

	require.Len(t, work.outboxRepo.messages, 2)
	assert.Equal(t, outbox.EventOrderStatusChanged, work.outboxRepo.messages[1].RoutingKey)
}

func TestUpdateStatus_UnknownOrderRollsBack(t *testing.T) {
	work := newFakeUOW()
	svc := newTestService(work)

	_, err := svc.UpdateStatus(context.Background(), 42, "delivered")
	require.ErrorIs(t, err, errs.ErrNotFound)
	assert.Equal(t, 1, work.rolledBack)
	assert.Equal(t, 0, work.committed)
}

func TestGetByID_AttachesItems(t *testing.T) {
	work := newFakeUOW()
	addProduct(work, 1, "Margherita", "5.00")
	svc := newTestService(work)

	created, err := svc.Create(context.Background(), 7, []order.NewItem{
		{ProductID: 1, Quantity: 3},
	}, "cash")
	require.NoError(t, err)

	found, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, int64(1), found.Items[0].ProductID)
	assert.Equal(t, 3, found.Items[0].Quantity)
}
