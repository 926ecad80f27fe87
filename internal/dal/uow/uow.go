package uow

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clouddelivery/backend/internal/dal/interfaces/iorderitemrepo"
	"github.com/clouddelivery/backend/internal/dal/interfaces/iorderrepo"
	"github.com/clouddelivery/backend/internal/dal/interfaces/ioutboxrepo"
	"github.com/clouddelivery/backend/internal/dal/interfaces/iproductrepo"
	"github.com/clouddelivery/backend/internal/dal/postgres"
	orderrepo "github.com/clouddelivery/backend/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/clouddelivery/backend/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/clouddelivery/backend/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/clouddelivery/backend/internal/dal/repositories/product/postgres"
)

// unitOfWork scopes the order, order item, product and outbox repositories
// to a single transaction. Before Begin the repositories run on the pool;
// after Begin they run on the transaction until Commit or Rollback.
type unitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	productRepo   iproductrepo.IProductRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	pool := client.Pool()
	return &unitOfWork{
		pool:          pool,
		orderRepo:     orderrepo.NewPostgresOrderRepository(pool),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(pool),
		productRepo:   productrepo.NewPostgresProductRepository(pool),
		outboxRepo:    outboxrepo.NewPostgresOutboxRepository(pool),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) ProductRepository() iproductrepo.IProductRepository {
	return u.productRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.productRepo = productrepo.NewPostgresProductRepository(tx)
	u.outboxRepo = outboxrepo.NewPostgresOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}
