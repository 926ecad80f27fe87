package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/clouddelivery/backend/internal/dal/postgres"
	"github.com/clouddelivery/backend/internal/service/models/orderitem"
)

// OrderItemDal represents the order item data access layer model.
type OrderItemDal struct {
	Id          int64           `db:"id"`
	OrderId     int64           `db:"order_id"`
	ProductId   int64           `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	Price       decimal.Decimal `db:"price"`
}

// ToModel converts OrderItemDal to the service layer OrderItem model.
func (oi *OrderItemDal) ToModel() *orderitem.OrderItem {
	return &orderitem.OrderItem{
		ID:          oi.Id,
		OrderID:     oi.OrderId,
		ProductID:   oi.ProductId,
		ProductName: oi.ProductName,
		Quantity:    oi.Quantity,
		Price:       oi.Price,
	}
}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.GenericConn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert persists a single order item and returns it with its generated id.
func (r *PostgresOrderItemRepository) Insert(ctx context.Context, item orderitem.OrderItem) (*orderitem.OrderItem, error) {
	sql, args, err := r.sb.
		Insert("order_items").
		Columns("order_id", "product_id", "quantity", "price").
		Values(item.OrderID, item.ProductID, item.Quantity, item.Price).
		Suffix("RETURNING id, order_id, product_id, quantity, price").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	var dal OrderItemDal
	err = r.conn.QueryRow(ctx, sql, args...).Scan(
		&dal.Id,
		&dal.OrderId,
		&dal.ProductId,
		&dal.Quantity,
		&dal.Price,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order item: %w", err)
	}

	dal.ProductName = item.ProductName

	return dal.ToModel(), nil
}

// ListByOrders retrieves the items belonging to the given orders, joined
// with the product name for display. Products may have been deleted since
// the order was placed, then the snapshotted row survives without a name.
func (r *PostgresOrderItemRepository) ListByOrders(ctx context.Context, orderIDs []int64) ([]orderitem.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	sql, args, err := r.sb.
		Select("oi.id", "oi.order_id", "oi.product_id", "COALESCE(p.name, '') AS product_name", "oi.quantity", "oi.price").
		From("order_items oi").
		LeftJoin("products p ON oi.product_id = p.id").
		Where(sq.Eq{"oi.order_id": orderIDs}).
		OrderBy("oi.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.ProductName,
			&dal.Quantity,
			&dal.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
