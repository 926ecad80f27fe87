package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/clouddelivery/backend/internal/dal/postgres"
	"github.com/clouddelivery/backend/internal/errs"
	"github.com/clouddelivery/backend/internal/service/models/order"
	"github.com/clouddelivery/backend/internal/service/models/orderitem"
	"github.com/clouddelivery/backend/internal/service/models/status"
)

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id            int64           `db:"id"`
	UserId        int64           `db:"user_id"`
	UserName      string          `db:"user_name"`
	Status        string          `db:"status"`
	PaymentMethod string          `db:"payment_method"`
	TotalPrice    decimal.Decimal `db:"total_price"`
	CreatedAt     time.Time       `db:"created_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	st, err := status.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}
	return &order.Order{
		ID:            o.Id,
		UserID:        o.UserId,
		UserName:      o.UserName,
		Status:        st,
		PaymentMethod: o.PaymentMethod,
		TotalPrice:    o.TotalPrice,
		CreatedAt:     o.CreatedAt,
		Items:         []orderitem.OrderItem{}, // populated separately
	}, nil
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanOrder(row pgx.Row, withUserName bool) (*order.Order, error) {
	var dal OrderDal
	dest := []any{&dal.Id, &dal.UserId, &dal.Status, &dal.PaymentMethod, &dal.TotalPrice, &dal.CreatedAt}
	if withUserName {
		dest = append(dest, &dal.UserName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return dal.ToModel()
}

// Insert persists a new order row and returns it with its generated id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (*order.Order, error) {
	sql, args, err := r.sb.
		Insert("orders").
		Columns("user_id", "status", "payment_method", "total_price").
		Values(o.UserID, o.Status, o.PaymentMethod, o.TotalPrice).
		Suffix("RETURNING id, user_id, status, payment_method, total_price, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	inserted, err := scanOrder(r.conn.QueryRow(ctx, sql, args...), false)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return inserted, nil
}

// UpdateTotal sets the order's total price.
func (r *PostgresOrderRepository) UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error {
	sql, args, err := r.sb.
		Update("orders").
		Set("total_price", total).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}

	return nil
}

// UpdateStatus sets the order's status and returns the updated row.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id int64, st status.Status) (*order.Order, error) {
	sql, args, err := r.sb.
		Update("orders").
		Set("status", st).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, user_id, status, payment_method, total_price, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	updated, err := scanOrder(r.conn.QueryRow(ctx, sql, args...), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return updated, nil
}

// GetByID retrieves a single order by id, without its items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	sql, args, err := r.sb.
		Select("id", "user_id", "status", "payment_method", "total_price", "created_at").
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	found, err := scanOrder(r.conn.QueryRow(ctx, sql, args...), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return found, nil
}

func (r *PostgresOrderRepository) queryMany(ctx context.Context, query sq.SelectBuilder) ([]order.Order, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		model, err := scanOrder(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// ListByUser retrieves a user's orders with the owner name attached,
// newest first.
func (r *PostgresOrderRepository) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	query := r.sb.
		Select("o.id", "o.user_id", "o.status", "o.payment_method", "o.total_price", "o.created_at", "u.name AS user_name").
		From("orders o").
		Join("users u ON o.user_id = u.id").
		Where(sq.Eq{"o.user_id": userID}).
		OrderBy("o.created_at DESC")

	return r.queryMany(ctx, query)
}

// ListAll retrieves every order across all users with the owner name
// attached, newest first.
func (r *PostgresOrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	query := r.sb.
		Select("o.id", "o.user_id", "o.status", "o.payment_method", "o.total_price", "o.created_at", "u.name AS user_name").
		From("orders o").
		Join("users u ON o.user_id = u.id").
		OrderBy("o.created_at DESC")

	return r.queryMany(ctx, query)
}
