package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/threadline/storefront/internal/domain/order"
)

const (
	orderColumns = `id, reference, user_id, items, subtotal, coupon_name,
		coupon_discount, total, status, payment_method, delivery_address, created_at`

	insertOrderSQL = `INSERT INTO orders
		(reference, user_id, items, subtotal, coupon_name, coupon_discount,
		 total, status, payment_method, delivery_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	insertHistorySQL = `INSERT INTO order_status_history (order_id, status, note)
		VALUES ($1, $2, $3)`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		ORDER BY created_at DESC, id DESC`

	listHistorySQL = `SELECT status, note, created_at FROM order_status_history
		WHERE order_id = $1 ORDER BY created_at, id`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
// Order lines are stored as a JSONB document on the order row; they
// are immutable once the order is placed, so there is no line table.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order and its initial status history entry in one
// transaction, filling in the generated ID and creation time.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, insertOrderSQL,
		o.Reference, o.UserID, encodeOrderItems(o.Items),
		o.Subtotal, o.CouponName, o.CouponDiscount,
		o.Total, string(o.Status), string(o.PaymentMethod), o.DeliveryAddress,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting order %s: %w", o.Reference, err)
	}

	if _, err := tx.Exec(ctx, insertHistorySQL, o.ID, string(o.Status), "order placed"); err != nil {
		return fmt.Errorf("recording initial order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %s: %w", o.Reference, err)
	}

	o.History = []order.StatusChange{{Status: o.Status, Note: "order placed", CreatedAt: o.CreatedAt}}
	return nil
}

// GetByID returns an order together with its status timeline.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	hrows, err := r.pool.Query(ctx, listHistorySQL, id)
	if err != nil {
		return nil, fmt.Errorf("loading order %d history: %w", id, err)
	}
	o.History, err = pgx.CollectRows(hrows, func(row pgx.CollectableRow) (order.StatusChange, error) {
		var (
			c      order.StatusChange
			status string
		)
		err := row.Scan(&status, &c.Note, &c.CreatedAt)
		c.Status = order.Status(status)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("loading order %d history: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns the user's orders newest first, without history.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// List returns all orders newest first, without history.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus moves the order to a new status and appends a history
// entry. Returns order.ErrNotFound for unknown IDs.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status, note string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning status transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating order %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	if _, err := tx.Exec(ctx, insertHistorySQL, id, string(status), note); err != nil {
		return fmt.Errorf("recording order %d status change: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %d status change: %w", id, err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                     order.Order
		itemsRaw              []byte
		status, paymentMethod string
	)
	err := row.Scan(
		&o.ID, &o.Reference, &o.UserID, &itemsRaw, &o.Subtotal, &o.CouponName,
		&o.CouponDiscount, &o.Total, &status, &paymentMethod,
		&o.DeliveryAddress, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	o.PaymentMethod = order.PaymentMethod(paymentMethod)
	o.Items, err = decodeOrderItems(itemsRaw)
	return o, err
}

// encodeOrderItems renders order lines as the JSONB document stored on
// the order row.
func encodeOrderItems(items []order.Item) []byte {
	e := &jx.Encoder{}
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(it.ProductID)
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("unitPrice")
		e.Str(it.UnitPrice.String())
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

func decodeOrderItems(raw []byte) ([]order.Item, error) {
	var items []order.Item
	d := jx.DecodeBytes(raw)
	err := d.Arr(func(d *jx.Decoder) error {
		var it order.Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "productId":
				v, err := d.Int64()
				it.ProductID = v
				return err
			case "name":
				v, err := d.Str()
				it.Name = v
				return err
			case "unitPrice":
				s, err := d.Str()
				if err != nil {
					return err
				}
				it.UnitPrice, err = decimal.NewFromString(s)
				return err
			case "quantity":
				v, err := d.Int()
				it.Quantity = v
				return err
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode order items")
	}
	return items, nil
}
