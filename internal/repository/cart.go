package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/threadline/storefront/internal/domain/cart"
	"github.com/threadline/storefront/internal/domain/catalog"
)

const (
	cartLinesSQL = `SELECT p.id, p.name, p.price, p.description, p.photo_link, p.in_stock,
		p.category_id, p.color_id, p.size_id, p.material_id, p.pattern_id, p.pack_id,
		p.discount_id, p.coupon_id, c.quantity
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.added_at`

	cartUpsertSQL = `INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	cartSetQuantitySQL = `UPDATE cart_items SET quantity = $3
		WHERE user_id = $1 AND product_id = $2`

	cartRemoveSQL = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	cartClearSQL = `DELETE FROM cart_items WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Lines returns the user's cart lines in insertion order.
func (r *CartRepository) Lines(ctx context.Context, userID int64) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, cartLinesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("loading cart for user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Line, error) {
		var (
			it  catalog.Item
			qty int
		)
		err := row.Scan(
			&it.ID, &it.Name, &it.Price, &it.Description, &it.PhotoLink, &it.InStock,
			&it.CategoryID, &it.ColorID, &it.SizeID, &it.MaterialID,
			&it.PatternID, &it.PackID, &it.DiscountID, &it.CouponID,
			&qty,
		)
		return cart.Line{Item: it, Quantity: qty}, err
	})
}

// Upsert adds quantity to an existing line or creates it.
func (r *CartRepository) Upsert(ctx context.Context, userID, productID int64, quantity int) error {
	if _, err := r.pool.Exec(ctx, cartUpsertSQL, userID, productID, quantity); err != nil {
		return fmt.Errorf("upserting cart line: %w", err)
	}
	return nil
}

// SetQuantity replaces a line's quantity. Returns cart.ErrNotInCart
// when the product is not in the user's cart.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	tag, err := r.pool.Exec(ctx, cartSetQuantitySQL, userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("updating cart quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotInCart
	}
	return nil
}

// Remove deletes one line.
func (r *CartRepository) Remove(ctx context.Context, userID, productID int64) error {
	if _, err := r.pool.Exec(ctx, cartRemoveSQL, userID, productID); err != nil {
		return fmt.Errorf("removing cart line: %w", err)
	}
	return nil
}

// Clear deletes every line of the user's cart.
func (r *CartRepository) Clear(ctx context.Context, userID int64) error {
	if _, err := r.pool.Exec(ctx, cartClearSQL, userID); err != nil {
		return fmt.Errorf("clearing cart for user %d: %w", userID, err)
	}
	return nil
}
