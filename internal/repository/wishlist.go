package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/threadline/storefront/internal/domain/catalog"
	"github.com/threadline/storefront/internal/domain/wishlist"
)

const (
	wishlistListSQL = `SELECT ` + productColumns + `
		FROM products
		JOIN wishlist_items w ON w.product_id = products.id
		WHERE w.user_id = $1
		ORDER BY w.added_at`

	wishlistAddSQL = `INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING`

	wishlistRemoveSQL = `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`

	wishlistContainsSQL = `SELECT EXISTS (
		SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2)`
)

var _ wishlist.Repository = (*WishlistRepository)(nil)

// WishlistRepository implements wishlist.Repository backed by PostgreSQL.
type WishlistRepository struct {
	pool *pgxpool.Pool
}

// NewWishlistRepository returns a WishlistRepository that uses the given pool.
func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// List returns the user's wishlisted products in insertion order.
func (r *WishlistRepository) List(ctx context.Context, userID int64) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, wishlistListSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("loading wishlist for user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// Add records a wishlist entry. Duplicate adds are silently ignored.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID int64) error {
	if _, err := r.pool.Exec(ctx, wishlistAddSQL, userID, productID); err != nil {
		return fmt.Errorf("adding wishlist entry: %w", err)
	}
	return nil
}

// Remove deletes a wishlist entry.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID int64) error {
	if _, err := r.pool.Exec(ctx, wishlistRemoveSQL, userID, productID); err != nil {
		return fmt.Errorf("removing wishlist entry: %w", err)
	}
	return nil
}

// Contains reports whether the product is wishlisted by the user.
func (r *WishlistRepository) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, wishlistContainsSQL, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking wishlist entry: %w", err)
	}
	return exists, nil
}
