package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/threadline/storefront/internal/domain/catalog"
)

const productColumns = `id, name, price, description, photo_link, in_stock,
	category_id, color_id, size_id, material_id, pattern_id, pack_id, discount_id, coupon_id`

const (
	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	insertProductSQL = `INSERT INTO products
		(name, price, description, photo_link, in_stock,
		 category_id, color_id, size_id, material_id, pattern_id, pack_id, discount_id, coupon_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	updateProductSQL = `UPDATE products SET
		name = $2, price = $3, description = $4, photo_link = $5, in_stock = $6,
		category_id = $7, color_id = $8, size_id = $9, material_id = $10,
		pattern_id = $11, pack_id = $12, discount_id = $13, coupon_id = $14
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
// Row scanning is the single normalization point: whatever shape the
// storage layer holds, the rest of the service only sees catalog.Item.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the full catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*catalog.Item, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &it, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// Create inserts a product and fills in its generated ID.
func (r *ProductRepository) Create(ctx context.Context, it *catalog.Item) error {
	err := r.pool.QueryRow(ctx, insertProductSQL,
		it.Name, it.Price, it.Description, it.PhotoLink, it.InStock,
		it.CategoryID, it.ColorID, it.SizeID, it.MaterialID,
		it.PatternID, it.PackID, it.DiscountID, it.CouponID,
	).Scan(&it.ID)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", it.Name, err)
	}
	return nil
}

// Update replaces all mutable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, it *catalog.Item) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		it.ID, it.Name, it.Price, it.Description, it.PhotoLink, it.InStock,
		it.CategoryID, it.ColorID, it.SizeID, it.MaterialID,
		it.PatternID, it.PackID, it.DiscountID, it.CouponID,
	)
	if err != nil {
		return fmt.Errorf("updating product %d: %w", it.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func scanItem(row pgx.CollectableRow) (catalog.Item, error) {
	var it catalog.Item
	err := row.Scan(
		&it.ID, &it.Name, &it.Price, &it.Description, &it.PhotoLink, &it.InStock,
		&it.CategoryID, &it.ColorID, &it.SizeID, &it.MaterialID,
		&it.PatternID, &it.PackID, &it.DiscountID, &it.CouponID,
	)
	return it, err
}
