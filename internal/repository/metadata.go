package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/threadline/storefront/internal/domain/catalog"
	"github.com/threadline/storefront/internal/domain/coupon"
)

// ErrUnknownFacet is returned for facet names outside the fixed set.
var ErrUnknownFacet = errors.New("unknown facet")

// facetTables maps accepted facet names to their backing tables. The
// map doubles as the allowlist that keeps facet names out of SQL.
var facetTables = map[string]string{
	catalog.FacetCategories: "categories",
	catalog.FacetColors:     "colors",
	catalog.FacetSizes:      "sizes",
	catalog.FacetMaterials:  "materials",
	catalog.FacetPatterns:   "patterns",
	catalog.FacetPacks:      "packs",
}

var (
	_ catalog.DiscountRepository = (*MetadataRepository)(nil)
	_ catalog.FacetRepository    = (*MetadataRepository)(nil)
	_ coupon.Repository          = (*MetadataRepository)(nil)
)

// MetadataRepository serves the filter-UI metadata: facet options,
// discount rules, and coupon rules.
type MetadataRepository struct {
	pool *pgxpool.Pool
}

// NewMetadataRepository returns a MetadataRepository that uses the given pool.
func NewMetadataRepository(pool *pgxpool.Pool) *MetadataRepository {
	return &MetadataRepository{pool: pool}
}

// ListFacet returns all options of one facet ordered by name.
func (r *MetadataRepository) ListFacet(ctx context.Context, facet string) ([]catalog.FacetOption, error) {
	table, ok := facetTables[facet]
	if !ok {
		return nil, ErrUnknownFacet
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name`, table))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", facet, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.FacetOption, error) {
		var o catalog.FacetOption
		err := row.Scan(&o.ID, &o.Name)
		return o, err
	})
}

// CreateFacetOption inserts a new facet value and returns its ID.
func (r *MetadataRepository) CreateFacetOption(ctx context.Context, facet, name string) (int64, error) {
	table, ok := facetTables[facet]
	if !ok {
		return 0, ErrUnknownFacet
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id`, table), name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating %s option %q: %w", facet, name, err)
	}
	return id, nil
}

// ListDiscounts returns the full discount table.
func (r *MetadataRepository) ListDiscounts(ctx context.Context) ([]catalog.Discount, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, prop FROM discounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing discounts: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Discount, error) {
		var d catalog.Discount
		err := row.Scan(&d.ID, &d.Name, &d.Prop)
		return d, err
	})
}

// CreateDiscount inserts a discount rule and returns its ID.
func (r *MetadataRepository) CreateDiscount(ctx context.Context, name string, prop decimal.Decimal) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO discounts (name, prop) VALUES ($1, $2) RETURNING id`, name, prop,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating discount %q: %w", name, err)
	}
	return id, nil
}

// List returns all coupon rules.
func (r *MetadataRepository) List(ctx context.Context) ([]coupon.Rule, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, offer FROM coupons ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// FindByName looks up a coupon rule case-insensitively.
// Returns coupon.ErrInvalidCoupon when no rule matches.
func (r *MetadataRepository) FindByName(ctx context.Context, name string) (*coupon.Rule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, offer FROM coupons WHERE LOWER(name) = LOWER($1)`, name)
	if err != nil {
		return nil, fmt.Errorf("finding coupon %q: %w", name, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrInvalidCoupon
		}
		return nil, fmt.Errorf("finding coupon %q: %w", name, err)
	}
	return &rule, nil
}

// CreateCoupon inserts a coupon rule and returns its ID.
func (r *MetadataRepository) CreateCoupon(ctx context.Context, name string, offer int) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO coupons (name, offer) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET offer = EXCLUDED.offer
		 RETURNING id`, name, offer,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating coupon %q: %w", name, err)
	}
	return id, nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Rule, error) {
	var c coupon.Rule
	err := row.Scan(&c.ID, &c.Name, &c.Offer)
	return c, err
}
