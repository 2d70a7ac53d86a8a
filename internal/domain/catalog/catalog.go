package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested catalog item does not exist.
var ErrNotFound = errors.New("product not found")

// Item represents a purchasable product as served to the storefront.
// The eight facet references are opaque identifiers used purely as
// filter keys; a nil reference means the product carries no value for
// that facet.
type Item struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Description string
	PhotoLink   string
	InStock     bool

	CategoryID *int64
	ColorID    *int64
	SizeID     *int64
	MaterialID *int64
	PatternID  *int64
	PackID     *int64
	DiscountID *int64
	CouponID   *int64
}

// Discount is a percentage-off rule attached to products via DiscountID.
// Prop is a percentage; the engine applies it as-is without clamping,
// even outside [0, 100].
type Discount struct {
	ID   int64
	Name string
	Prop decimal.Decimal
}

// FacetOption is a single selectable value of a facet, used to render
// filter controls.
type FacetOption struct {
	ID   int64
	Name string
}

// Facet names accepted by the metadata endpoints and repositories.
const (
	FacetCategories = "categories"
	FacetColors     = "colors"
	FacetSizes      = "sizes"
	FacetMaterials  = "materials"
	FacetPatterns   = "patterns"
	FacetPacks      = "packs"
)

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Item, error)
}

// DiscountRepository provides the discount table used for price resolution.
type DiscountRepository interface {
	ListDiscounts(ctx context.Context) ([]Discount, error)
}

// FacetRepository lists selectable facet options for the filter UI.
type FacetRepository interface {
	ListFacet(ctx context.Context, facet string) ([]FacetOption, error)
}
