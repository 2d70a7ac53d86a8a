package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/threadline/storefront/internal/domain/catalog"
)

// Sentinel errors for cart operations.
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrNotInCart       = errors.New("product not in cart")
)

// Line is one cart entry: a catalog item and how many of it.
type Line struct {
	Item     catalog.Item
	Quantity int
}

// Repository defines per-user cart persistence. Upsert accumulates
// quantity when the product is already present; SetQuantity replaces it.
type Repository interface {
	Lines(ctx context.Context, userID int64) ([]Line, error)
	Upsert(ctx context.Context, userID, productID int64, quantity int) error
	SetQuantity(ctx context.Context, userID, productID int64, quantity int) error
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

// View is the cart as rendered: filtered, sorted lines plus the
// discount-aware subtotal over the FULL cart (totals ignore the view
// filter, matching the storefront's summary box).
type View struct {
	Lines    []Line
	Subtotal decimal.Decimal
}

// Service owns cart business logic on top of a Repository.
type Service struct {
	repo      Repository
	products  catalog.Repository
	discounts catalog.DiscountRepository
}

// NewService creates a cart Service.
func NewService(repo Repository, products catalog.Repository, discounts catalog.DiscountRepository) *Service {
	return &Service{repo: repo, products: products, discounts: discounts}
}

// Add puts a product in the user's cart, accumulating quantity if it is
// already there. The product must exist in the catalog.
func (s *Service) Add(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return errors.Wrap(err, "check product")
	}
	return s.repo.Upsert(ctx, userID, productID, quantity)
}

// UpdateQuantity sets the exact quantity of a cart line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.repo.SetQuantity(ctx, userID, productID, quantity)
}

// Remove deletes a single line from the cart.
func (s *Service) Remove(ctx context.Context, userID, productID int64) error {
	return s.repo.Remove(ctx, userID, productID)
}

// Clear empties the cart, typically after a successful checkout.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

// Get returns the user's cart view. The catalog engine filters and
// orders the lines with the same query semantics as the shop listing;
// the subtotal always covers every line at resolved prices.
func (s *Service) Get(ctx context.Context, userID int64, q catalog.Query) (*View, error) {
	lines, err := s.repo.Lines(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	discounts, err := s.discounts.ListDiscounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load discounts")
	}
	table := catalog.NewTable(discounts)

	qtyByID := make(map[int64]int, len(lines))
	items := make([]catalog.Item, len(lines))
	subtotal := decimal.Zero
	for i, l := range lines {
		items[i] = l.Item
		qtyByID[l.Item.ID] = l.Quantity
		price := catalog.ResolvePrice(l.Item, table)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	view := catalog.ComputeView(items, discounts, q)
	out := make([]Line, len(view))
	for i, it := range view {
		out[i] = Line{Item: it, Quantity: qtyByID[it.ID]}
	}

	return &View{Lines: out, Subtotal: subtotal}, nil
}
