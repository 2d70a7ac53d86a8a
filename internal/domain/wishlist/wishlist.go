package wishlist

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/threadline/storefront/internal/domain/catalog"
)

// Repository defines per-user wishlist persistence. Implementations
// normalize stored rows into catalog items at this boundary, so the
// engine only ever sees canonical values.
type Repository interface {
	List(ctx context.Context, userID int64) ([]catalog.Item, error)
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
	Contains(ctx context.Context, userID, productID int64) (bool, error)
}

// Service owns wishlist business logic.
type Service struct {
	repo      Repository
	products  catalog.Repository
	discounts catalog.DiscountRepository
}

// NewService creates a wishlist Service.
func NewService(repo Repository, products catalog.Repository, discounts catalog.DiscountRepository) *Service {
	return &Service{repo: repo, products: products, discounts: discounts}
}

// Add puts a product on the user's wishlist. Adding a product that is
// already listed is a no-op, not an error.
func (s *Service) Add(ctx context.Context, userID, productID int64) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return errors.Wrap(err, "check product")
	}
	return s.repo.Add(ctx, userID, productID)
}

// Remove takes a product off the wishlist.
func (s *Service) Remove(ctx context.Context, userID, productID int64) error {
	return s.repo.Remove(ctx, userID, productID)
}

// Contains reports whether the product is on the user's wishlist.
func (s *Service) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	return s.repo.Contains(ctx, userID, productID)
}

// Get returns the wishlist filtered and ordered by the catalog engine,
// with the same query semantics as the shop listing.
func (s *Service) Get(ctx context.Context, userID int64, q catalog.Query) ([]catalog.Item, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load wishlist")
	}

	discounts, err := s.discounts.ListDiscounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load discounts")
	}

	return catalog.ComputeView(items, discounts, q), nil
}
