// Package handler exposes the storefront over HTTP.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/threadline/storefront/internal/domain/auth"
	"github.com/threadline/storefront/internal/domain/cart"
	"github.com/threadline/storefront/internal/domain/catalog"
	"github.com/threadline/storefront/internal/domain/coupon"
	"github.com/threadline/storefront/internal/domain/order"
	"github.com/threadline/storefront/internal/domain/wishlist"
)

// ProductStore is the catalog access the HTTP layer needs: the read
// side used by the shop pages plus the admin mutations.
type ProductStore interface {
	catalog.Repository
	Create(ctx context.Context, it *catalog.Item) error
	Update(ctx context.Context, it *catalog.Item) error
	Delete(ctx context.Context, id int64) error
}

// MetadataStore serves facet options, discount rules, and coupon rules.
type MetadataStore interface {
	catalog.FacetRepository
	catalog.DiscountRepository
	coupon.Repository
	CreateFacetOption(ctx context.Context, facet, name string) (int64, error)
	CreateDiscount(ctx context.Context, name string, prop decimal.Decimal) (int64, error)
	CreateCoupon(ctx context.Context, name string, offer int) (int64, error)
}

// Handler wires every endpoint to the domain services.
type Handler struct {
	products   ProductStore
	metadata   MetadataStore
	carts      *cart.Service
	wishlists  *wishlist.Service
	orders     *order.Service
	auth       *auth.Service
	thresholds catalog.BandThresholds
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products ProductStore,
	metadata MetadataStore,
	carts *cart.Service,
	wishlists *wishlist.Service,
	orders *order.Service,
	authSvc *auth.Service,
	thresholds catalog.BandThresholds,
) *Handler {
	return &Handler{
		products:   products,
		metadata:   metadata,
		carts:      carts,
		wishlists:  wishlists,
		orders:     orders,
		auth:       authSvc,
		thresholds: thresholds,
	}
}

// Routes mounts every endpoint on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/facets/{facet}", h.ListFacet)
		r.Get("/discounts", h.ListDiscounts)
		r.Get("/coupons/{code}", h.GetCoupon)

		// Everything below needs a signed-in user.
		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)

			r.Get("/cart", h.GetCart)
			r.Post("/cart/items", h.AddCartItem)
			r.Put("/cart/items/{productID}", h.UpdateCartItem)
			r.Delete("/cart/items/{productID}", h.RemoveCartItem)
			r.Delete("/cart", h.ClearCart)

			r.Get("/wishlist", h.GetWishlist)
			r.Put("/wishlist/{productID}", h.AddWishlistItem)
			r.Delete("/wishlist/{productID}", h.RemoveWishlistItem)

			r.Post("/orders", h.PlaceOrder)
			r.Get("/orders", h.ListOrders)
			r.Get("/orders/{id}", h.GetOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.authenticate, h.requireAdmin)

			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)
			r.Post("/facets/{facet}", h.CreateFacetOption)
			r.Post("/discounts", h.CreateDiscount)
			r.Post("/coupons", h.CreateCoupon)
			r.Get("/orders", h.ListAllOrders)
			r.Put("/orders/{id}/status", h.UpdateOrderStatus)
		})
	})

	return r
}
