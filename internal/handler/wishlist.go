package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/threadline/storefront/internal/domain/catalog"
)

// GetWishlist returns the signed-in user's wishlist through the same
// filter and sort pipeline as the product listing.
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())

	q, err := h.parseQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.wishlists.Get(r.Context(), session.UserID, q)
	if err != nil {
		internalError(w, r, err)
		return
	}

	discounts, err := h.metadata.ListDiscounts(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeItems(e, items, catalog.NewTable(discounts))
	})
}

// AddWishlistItem puts a product on the wishlist. Repeats are no-ops.
func (h *Handler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.wishlists.Add(r.Context(), session.UserID, productID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusUnprocessableEntity, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveWishlistItem takes a product off the wishlist.
func (h *Handler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.wishlists.Remove(r.Context(), session.UserID, productID); err != nil {
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
