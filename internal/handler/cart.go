package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/threadline/storefront/internal/domain/cart"
	"github.com/threadline/storefront/internal/domain/catalog"
)

// GetCart returns the signed-in user's cart, filtered and ordered by
// the same query parameters as the product listing.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())

	q, err := h.parseQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.carts.Get(r.Context(), session.UserID, q)
	if err != nil {
		internalError(w, r, err)
		return
	}

	discounts, err := h.metadata.ListDiscounts(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	table := catalog.NewTable(discounts)

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("items")
		e.ArrStart()
		for _, line := range view.Lines {
			e.ObjStart()
			e.FieldStart("product")
			encodeItem(e, line.Item, table)
			e.FieldStart("quantity")
			e.Int(line.Quantity)
			e.ObjEnd()
		}
		e.ArrEnd()
		e.FieldStart("subtotal")
		encodeDecimal(e, view.Subtotal)
		e.ObjEnd()
	})
}

// AddCartItem puts a product in the cart, accumulating quantity.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())

	var (
		productID int64
		quantity  int
	)
	d := jx.Decode(r.Body, decodeBufSize)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "productId":
			v, err := d.Int64()
			productID = v
			return err
		case "quantity":
			v, err := d.Int()
			quantity = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.carts.Add(r.Context(), session.UserID, productID, quantity)
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, r, http.StatusUnprocessableEntity, "product not found")
	case err != nil:
		internalError(w, r, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateCartItem sets the exact quantity of one cart line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	var quantity int
	d := jx.Decode(r.Body, decodeBufSize)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		v, err := d.Int()
		quantity = v
		return err
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.carts.UpdateQuantity(r.Context(), session.UserID, productID, quantity)
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, cart.ErrNotInCart):
		writeError(w, r, http.StatusNotFound, err.Error())
	case err != nil:
		internalError(w, r, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveCartItem deletes one cart line.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.carts.Remove(r.Context(), session.UserID, productID); err != nil {
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())

	if err := h.carts.Clear(r.Context(), session.UserID); err != nil {
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
