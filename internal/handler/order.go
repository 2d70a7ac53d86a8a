package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/threadline/storefront/internal/domain/coupon"
	"github.com/threadline/storefront/internal/domain/order"
)

// PlaceOrder checks out the requested lines. Unit prices are frozen at
// their resolved values; the response totals are authoritative.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())

	req := order.PlaceRequest{UserID: session.UserID, PaymentMethod: order.PaymentCOD}
	d := jx.Decode(r.Body, decodeBufSize)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				var line order.LineRequest
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "productId":
						v, err := d.Int64()
						line.ProductID = v
						return err
					case "quantity":
						v, err := d.Int()
						line.Quantity = v
						return err
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				req.Items = append(req.Items, line)
				return nil
			})
		case "couponCode":
			v, err := d.Str()
			req.CouponCode = v
			return err
		case "paymentMethod":
			v, err := d.Str()
			req.PaymentMethod = order.PaymentMethod(v)
			return err
		case "deliveryAddress":
			v, err := d.Str()
			req.DeliveryAddress = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PaymentMethod != order.PaymentCOD && req.PaymentMethod != order.PaymentOnline {
		writeError(w, r, http.StatusBadRequest, "unknown payment method")
		return
	}

	o, err := h.orders.Place(r.Context(), req)
	if err != nil {
		var notFound *order.ProductNotFoundError
		switch {
		case errors.Is(err, order.ErrEmptyItems):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, order.ErrInvalidQuantity):
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		case errors.As(err, &notFound):
			writeError(w, r, http.StatusUnprocessableEntity, notFound.Error())
		case errors.Is(err, coupon.ErrInvalidCoupon):
			writeError(w, r, http.StatusUnprocessableEntity, "invalid coupon code")
		default:
			internalError(w, r, err)
		}
		return
	}

	// A fresh order empties the cart the lines came from.
	if err := h.carts.Clear(r.Context(), session.UserID); err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		encodeOrder(e, o, true)
	})
}

// ListOrders returns the signed-in user's orders, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())

	orders, err := h.orders.ListForUser(r.Context(), session.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeOrderList(e, orders)
	})
}

// GetOrder returns one order with its status timeline. Users only see
// their own orders; admins see everything.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFrom(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		internalError(w, r, err)
		return
	}
	if o.UserID != session.UserID && !session.Admin {
		writeError(w, r, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, o, true)
	})
}

// ListAllOrders returns every order for the admin back-office.
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeOrderList(e, orders)
	})
}

// UpdateOrderStatus transitions an order and appends a timeline entry.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	var statusRaw, note string
	d := jx.Decode(r.Body, decodeBufSize)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "status":
			v, err := d.Str()
			statusRaw = v
			return err
		case "note":
			v, err := d.Str()
			note = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := order.ParseStatus(statusRaw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, status, note); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func encodeOrderList(e *jx.Encoder, orders []order.Order) {
	e.ArrStart()
	for i := range orders {
		encodeOrder(e, &orders[i], false)
	}
	e.ArrEnd()
}

func encodeOrder(e *jx.Encoder, o *order.Order, withHistory bool) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(o.ID)
	e.FieldStart("reference")
	e.Str(o.Reference)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(it.ProductID)
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("unitPrice")
		encodeDecimal(e, it.UnitPrice)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	encodeDecimal(e, o.Subtotal)
	e.FieldStart("couponName")
	e.Str(o.CouponName)
	e.FieldStart("couponDiscount")
	encodeDecimal(e, o.CouponDiscount)
	e.FieldStart("total")
	encodeDecimal(e, o.Total)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("paymentMethod")
	e.Str(string(o.PaymentMethod))
	e.FieldStart("deliveryAddress")
	e.Str(o.DeliveryAddress)
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.UTC().Format(time.RFC3339))
	if withHistory {
		e.FieldStart("history")
		e.ArrStart()
		for _, c := range o.History {
			e.ObjStart()
			e.FieldStart("status")
			e.Str(string(c.Status))
			e.FieldStart("note")
			e.Str(c.Note)
			e.FieldStart("createdAt")
			e.Str(c.CreatedAt.UTC().Format(time.RFC3339))
			e.ObjEnd()
		}
		e.ArrEnd()
	}
	e.ObjEnd()
}
