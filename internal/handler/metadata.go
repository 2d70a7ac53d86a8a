package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/threadline/storefront/internal/domain/coupon"
	"github.com/threadline/storefront/internal/repository"
)

// ListFacet returns the options of one facet, e.g. /api/facets/colors.
func (h *Handler) ListFacet(w http.ResponseWriter, r *http.Request) {
	facet := chi.URLParam(r, "facet")

	options, err := h.metadata.ListFacet(r.Context(), facet)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownFacet) {
			writeError(w, r, http.StatusNotFound, "unknown facet")
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, o := range options {
			e.ObjStart()
			e.FieldStart("id")
			e.Int64(o.ID)
			e.FieldStart("name")
			e.Str(o.Name)
			e.ObjEnd()
		}
		e.ArrEnd()
	})
}

// ListDiscounts returns every discount rule so the filter UI can offer
// them as facet values.
func (h *Handler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.metadata.ListDiscounts(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, d := range discounts {
			e.ObjStart()
			e.FieldStart("id")
			e.Int64(d.ID)
			e.FieldStart("name")
			e.Str(d.Name)
			e.FieldStart("prop")
			encodeDecimal(e, d.Prop)
			e.ObjEnd()
		}
		e.ArrEnd()
	})
}

// GetCoupon looks up a coupon rule by code so the checkout page can
// preview the discount before placing an order.
func (h *Handler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	rule, err := h.metadata.FindByName(r.Context(), code)
	if err != nil {
		if errors.Is(err, coupon.ErrInvalidCoupon) {
			writeError(w, r, http.StatusNotFound, "invalid coupon code")
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeCouponRule(e, rule)
	})
}

func encodeCouponRule(e *jx.Encoder, rule *coupon.Rule) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(rule.ID)
	e.FieldStart("name")
	e.Str(rule.Name)
	e.FieldStart("offer")
	e.Int(rule.Offer)
	e.ObjEnd()
}

// CreateFacetOption adds a new value to one facet.
func (h *Handler) CreateFacetOption(w http.ResponseWriter, r *http.Request) {
	facet := chi.URLParam(r, "facet")

	var name string
	d := jx.Decode(r.Body, decodeBufSize)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "name" {
			return d.Skip()
		}
		v, err := d.Str()
		name = v
		return err
	})
	if err != nil || name == "" {
		writeError(w, r, http.StatusBadRequest, "name required")
		return
	}

	id, err := h.metadata.CreateFacetOption(r.Context(), facet, name)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownFacet) {
			writeError(w, r, http.StatusNotFound, "unknown facet")
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(id)
		e.FieldStart("name")
		e.Str(name)
		e.ObjEnd()
	})
}

// CreateDiscount adds a discount rule.
func (h *Handler) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	var (
		name string
		prop decimal.Decimal
	)
	d := jx.Decode(r.Body, decodeBufSize)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			name = v
			return err
		case "prop":
			return decodeDecimal(d, &prop)
		default:
			return d.Skip()
		}
	})
	if err != nil || name == "" {
		writeError(w, r, http.StatusBadRequest, "name and prop required")
		return
	}

	id, err := h.metadata.CreateDiscount(r.Context(), name, prop)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(id)
		e.FieldStart("name")
		e.Str(name)
		e.FieldStart("prop")
		encodeDecimal(e, prop)
		e.ObjEnd()
	})
}

// CreateCoupon adds or updates a coupon rule.
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var (
		name  string
		offer int
	)
	d := jx.Decode(r.Body, decodeBufSize)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			name = v
			return err
		case "offer":
			v, err := d.Int()
			offer = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil || name == "" {
		writeError(w, r, http.StatusBadRequest, "name and offer required")
		return
	}
	if offer < 0 || offer > 100 {
		writeError(w, r, http.StatusBadRequest, "offer must be between 0 and 100")
		return
	}

	id, err := h.metadata.CreateCoupon(r.Context(), name, offer)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(id)
		e.FieldStart("name")
		e.Str(name)
		e.FieldStart("offer")
		e.Int(offer)
		e.ObjEnd()
	})
}
