package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/threadline/storefront/internal/domain/catalog"
)

// parseQuery builds a catalog query from the listing URL parameters.
// Facet selections arrive as comma-separated ID lists; unknown price
// bands and sort keys fall back to their unconstrained defaults.
func (h *Handler) parseQuery(r *http.Request) (catalog.Query, error) {
	params := r.URL.Query()

	sel := catalog.Selection{}
	for _, f := range []struct {
		name string
		dst  *[]int64
	}{
		{"categories", &sel.Categories},
		{"colors", &sel.Colors},
		{"sizes", &sel.Sizes},
		{"materials", &sel.Materials},
		{"patterns", &sel.Patterns},
		{"packs", &sel.Packs},
		{"discounts", &sel.Discounts},
		{"coupons", &sel.Coupons},
	} {
		ids, err := parseIDList(params.Get(f.name))
		if err != nil {
			return catalog.Query{}, errors.Wrapf(err, "parse %s", f.name)
		}
		*f.dst = ids
	}

	return catalog.Query{
		Search:     params.Get("q"),
		Selection:  sel,
		Band:       catalog.ParsePriceBand(params.Get("price")),
		Thresholds: h.thresholds,
		Sort:       catalog.ParseSortKey(params.Get("sort")),
	}, nil
}

func parseIDList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, errors.Errorf("invalid id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListProducts returns the catalog view for the request's search term,
// facet selection, price band, and sort key.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	var (
		items     []catalog.Item
		discounts []catalog.Discount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = h.products.List(gctx)
		return errors.Wrap(err, "list products")
	})
	g.Go(func() (err error) {
		discounts, err = h.metadata.ListDiscounts(gctx)
		return errors.Wrap(err, "list discounts")
	})
	if err := g.Wait(); err != nil {
		internalError(w, r, err)
		return
	}

	table := catalog.NewTable(discounts)
	view := catalog.ComputeView(items, discounts, q)

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeItems(e, view, table)
	})
}

// GetProduct returns one product by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	ctx := r.Context()
	it, err := h.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}

	discounts, err := h.metadata.ListDiscounts(ctx)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeItem(e, *it, catalog.NewTable(discounts))
	})
}

// productRequest is the admin create/update payload.
type productRequest struct {
	item catalog.Item
}

func decodeProductRequest(r *http.Request) (*productRequest, error) {
	var req productRequest
	d := jx.Decode(r.Body, decodeBufSize)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			req.item.Name = v
			return err
		case "price":
			return decodeDecimal(d, &req.item.Price)
		case "description":
			v, err := d.Str()
			req.item.Description = v
			return err
		case "photoLink":
			v, err := d.Str()
			req.item.PhotoLink = v
			return err
		case "inStock":
			v, err := d.Bool()
			req.item.InStock = v
			return err
		case "categoryId":
			return decodeFacetRef(d, &req.item.CategoryID)
		case "colorId":
			return decodeFacetRef(d, &req.item.ColorID)
		case "sizeId":
			return decodeFacetRef(d, &req.item.SizeID)
		case "materialId":
			return decodeFacetRef(d, &req.item.MaterialID)
		case "patternId":
			return decodeFacetRef(d, &req.item.PatternID)
		case "packId":
			return decodeFacetRef(d, &req.item.PackID)
		case "discountId":
			return decodeFacetRef(d, &req.item.DiscountID)
		case "couponId":
			return decodeFacetRef(d, &req.item.CouponID)
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	if req.item.Name == "" {
		return nil, errors.New("name required")
	}
	if req.item.Price.IsNegative() {
		return nil, errors.New("price must not be negative")
	}
	return &req, nil
}

func decodeDecimal(d *jx.Decoder, dst *decimal.Decimal) error {
	n, err := d.Num()
	if err != nil {
		return err
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func decodeFacetRef(d *jx.Decoder, dst **int64) error {
	if d.Next() == jx.Null {
		*dst = nil
		return d.Null()
	}
	v, err := d.Int64()
	if err != nil {
		return err
	}
	*dst = &v
	return nil
}

// CreateProduct inserts a catalog item.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProductRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.products.Create(r.Context(), &req.item); err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		encodeItem(e, req.item, nil)
	})
}

// UpdateProduct replaces a catalog item.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	req, err := decodeProductRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.item.ID = id

	if err := h.products.Update(r.Context(), &req.item); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeItem(e, req.item, nil)
	})
}

// DeleteProduct removes a catalog item.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
