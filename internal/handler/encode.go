package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/threadline/storefront/internal/domain/catalog"
)

// decodeBufSize bounds the streaming decoder's read buffer.
const decodeBufSize = 4096

// writeJSON renders a response body built by fn. Encoding happens fully
// in memory so a failure mid-encode cannot corrupt a 200 response.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, fn func(e *jx.Encoder)) {
	e := &jx.Encoder{}
	fn(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(e.Bytes()); err != nil {
		zctx.From(r.Context()).Debug("Write response", zap.Error(err))
	}
}

// writeError renders the error envelope used by every endpoint.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// internalError logs the cause and responds with a generic 500 so
// storage details never reach the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Internal error", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

func encodeDecimal(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}

// encodeItem renders one catalog item with both the base price and the
// price after its discount rule.
func encodeItem(e *jx.Encoder, it catalog.Item, table catalog.Table) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(it.ID)
	e.FieldStart("name")
	e.Str(it.Name)
	e.FieldStart("price")
	encodeDecimal(e, it.Price)
	e.FieldStart("finalPrice")
	encodeDecimal(e, catalog.ResolvePrice(it, table))
	e.FieldStart("description")
	e.Str(it.Description)
	e.FieldStart("photoLink")
	e.Str(it.PhotoLink)
	e.FieldStart("inStock")
	e.Bool(it.InStock)
	encodeFacetRef(e, "categoryId", it.CategoryID)
	encodeFacetRef(e, "colorId", it.ColorID)
	encodeFacetRef(e, "sizeId", it.SizeID)
	encodeFacetRef(e, "materialId", it.MaterialID)
	encodeFacetRef(e, "patternId", it.PatternID)
	encodeFacetRef(e, "packId", it.PackID)
	encodeFacetRef(e, "discountId", it.DiscountID)
	encodeFacetRef(e, "couponId", it.CouponID)
	e.ObjEnd()
}

func encodeFacetRef(e *jx.Encoder, field string, ref *int64) {
	e.FieldStart(field)
	if ref == nil {
		e.Null()
		return
	}
	e.Int64(*ref)
}

func encodeItems(e *jx.Encoder, items []catalog.Item, table catalog.Table) {
	e.ArrStart()
	for _, it := range items {
		encodeItem(e, it, table)
	}
	e.ArrEnd()
}
