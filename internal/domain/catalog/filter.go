package catalog

import (
	"slices"

	"github.com/shopspring/decimal"
)

// PriceBand is a coarse resolved-price range filter.
type PriceBand uint8

const (
	// BandAll applies no price constraint.
	BandAll PriceBand = iota
	// BandBelow keeps items with resolved price strictly below Low.
	BandBelow
	// BandBetween keeps items with Low <= resolved price <= High.
	BandBetween
	// BandAbove keeps items with resolved price strictly above High.
	BandAbove
)

// BandThresholds holds the configured price band boundaries.
type BandThresholds struct {
	Low  decimal.Decimal
	High decimal.Decimal
}

// DefaultThresholds mirrors the storefront's stock bands: below 500,
// 500–1000, above 1000.
func DefaultThresholds() BandThresholds {
	return BandThresholds{
		Low:  decimal.NewFromInt(500),
		High: decimal.NewFromInt(1000),
	}
}

// ParsePriceBand maps the wire values used by the filter UI. Unknown
// values fall back to BandAll.
func ParsePriceBand(s string) PriceBand {
	switch s {
	case "low":
		return BandBelow
	case "mid":
		return BandBetween
	case "high":
		return BandAbove
	default:
		return BandAll
	}
}

// Selection is a set of chosen facet values, one slice per facet.
// An empty slice leaves that facet unconstrained; it never means
// "match nothing". Duplicates are idempotent and order is irrelevant.
type Selection struct {
	Categories []int64
	Colors     []int64
	Sizes      []int64
	Materials  []int64
	Patterns   []int64
	Packs      []int64
	Discounts  []int64
	Coupons    []int64
}

// IsEmpty reports whether no facet carries a constraint.
func (s Selection) IsEmpty() bool {
	return len(s.Categories) == 0 && len(s.Colors) == 0 &&
		len(s.Sizes) == 0 && len(s.Materials) == 0 &&
		len(s.Patterns) == 0 && len(s.Packs) == 0 &&
		len(s.Discounts) == 0 && len(s.Coupons) == 0
}

// matchFacet implements the tri-state facet rule: an empty selection
// passes everything, otherwise the item must carry a value that is in
// the selection. A nil item value only passes an empty selection.
func matchFacet(val *int64, selected []int64) bool {
	if len(selected) == 0 {
		return true
	}
	if val == nil {
		return false
	}
	return slices.Contains(selected, *val)
}

// Predicate builds the combined facet + price-band predicate. The band
// compares against the item's resolved price, so discounted items move
// between bands with their discounts. The returned predicate is pure
// and can be evaluated per item in any order.
func (s Selection) Predicate(band PriceBand, th BandThresholds, table Table) func(Item) bool {
	return func(it Item) bool {
		if !matchFacet(it.CategoryID, s.Categories) ||
			!matchFacet(it.ColorID, s.Colors) ||
			!matchFacet(it.SizeID, s.Sizes) ||
			!matchFacet(it.MaterialID, s.Materials) ||
			!matchFacet(it.PatternID, s.Patterns) ||
			!matchFacet(it.PackID, s.Packs) ||
			!matchFacet(it.DiscountID, s.Discounts) ||
			!matchFacet(it.CouponID, s.Coupons) {
			return false
		}
		return inBand(ResolvePrice(it, table), band, th)
	}
}

func inBand(price decimal.Decimal, band PriceBand, th BandThresholds) bool {
	switch band {
	case BandBelow:
		return price.LessThan(th.Low)
	case BandBetween:
		return price.GreaterThanOrEqual(th.Low) && price.LessThanOrEqual(th.High)
	case BandAbove:
		return price.GreaterThan(th.High)
	default:
		return true
	}
}
