package catalog

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Table is a discount lookup table keyed by discount ID. Build it once
// per view computation and share it across price resolutions.
type Table map[int64]Discount

// NewTable builds a Table from a discount list. Later duplicates win,
// matching a last-write-wins refresh of the metadata snapshot.
func NewTable(discounts []Discount) Table {
	t := make(Table, len(discounts))
	for _, d := range discounts {
		t[d.ID] = d
	}
	return t
}

// ResolvePrice returns the effective unit price of an item after
// applying its referenced discount, if any.
//
// An item without a discount reference, or whose reference is missing
// from the table, resolves to its base price. The fallback is silent:
// a dangling reference is not an error.
//
// The discounted price is price - prop/100*price, rounded to the
// nearest integer with ties going away from zero (the storefront's
// prices are non-negative, so this matches ordinary half-up rounding).
// Prop is applied as-is; values outside [0, 100] produce prices above
// base or below zero accordingly.
func ResolvePrice(item Item, table Table) decimal.Decimal {
	if item.DiscountID == nil {
		return item.Price
	}
	d, ok := table[*item.DiscountID]
	if !ok {
		return item.Price
	}
	off := item.Price.Mul(d.Prop).Div(hundred)
	return item.Price.Sub(off).Round(0)
}
