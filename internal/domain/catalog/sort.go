package catalog

import "strings"

// SortKey selects the ordering of a computed view. The values are the
// wire names used by the storefront's sort control.
type SortKey string

const (
	SortNone      SortKey = "none"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
)

// ParseSortKey maps a wire value to a SortKey, defaulting to SortNone.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return k
	default:
		return SortNone
	}
}

// Compare returns a three-way comparator for the sort key. Price keys
// compare resolved prices from the given table; name keys compare
// lexically. SortNone reports every pair equal, so a stable sort
// preserves the input order. The comparator never mutates its inputs;
// callers are responsible for using a stable sort so that ties keep
// their original relative order.
func (k SortKey) Compare(table Table) func(a, b Item) int {
	switch k {
	case SortPriceAsc:
		return func(a, b Item) int {
			return ResolvePrice(a, table).Cmp(ResolvePrice(b, table))
		}
	case SortPriceDesc:
		return func(a, b Item) int {
			return ResolvePrice(b, table).Cmp(ResolvePrice(a, table))
		}
	case SortNameAsc:
		return func(a, b Item) int {
			return strings.Compare(a.Name, b.Name)
		}
	case SortNameDesc:
		return func(a, b Item) int {
			return strings.Compare(b.Name, a.Name)
		}
	default:
		return func(a, b Item) int { return 0 }
	}
}
