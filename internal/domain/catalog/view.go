package catalog

import (
	"slices"
	"strings"
)

// Query describes one catalog view: an optional free-text search term,
// a facet selection, a price band, and a sort key. The zero value is
// the unfiltered, unsorted view.
type Query struct {
	Search     string
	Selection  Selection
	Band       PriceBand
	Thresholds BandThresholds
	Sort       SortKey
}

// ComputeView produces the ordered, filtered sequence of items for a
// query. The pipeline is search, then facet + price-band filter, then
// a stable sort. It allocates a fresh slice and never mutates items;
// identical inputs always produce element-wise identical output, so it
// is safe to invoke concurrently from every storefront view.
func ComputeView(items []Item, discounts []Discount, q Query) []Item {
	table := NewTable(discounts)

	term := strings.ToLower(strings.TrimSpace(q.Search))
	pred := q.Selection.Predicate(q.Band, q.Thresholds, table)

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if term != "" && !strings.Contains(strings.ToLower(it.Name), term) {
			continue
		}
		if !pred(it) {
			continue
		}
		out = append(out, it)
	}

	slices.SortStableFunc(out, q.Sort.Compare(table))
	return out
}
