package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeView_SearchIsCaseInsensitive(t *testing.T) {
	items := []Item{item(1, "Silk Scarf", 100), item(2, "Cotton Shirt", 100)}

	got := ComputeView(items, nil, Query{Search: "silk", Thresholds: DefaultThresholds()})

	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestComputeView_BlankSearchMatchesEverything(t *testing.T) {
	items := []Item{item(1, "a", 1), item(2, "b", 2)}

	for _, term := range []string{"", "   ", "\t"} {
		got := ComputeView(items, nil, Query{Search: term, Thresholds: DefaultThresholds()})
		assert.Len(t, got, 2, "term %q", term)
	}
}

func TestComputeView_SearchTermIsTrimmed(t *testing.T) {
	items := []Item{item(1, "Silk Scarf", 100), item(2, "Cotton Shirt", 100)}

	got := ComputeView(items, nil, Query{Search: "  scarf  ", Thresholds: DefaultThresholds()})

	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestComputeView_EndToEnd(t *testing.T) {
	// Five items across two categories. Item 2 carries a 50% discount
	// that brings it under the low threshold; item 4 is cheap already
	// but belongs to category 2.
	items := []Item{
		{ID: 1, Name: "Velvet Blazer", Price: decimal.NewFromInt(900), CategoryID: ref(1)},
		{ID: 2, Name: "Ajrakh Stole", Price: decimal.NewFromInt(800), CategoryID: ref(1), DiscountID: ref(7)},
		{ID: 3, Name: "Brocade Sari", Price: decimal.NewFromInt(2000), CategoryID: ref(1)},
		{ID: 4, Name: "Ankle Socks", Price: decimal.NewFromInt(99), CategoryID: ref(2)},
		{ID: 5, Name: "Zari Dupatta", Price: decimal.NewFromInt(450), CategoryID: ref(1)},
	}
	discounts := []Discount{{ID: 7, Name: "Monsoon Sale", Prop: decimal.NewFromInt(50)}}

	got := ComputeView(items, discounts, Query{
		Selection:  Selection{Categories: []int64{1}},
		Band:       BandBelow,
		Thresholds: DefaultThresholds(),
		Sort:       SortNameAsc,
	})

	// Category 1 AND resolved price < 500: items 2 (800->400) and 5 (450),
	// alphabetical by name.
	require.Len(t, got, 2)
	assert.Equal(t, "Ajrakh Stole", got[0].Name)
	assert.Equal(t, "Zari Dupatta", got[1].Name)
}

func TestComputeView_Idempotent(t *testing.T) {
	items := []Item{
		{ID: 1, Name: "b", Price: decimal.NewFromInt(300), DiscountID: ref(1)},
		item(2, "a", 300),
		item(3, "c", 100),
	}
	discounts := []Discount{{ID: 1, Prop: decimal.NewFromInt(10)}}
	q := Query{Band: BandBelow, Thresholds: DefaultThresholds(), Sort: SortPriceAsc}

	first := ComputeView(items, discounts, q)
	second := ComputeView(items, discounts, q)

	assert.Equal(t, first, second)
}

func TestComputeView_EmptyResultIsNotAnError(t *testing.T) {
	items := []Item{item(1, "a", 100)}

	got := ComputeView(items, nil, Query{
		Selection:  Selection{Categories: []int64{42}},
		Thresholds: DefaultThresholds(),
	})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestComputeView_DoesNotMutateInput(t *testing.T) {
	items := []Item{item(1, "c", 3), item(2, "a", 1), item(3, "b", 2)}

	_ = ComputeView(items, nil, Query{Sort: SortNameAsc, Thresholds: DefaultThresholds()})

	assert.Equal(t, []int64{1, 2, 3}, ids(items))
}

func TestComputeView_StableSortAcrossPipeline(t *testing.T) {
	items := []Item{
		item(1, "x", 500),
		item(2, "y", 300),
		item(3, "z", 300),
	}

	got := ComputeView(items, nil, Query{Sort: SortPriceAsc, Thresholds: DefaultThresholds()})

	assert.Equal(t, []int64{2, 3, 1}, ids(got))
}
