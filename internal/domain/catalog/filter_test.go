package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSelection_EmptyIsUnconstrained(t *testing.T) {
	items := []Item{
		item(1, "Silk Scarf", 300),
		{ID: 2, Name: "Cotton Shirt", Price: decimal.NewFromInt(700), CategoryID: ref(1)},
		{ID: 3, Name: "Linen Kurta", Price: decimal.NewFromInt(1500), ColorID: ref(4)},
	}

	pred := Selection{}.Predicate(BandAll, DefaultThresholds(), nil)
	for _, it := range items {
		assert.True(t, pred(it), "item %d should pass an empty selection", it.ID)
	}
}

func TestSelection_FacetExclusion(t *testing.T) {
	a := Item{ID: 1, Price: decimal.NewFromInt(100), CategoryID: ref(1)}
	b := Item{ID: 2, Price: decimal.NewFromInt(100), CategoryID: ref(2)}

	pred := Selection{Categories: []int64{1}}.Predicate(BandAll, DefaultThresholds(), nil)

	assert.True(t, pred(a))
	assert.False(t, pred(b))
}

func TestSelection_NilFacetOnlyPassesEmptySelection(t *testing.T) {
	noColor := Item{ID: 1, Price: decimal.NewFromInt(100)}

	unconstrained := Selection{}.Predicate(BandAll, DefaultThresholds(), nil)
	constrained := Selection{Colors: []int64{3}}.Predicate(BandAll, DefaultThresholds(), nil)

	assert.True(t, unconstrained(noColor))
	assert.False(t, constrained(noColor))
}

func TestSelection_FacetsCombineWithAND(t *testing.T) {
	it := Item{ID: 1, Price: decimal.NewFromInt(100), CategoryID: ref(1), ColorID: ref(2)}

	tests := []struct {
		name string
		sel  Selection
		want bool
	}{
		{"both facets match", Selection{Categories: []int64{1}, Colors: []int64{2}}, true},
		{"category matches, color does not", Selection{Categories: []int64{1}, Colors: []int64{9}}, false},
		{"duplicates in selection are idempotent", Selection{Categories: []int64{1, 1, 1}}, true},
		{"selection order is irrelevant", Selection{Categories: []int64{5, 3, 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := tt.sel.Predicate(BandAll, DefaultThresholds(), nil)
			assert.Equal(t, tt.want, pred(it))
		})
	}
}

func TestPriceBand_Boundaries(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		price int64
		band  PriceBand
		want  bool
	}{
		{499, BandBelow, true},
		{500, BandBelow, false},
		{500, BandBetween, true},
		{1000, BandBetween, true},
		{1001, BandBetween, false},
		{1000, BandAbove, false},
		{1001, BandAbove, true},
		{0, BandAll, true},
		{999999, BandAll, true},
	}

	for _, tt := range tests {
		pred := Selection{}.Predicate(tt.band, th, nil)
		got := pred(item(1, "x", tt.price))
		assert.Equal(t, tt.want, got, "price %d band %d", tt.price, tt.band)
	}
}

func TestPriceBand_UsesResolvedPrice(t *testing.T) {
	// Base price 600 sits in the middle band; a 25% discount resolves
	// to 450, which moves the item below the low threshold.
	it := Item{ID: 1, Price: decimal.NewFromInt(600), DiscountID: ref(1)}
	table := NewTable([]Discount{{ID: 1, Prop: decimal.NewFromInt(25)}})

	below := Selection{}.Predicate(BandBelow, DefaultThresholds(), table)
	between := Selection{}.Predicate(BandBetween, DefaultThresholds(), table)

	assert.True(t, below(it))
	assert.False(t, between(it))
}

func TestParsePriceBand(t *testing.T) {
	assert.Equal(t, BandBelow, ParsePriceBand("low"))
	assert.Equal(t, BandBetween, ParsePriceBand("mid"))
	assert.Equal(t, BandAbove, ParsePriceBand("high"))
	assert.Equal(t, BandAll, ParsePriceBand("all"))
	assert.Equal(t, BandAll, ParsePriceBand(""))
	assert.Equal(t, BandAll, ParsePriceBand("bogus"))
}
