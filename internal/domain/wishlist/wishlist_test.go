package wishlist

import (
	"context"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadline/storefront/internal/domain/catalog"
)

type mockWishlistRepo struct {
	ids []int64
}

func (m *mockWishlistRepo) List(_ context.Context, _ int64) ([]catalog.Item, error) {
	out := make([]catalog.Item, 0, len(m.ids))
	for _, id := range m.ids {
		out = append(out, testItems[id])
	}
	return out, nil
}

func (m *mockWishlistRepo) Add(_ context.Context, _, productID int64) error {
	if !slices.Contains(m.ids, productID) {
		m.ids = append(m.ids, productID)
	}
	return nil
}

func (m *mockWishlistRepo) Remove(_ context.Context, _, productID int64) error {
	m.ids = slices.DeleteFunc(m.ids, func(id int64) bool { return id == productID })
	return nil
}

func (m *mockWishlistRepo) Contains(_ context.Context, _, productID int64) (bool, error) {
	return slices.Contains(m.ids, productID), nil
}

type mockProductRepo struct{}

func (mockProductRepo) List(_ context.Context) ([]catalog.Item, error) { return nil, nil }

func (mockProductRepo) GetByID(_ context.Context, id int64) (*catalog.Item, error) {
	it, ok := testItems[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &it, nil
}

func (mockProductRepo) GetByIDs(_ context.Context, _ []int64) ([]catalog.Item, error) {
	return nil, nil
}

type mockDiscountRepo struct {
	discounts []catalog.Discount
}

func (m *mockDiscountRepo) ListDiscounts(_ context.Context) ([]catalog.Discount, error) {
	return m.discounts, nil
}

func ref(v int64) *int64 { return &v }

var testItems = map[int64]catalog.Item{
	1: {ID: 1, Name: "Silk Scarf", Price: decimal.NewFromInt(400)},
	2: {ID: 2, Name: "Cotton Shirt", Price: decimal.NewFromInt(800), DiscountID: ref(7)},
	3: {ID: 3, Name: "Linen Kurta", Price: decimal.NewFromInt(1200)},
}

func TestService_AddIsIdempotent(t *testing.T) {
	repo := &mockWishlistRepo{}
	svc := NewService(repo, mockProductRepo{}, &mockDiscountRepo{})
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, 1, 1))
	require.NoError(t, svc.Add(ctx, 1, 1))

	assert.Equal(t, []int64{1}, repo.ids)
}

func TestService_Add_UnknownProduct(t *testing.T) {
	svc := NewService(&mockWishlistRepo{}, mockProductRepo{}, &mockDiscountRepo{})

	err := svc.Add(context.Background(), 1, 404)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestService_Get_AppliesEngineQuery(t *testing.T) {
	repo := &mockWishlistRepo{ids: []int64{3, 2, 1}}
	svc := NewService(repo, mockProductRepo{}, &mockDiscountRepo{
		discounts: []catalog.Discount{{ID: 7, Prop: decimal.NewFromInt(50)}},
	})

	// Cotton Shirt resolves to 400; below-band keeps it and Silk Scarf.
	items, err := svc.Get(context.Background(), 1, catalog.Query{
		Band:       catalog.BandBelow,
		Thresholds: catalog.DefaultThresholds(),
		Sort:       catalog.SortNameAsc,
	})
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "Cotton Shirt", items[0].Name)
	assert.Equal(t, "Silk Scarf", items[1].Name)
}

func TestService_RemoveAndContains(t *testing.T) {
	repo := &mockWishlistRepo{ids: []int64{1, 2}}
	svc := NewService(repo, mockProductRepo{}, &mockDiscountRepo{})
	ctx := context.Background()

	ok, err := svc.Contains(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Remove(ctx, 1, 2))

	ok, err = svc.Contains(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}
