package order

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadline/storefront/internal/domain/catalog"
	"github.com/threadline/storefront/internal/domain/coupon"
)

type mockProductRepo struct {
	items map[int64]catalog.Item
}

func (m *mockProductRepo) List(_ context.Context) ([]catalog.Item, error) { return nil, nil }

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*catalog.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &it, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []int64) ([]catalog.Item, error) {
	out := make([]catalog.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

type mockDiscountRepo struct {
	discounts []catalog.Discount
}

func (m *mockDiscountRepo) ListDiscounts(_ context.Context) ([]catalog.Discount, error) {
	return m.discounts, nil
}

type mockCouponRepo struct {
	rules map[string]coupon.Rule
}

func (m *mockCouponRepo) List(_ context.Context) ([]coupon.Rule, error) { return nil, nil }

func (m *mockCouponRepo) FindByName(_ context.Context, name string) (*coupon.Rule, error) {
	r, ok := m.rules[strings.ToLower(name)]
	if !ok {
		return nil, coupon.ErrInvalidCoupon
	}
	return &r, nil
}

type mockOrderRepo struct {
	last *Order
	err  error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.last = o
	o.ID = 1
	return m.err
}

func (m *mockOrderRepo) GetByID(_ context.Context, _ int64) (*Order, error) { return m.last, nil }
func (m *mockOrderRepo) ListByUser(_ context.Context, _ int64) ([]Order, error) {
	return nil, nil
}
func (m *mockOrderRepo) List(_ context.Context) ([]Order, error) { return nil, nil }
func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ int64, _ Status, _ string) error {
	return nil
}

func ref(v int64) *int64 { return &v }

func newTestService(orders *mockOrderRepo) *Service {
	products := &mockProductRepo{items: map[int64]catalog.Item{
		1: {ID: 1, Name: "Silk Scarf", Price: decimal.NewFromInt(400)},
		2: {ID: 2, Name: "Cotton Shirt", Price: decimal.NewFromInt(800), DiscountID: ref(7)},
	}}
	discounts := &mockDiscountRepo{discounts: []catalog.Discount{
		{ID: 7, Prop: decimal.NewFromInt(25)},
	}}
	coupons := coupon.NewValidator(&mockCouponRepo{rules: map[string]coupon.Rule{
		"festive10": {ID: 1, Name: "FESTIVE10", Offer: 10},
	}})
	return NewService(products, discounts, coupons, orders)
}

func TestService_Place(t *testing.T) {
	orders := &mockOrderRepo{}
	svc := newTestService(orders)

	o, err := svc.Place(context.Background(), PlaceRequest{
		UserID: 1,
		Items: []LineRequest{
			{ProductID: 1, Quantity: 2}, // 2 x 400
			{ProductID: 2, Quantity: 1}, // 1 x 600 (25% off 800)
		},
		PaymentMethod:   PaymentCOD,
		DeliveryAddress: "Phone: 555\n12 Loom Lane",
	})
	require.NoError(t, err)

	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(1400)),
		"subtotal: want 1400, got %s", o.Subtotal)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(1400)))
	assert.Equal(t, StatusPending, o.Status)
	assert.NotEmpty(t, o.Reference)
	require.Len(t, o.Items, 2)
	assert.True(t, o.Items[1].UnitPrice.Equal(decimal.NewFromInt(600)),
		"line unit price frozen at resolved value")
	assert.Same(t, o, orders.last)
}

func TestService_Place_CouponOffSubtotal(t *testing.T) {
	svc := newTestService(&mockOrderRepo{})

	o, err := svc.Place(context.Background(), PlaceRequest{
		UserID:        1,
		Items:         []LineRequest{{ProductID: 1, Quantity: 2}}, // 800
		CouponCode:    "festive10",
		PaymentMethod: PaymentCOD,
	})
	require.NoError(t, err)

	assert.Equal(t, "FESTIVE10", o.CouponName)
	assert.True(t, o.CouponDiscount.Equal(decimal.NewFromInt(80)))
	assert.True(t, o.Total.Equal(decimal.NewFromInt(720)))
}

func TestService_Place_InvalidCoupon(t *testing.T) {
	svc := newTestService(&mockOrderRepo{})

	_, err := svc.Place(context.Background(), PlaceRequest{
		UserID:        1,
		Items:         []LineRequest{{ProductID: 1, Quantity: 1}},
		CouponCode:    "NOPE",
		PaymentMethod: PaymentCOD,
	})
	assert.ErrorIs(t, err, coupon.ErrInvalidCoupon)
}

func TestService_Place_OnlineStartsPaymentPending(t *testing.T) {
	svc := newTestService(&mockOrderRepo{})

	o, err := svc.Place(context.Background(), PlaceRequest{
		UserID:        1,
		Items:         []LineRequest{{ProductID: 1, Quantity: 1}},
		PaymentMethod: PaymentOnline,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPaymentPending, o.Status)
}

func TestService_Place_Validation(t *testing.T) {
	svc := newTestService(&mockOrderRepo{})
	ctx := context.Background()

	_, err := svc.Place(ctx, PlaceRequest{UserID: 1, PaymentMethod: PaymentCOD})
	assert.ErrorIs(t, err, ErrEmptyItems)

	_, err = svc.Place(ctx, PlaceRequest{
		UserID:        1,
		Items:         []LineRequest{{ProductID: 1, Quantity: 0}},
		PaymentMethod: PaymentCOD,
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Place(ctx, PlaceRequest{
		UserID:        1,
		Items:         []LineRequest{{ProductID: 99, Quantity: 1}},
		PaymentMethod: PaymentCOD,
	})
	var pnf *ProductNotFoundError
	require.ErrorAs(t, err, &pnf)
	assert.Equal(t, int64(99), pnf.ProductID)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("Shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	_, err = ParseStatus("Teleported")
	assert.Error(t, err)
}
