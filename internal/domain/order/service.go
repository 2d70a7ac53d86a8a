package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/threadline/storefront/internal/domain/catalog"
	"github.com/threadline/storefront/internal/domain/coupon"
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// LineRequest is one requested order line.
type LineRequest struct {
	ProductID int64
	Quantity  int
}

// PlaceRequest holds the checkout input.
type PlaceRequest struct {
	UserID          int64
	Items           []LineRequest
	CouponCode      string
	PaymentMethod   PaymentMethod
	DeliveryAddress string
}

// Service encapsulates checkout business logic: product-level discount
// resolution, coupon application, and order persistence.
type Service struct {
	products  catalog.Repository
	discounts catalog.DiscountRepository
	coupons   *coupon.Validator
	orders    Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	products catalog.Repository,
	discounts catalog.DiscountRepository,
	coupons *coupon.Validator,
	orders Repository,
) *Service {
	return &Service{
		products:  products,
		discounts: discounts,
		coupons:   coupons,
		orders:    orders,
	}
}

// Place validates the requested lines, freezes each line at its
// resolved unit price, applies the coupon percentage to the
// discount-aware subtotal, and persists the order. The stored total is
// authoritative from this point on.
//
// COD orders start in StatusPending; online orders start in
// StatusPaymentPending until the payment collaborator reports back.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]int64, len(req.Items))
	for i, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		ids[i] = line.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[int64]catalog.Item, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	discounts, err := s.discounts.ListDiscounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get discounts")
	}
	table := catalog.NewTable(discounts)

	items := make([]Item, len(req.Items))
	subtotal := decimal.Zero
	for i, line := range req.Items {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}
		unit := catalog.ResolvePrice(p, table)
		items[i] = Item{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: unit,
			Quantity:  line.Quantity,
		}
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	couponDiscount := decimal.Zero
	couponName := ""
	if req.CouponCode != "" {
		rule, err := s.coupons.Validate(ctx, req.CouponCode)
		if err != nil {
			return nil, errors.Wrap(err, "validate coupon")
		}
		if rule != nil {
			couponName = rule.Name
			couponDiscount = rule.Discount(subtotal)
		}
	}

	total := subtotal.Sub(couponDiscount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	status := StatusPending
	if req.PaymentMethod == PaymentOnline {
		status = StatusPaymentPending
	}

	o := &Order{
		Reference:       uuid.New().String(),
		UserID:          req.UserID,
		Items:           items,
		Subtotal:        subtotal,
		CouponName:      couponName,
		CouponDiscount:  couponDiscount,
		Total:           total,
		Status:          status,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// Get returns a single order. Callers enforce ownership.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListForUser returns the user's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order for the admin back-office.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus transitions an order and appends to its timeline.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status, note string) error {
	return s.orders.UpdateStatus(ctx, id, status, note)
}
