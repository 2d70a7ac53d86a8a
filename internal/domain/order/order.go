package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order. Online orders enter at
// StatusPaymentPending; cash-on-delivery orders enter at StatusPending.
type Status string

const (
	StatusPending        Status = "Pending"
	StatusPaymentPending Status = "Payment Pending"
	StatusProcessing     Status = "Processing"
	StatusShipped        Status = "Shipped"
	StatusDelivered      Status = "Delivered"
	StatusCancelled      Status = "Cancelled"
)

// ParseStatus validates a wire status value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusPaymentPending, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	default:
		return "", errors.Errorf("unknown order status %q", s)
	}
}

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems      = errors.New("items required")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrNotFound        = errors.New("order not found")
)

// Item is one order line, priced at the resolved (discounted) unit
// price frozen at checkout time.
type Item struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// StatusChange is one entry in an order's status timeline.
type StatusChange struct {
	Status    Status
	Note      string
	CreatedAt time.Time
}

// Order is a placed customer order with its authoritative totals.
// Total is final at creation time; the backend never re-derives it.
type Order struct {
	ID              int64
	Reference       string
	UserID          int64
	Items           []Item
	Subtotal        decimal.Decimal
	CouponName      string
	CouponDiscount  decimal.Decimal
	Total           decimal.Decimal
	Status          Status
	PaymentMethod   PaymentMethod
	DeliveryAddress string
	CreatedAt       time.Time
	History         []StatusChange
}

// Repository defines order persistence.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status, note string) error
}
