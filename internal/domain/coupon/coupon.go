package coupon

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidCoupon is returned when a coupon code does not match any
// known rule.
var ErrInvalidCoupon = errors.New("invalid coupon code")

var hundred = decimal.NewFromInt(100)

// Rule is an order-level percentage coupon. Offer is the percentage
// taken off the discount-aware subtotal at checkout.
type Rule struct {
	ID    int64
	Name  string
	Offer int
}

// Repository provides coupon rule lookups.
type Repository interface {
	List(ctx context.Context) ([]Rule, error)
	FindByName(ctx context.Context, name string) (*Rule, error)
}

// Discount computes the amount a rule takes off the given subtotal,
// rounded to the nearest integer.
func (r Rule) Discount(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(int64(r.Offer))).Div(hundred).Round(0)
}

// Validator resolves a coupon code to a rule. Codes match rule names
// case-insensitively.
type Validator struct {
	repo Repository
}

// NewValidator creates a Validator backed by the given Repository.
func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo}
}

// Validate looks up the rule for a code. A blank code is not an error;
// it resolves to no rule (nil, nil).
func (v *Validator) Validate(ctx context.Context, code string) (*Rule, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	rule, err := v.repo.FindByName(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			return nil, ErrInvalidCoupon
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}
	return rule, nil
}
