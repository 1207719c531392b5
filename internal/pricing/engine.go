package pricing

import "github.com/noah-isme/backend-tour/internal/money"

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice money.Cents
}

// Breakdown aggregates computed pricing components. It is derived state and
// never persisted on its own.
type Breakdown struct {
	Subtotal money.Cents `json:"subtotalCents"`
	Discount money.Cents `json:"discountCents"`
	Tax      money.Cents `json:"taxCents"`
	Tip      money.Cents `json:"tipCents"`
	Total    money.Cents `json:"totalCents"`
}

// Compute calculates booking totals given the provided inputs. Tax is always
// computed on the post-discount, pre-tip amount. The function is pure: the
// server recomputes authoritatively and never trusts a client-submitted
// total.
func Compute(items []Item, discount money.Cents, taxRate money.Rate, tip money.Cents) Breakdown {
	var subtotal money.Cents
	for _, it := range items {
		if it.Qty <= 0 || it.UnitPrice < 0 {
			continue
		}
		subtotal += money.Cents(it.Qty) * it.UnitPrice
	}
	discount = money.Clamp(discount, 0, subtotal)
	afterDiscount := money.NonNegative(subtotal - discount)
	tax := taxRate.Apply(afterDiscount)
	if tip < 0 {
		tip = 0
	}
	total := money.NonNegative(afterDiscount + tax + tip)
	return Breakdown{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Tip:      tip,
		Total:    total,
	}
}
