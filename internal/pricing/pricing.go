package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/bookcart/internal/cart"
)

// Policy is the flat shipping rule: free strictly above Threshold, Fee otherwise.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: decimal.NewFromInt(50),
		ShippingFee:           decimal.RequireFromString("5.99"),
	}
}

// Summary is the order recap shown on the cart and checkout pages.
type Summary struct {
	Subtotal     decimal.Decimal `json:"subtotal"      yaml:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"      yaml:"shipping"`
	Total        decimal.Decimal `json:"total"         yaml:"total"`
	FreeShipping bool            `json:"free_shipping" yaml:"free_shipping"`
	// Remaining is how much more buys free shipping; zero once it applies.
	Remaining decimal.Decimal `json:"remaining" yaml:"remaining"`
}

func LineTotal(it cart.Item) decimal.Decimal {
	return decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
}

func Subtotal(items []cart.Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2)
}

func Summarize(items []cart.Item, p Policy) Summary {
	sub := Subtotal(items)
	s := Summary{
		Subtotal:  sub,
		Shipping:  p.ShippingFee.Round(2),
		Remaining: decimal.Zero,
	}
	if sub.GreaterThan(p.FreeShippingThreshold) {
		s.Shipping = decimal.Zero
		s.FreeShipping = true
	} else {
		s.Remaining = p.FreeShippingThreshold.Sub(sub).Round(2)
	}
	s.Total = s.Subtotal.Add(s.Shipping)
	return s
}
