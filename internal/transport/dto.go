package transport

import (
	"github.com/Skotchmaster/bookcart/internal/cart"
	"github.com/Skotchmaster/bookcart/internal/pricing"
)

type CartResponse struct {
	Items      []cart.Item     `json:"items"       yaml:"items"`
	TotalItems int             `json:"total_items" yaml:"total_items"`
	TotalPrice float64         `json:"total_price" yaml:"total_price"`
	Summary    pricing.Summary `json:"summary"     yaml:"summary"`
}

func NewCartResponse(s cart.Snapshot, p pricing.Policy) CartResponse {
	items := s.Items
	if items == nil {
		items = []cart.Item{}
	}
	return CartResponse{
		Items:      items,
		TotalItems: s.TotalItems,
		TotalPrice: s.TotalPrice,
		Summary:    pricing.Summarize(items, p),
	}
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}
