package cart

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrValidation = errors.New("validation")
	// ErrNotFound is returned by a Storage when nothing is stored under the key.
	ErrNotFound  = errors.New("not found")
	ErrNoStorage = errors.New("cart: storage is required")
)

// Item is one distinct book held in the cart. UnitPrice is the price seen when
// the book was first added and is never refreshed.
type Item struct {
	ID        string  `json:"id"         yaml:"id"`
	Title     string  `json:"title"      yaml:"title"`
	Author    string  `json:"author"     yaml:"author"`
	UnitPrice float64 `json:"unit_price" yaml:"unit_price"`
	Quantity  int     `json:"quantity"   yaml:"quantity"`
	Image     string  `json:"image,omitempty" yaml:"image,omitempty"`
}

func (i Item) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Candidate is what a catalog page hands to AddItem.
type Candidate struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	UnitPrice float64 `json:"unit_price"`
	Image     string  `json:"image,omitempty"`
}

func (c Candidate) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("id must not be empty: %w", ErrValidation)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("title must not be empty: %w", ErrValidation)
	}
	if math.IsNaN(c.UnitPrice) || math.IsInf(c.UnitPrice, 0) {
		return fmt.Errorf("unit price must be a finite number: %w", ErrValidation)
	}
	if c.UnitPrice < 0 {
		return fmt.Errorf("unit price cannot be negative: %w", ErrValidation)
	}
	return nil
}

func (c Candidate) item() Item {
	return Item{
		ID:        c.ID,
		Title:     c.Title,
		Author:    c.Author,
		UnitPrice: c.UnitPrice,
		Quantity:  1,
		Image:     c.Image,
	}
}

// Snapshot is a consistent read-only view of the cart.
type Snapshot struct {
	Items      []Item  `json:"items"       yaml:"items"`
	TotalItems int     `json:"total_items" yaml:"total_items"`
	TotalPrice float64 `json:"total_price" yaml:"total_price"`
}

func TotalItems(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

func TotalPrice(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}
