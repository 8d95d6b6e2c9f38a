package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrMalformedState = errors.New("malformed persisted cart")

// record mirrors Item with pointers so that a missing field can be told apart
// from a zero value.
type record struct {
	ID        *string  `json:"id"`
	Title     *string  `json:"title"`
	Author    *string  `json:"author"`
	UnitPrice *float64 `json:"unit_price"`
	Quantity  *int     `json:"quantity"`
	Image     *string  `json:"image"`
}

// Encode serializes items in the persisted layout: a JSON array of line records.
func Encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

// Decode parses a persisted cart. One bad line rejects the whole record so a
// partially written cart never comes back half-populated.
func Decode(blob []byte) ([]Item, error) {
	var recs []record
	if err := json.Unmarshal(blob, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}

	items := make([]Item, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for i, r := range recs {
		it, err := r.item()
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedState, i, err)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate id %q", ErrMalformedState, i, it.ID)
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	}
	return items, nil
}

func (r record) item() (Item, error) {
	switch {
	case r.ID == nil:
		return Item{}, errors.New("missing id")
	case r.Title == nil:
		return Item{}, errors.New("missing title")
	case r.Author == nil:
		return Item{}, errors.New("missing author")
	case r.UnitPrice == nil:
		return Item{}, errors.New("missing unit_price")
	case r.Quantity == nil:
		return Item{}, errors.New("missing quantity")
	}

	if strings.TrimSpace(*r.ID) == "" || strings.TrimSpace(*r.Title) == "" {
		return Item{}, errors.New("empty id or title")
	}
	if p := *r.UnitPrice; p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return Item{}, fmt.Errorf("invalid unit_price %v", p)
	}
	if *r.Quantity < 1 {
		return Item{}, fmt.Errorf("invalid quantity %d", *r.Quantity)
	}

	it := Item{
		ID:        *r.ID,
		Title:     *r.Title,
		Author:    *r.Author,
		UnitPrice: *r.UnitPrice,
		Quantity:  *r.Quantity,
	}
	if r.Image != nil {
		it.Image = *r.Image
	}
	return it, nil
}
