package cart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_EmptyIsArray(t *testing.T) {
	t.Parallel()

	for _, items := range [][]Item{nil, {}} {
		blob, err := Encode(items)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(blob))
	}
}

func TestEncode_Layout(t *testing.T) {
	t.Parallel()

	blob, err := Encode([]Item{
		{ID: "b1", Title: "Dune", Author: "Herbert", UnitPrice: 12.5, Quantity: 2, Image: "dune.png"},
		{ID: "b2", Title: "Emma", Author: "Austen", UnitPrice: 4, Quantity: 1},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"b1","title":"Dune","author":"Herbert","unit_price":12.5,"quantity":2,"image":"dune.png"},
		{"id":"b2","title":"Emma","author":"Austen","unit_price":4,"quantity":1}
	]`, string(blob))
}

func TestDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	in := []Item{
		{ID: "b2", Title: "Emma", Author: "", UnitPrice: 0, Quantity: 3},
		{ID: "b1", Title: "Dune", Author: "Herbert", UnitPrice: 12.99, Quantity: 1, Image: "https://cdn/dune.png"},
	}
	blob, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(blob)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestDecode_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		blob string
	}{
		{name: "null", blob: `null`},
		{name: "number", blob: `42`},
		{name: "missing id", blob: `[{"title":"X","author":"Y","unit_price":1,"quantity":1}]`},
		{name: "missing title", blob: `[{"id":"b1","author":"Y","unit_price":1,"quantity":1}]`},
		{name: "missing author", blob: `[{"id":"b1","title":"X","unit_price":1,"quantity":1}]`},
		{name: "missing price", blob: `[{"id":"b1","title":"X","author":"Y","quantity":1}]`},
		{name: "blank id", blob: `[{"id":" ","title":"X","author":"Y","unit_price":1,"quantity":1}]`},
		{name: "string price", blob: `[{"id":"b1","title":"X","author":"Y","unit_price":"1","quantity":1}]`},
		{name: "negative quantity", blob: `[{"id":"b1","title":"X","author":"Y","unit_price":1,"quantity":-3}]`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items, err := Decode([]byte(tt.blob))
			if tt.name == "null" {
				// a JSON null decodes to no lines, which is a valid empty cart
				require.NoError(t, err)
				assert.Empty(t, items)
				return
			}
			require.ErrorIs(t, err, ErrMalformedState)
			assert.Nil(t, items)
		})
	}
}

func TestDecode_NullImageIsAbsent(t *testing.T) {
	t.Parallel()

	items, err := Decode([]byte(`[{"id":"b1","title":"X","author":"Y","unit_price":1,"quantity":1,"image":null}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "", items[0].Image)
}

func TestTotals(t *testing.T) {
	t.Parallel()

	items := []Item{
		{ID: "a", UnitPrice: 10, Quantity: 2},
		{ID: "b", UnitPrice: 2.5, Quantity: 4},
	}
	assert.Equal(t, 6, TotalItems(items))
	assert.Equal(t, 30.0, TotalPrice(items))
	assert.Equal(t, 0, TotalItems(nil))
	assert.Equal(t, 0.0, TotalPrice(nil))
	assert.Equal(t, 20.0, items[0].LineTotal())
}
