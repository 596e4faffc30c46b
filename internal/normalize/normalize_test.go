package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/stocky-to-coast/internal/stocky"
)

func ids(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestDedupe_CollapsesDuplicateSKUs(t *testing.T) {
	rows := []stocky.Row{
		{SKU: "DEF456", Qty: 10, UnitCost: 2.00, TotalCost: 20.00},
		{SKU: "ABC123", Qty: 5, UnitCost: 4.00, TotalCost: 20.00},
		{SKU: "DEF456", Qty: 3, UnitCost: 2.00, TotalCost: 6.00},
	}

	items, lineage := Dedupe(rows, ids(3))
	require.Len(t, items, 2)

	// Output is ordered by SKU ascending.
	assert.Equal(t, "ABC123", items[0].SKU)
	assert.Equal(t, "DEF456", items[1].SKU)

	assert.Equal(t, 13, items[1].Qty)
	assert.Equal(t, 2.00, items[1].UnitCost)
	assert.Equal(t, 26.00, items[1].TotalCost)

	require.Len(t, lineage, 2)
	assert.Equal(t, Lineage{SKU: "ABC123", RowIDs: []int{1}}, lineage[0])
	assert.Equal(t, Lineage{SKU: "DEF456", RowIDs: []int{0, 2}}, lineage[1])
}

func TestDedupe_FirstCostWins(t *testing.T) {
	// Unit cost is assumed constant per SKU within a purchase order; when
	// it is not, the first occurrence in file order wins.
	rows := []stocky.Row{
		{SKU: "X", Qty: 1, UnitCost: 10.00, TotalCost: 10.00},
		{SKU: "X", Qty: 1, UnitCost: 99.00, TotalCost: 99.00},
	}

	items, _ := Dedupe(rows, ids(2))
	require.Len(t, items, 1)
	assert.Equal(t, 10.00, items[0].UnitCost)
	assert.Equal(t, 20.00, items[0].TotalCost)
}

func TestDedupe_PreservesTotalQuantity(t *testing.T) {
	rows := []stocky.Row{
		{SKU: "A", Qty: 7, UnitCost: 1, TotalCost: 7},
		{SKU: "B", Qty: 2, UnitCost: 1, TotalCost: 2},
		{SKU: "A", Qty: 4, UnitCost: 1, TotalCost: 4},
		{SKU: "C", Qty: 9, UnitCost: 1, TotalCost: 9},
	}

	items, _ := Dedupe(rows, ids(4))
	in, out := 0, 0
	for _, r := range rows {
		in += r.Qty
	}
	for _, it := range items {
		out += it.Qty
	}
	assert.Equal(t, in, out)
}

func TestDedupe_CaseSensitiveSKUs(t *testing.T) {
	rows := []stocky.Row{
		{SKU: "abc", Qty: 1, UnitCost: 1, TotalCost: 1},
		{SKU: "ABC", Qty: 1, UnitCost: 1, TotalCost: 1},
	}

	items, _ := Dedupe(rows, ids(2))
	assert.Len(t, items, 2)
}

func TestDedupe_RoundsToCents(t *testing.T) {
	rows := []stocky.Row{
		{SKU: "A", Qty: 3, UnitCost: 3.333, TotalCost: 10.00},
	}

	items, _ := Dedupe(rows, ids(1))
	assert.Equal(t, 10.0, items[0].TotalCost)
	assert.Equal(t, 3.33, items[0].UnitCost)
}

func TestDedupe_LineageUsesOriginalRowIDs(t *testing.T) {
	// The surviving rows of a soft-validate run keep their pre-quarantine
	// row ids.
	rows := []stocky.Row{
		{SKU: "A", Qty: 1, UnitCost: 1, TotalCost: 1},
		{SKU: "B", Qty: 1, UnitCost: 1, TotalCost: 1},
	}

	_, lineage := Dedupe(rows, []int{0, 4})
	assert.Equal(t, []int{0}, lineage[0].RowIDs)
	assert.Equal(t, []int{4}, lineage[1].RowIDs)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 16.8, Round2(16.80))
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.236))
	assert.Equal(t, 2.0, Round2(1.999))
	// Half rounds away from zero.
	assert.Equal(t, 0.03, Round2(0.025))
	assert.Equal(t, -0.03, Round2(-0.025))
}
