// =============================================================================
// Stocky to Coast - Normalizer / Deduplicator
// =============================================================================
//
// Collapses duplicate SKUs in the validated row set. Quantities are summed;
// the unit cost comes from the first occurrence in file order (the importer
// assumes unit cost is constant per SKU within one purchase order); the
// total is recomputed as qty*cost. Both cost fields are rounded to cents.
//
// Output groups are ordered by SKU ascending. Lineage — which input row ids
// fed each surviving SKU — is captured here, before the rows collapse.
//
// =============================================================================

package normalize

import (
	"math"
	"sort"

	"github.com/ginjaninja78/stocky-to-coast/internal/stocky"
)

// Item is one normalized row: a distinct SKU with aggregated quantity.
type Item struct {
	SKU       string
	Qty       int
	UnitCost  float64
	TotalCost float64
}

// Lineage maps a surviving SKU to the original input row ids that
// contributed to it (post-validation, pre-dedupe).
type Lineage struct {
	SKU    string `json:"sku"`
	RowIDs []int  `json:"row_ids"`
}

// Dedupe groups rows by exact SKU string equality. ids holds the original
// row id of each row, parallel to rows; both slices must be in file order.
func Dedupe(rows []stocky.Row, ids []int) ([]Item, []Lineage) {
	type group struct {
		item   Item
		rowIDs []int
	}
	groups := make(map[string]*group, len(rows))
	var order []string

	for i, r := range rows {
		g, ok := groups[r.SKU]
		if !ok {
			g = &group{item: Item{SKU: r.SKU, UnitCost: r.UnitCost}}
			groups[r.SKU] = g
			order = append(order, r.SKU)
		}
		g.item.Qty += r.Qty
		g.rowIDs = append(g.rowIDs, ids[i])
	}

	sort.Strings(order)

	items := make([]Item, 0, len(order))
	lineage := make([]Lineage, 0, len(order))
	for _, sku := range order {
		g := groups[sku]
		// Total is recomputed from the unrounded cost, then both are
		// rounded to cents.
		g.item.TotalCost = Round2(float64(g.item.Qty) * g.item.UnitCost)
		g.item.UnitCost = Round2(g.item.UnitCost)
		items = append(items, g.item)
		lineage = append(lineage, Lineage{SKU: sku, RowIDs: g.rowIDs})
	}
	return items, lineage
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
