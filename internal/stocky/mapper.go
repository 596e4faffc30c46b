// =============================================================================
// Stocky to Coast - Column Mapper
// =============================================================================
//
// Resolves the vendor-specific column names of a Stocky export to the four
// canonical input fields and coerces every value to its canonical type.
//
// RESOLUTION:
//   For each canonical field the fixed alias list is scanned in order; the
//   first alias matching a header (exact match preferred, then
//   case-insensitive) wins. A field with no matching header fails the run
//   with MissingColumnError.
//
// SKU HANDLING:
//   SKUs are opaque identifiers, not sanitized text. Zero-width characters
//   and surrounding whitespace are stripped; every other character,
//   including '+', '-' and '.', is preserved verbatim.
//
// =============================================================================

package stocky

import (
	"math"
	"strconv"
	"strings"
)

// Canonical input field names after alias resolution.
const (
	FieldSKU   = "SKU"
	FieldQty   = "Qty Ordered"
	FieldCost  = "Cost (base)"
	FieldTotal = "Total Cost (base)"
)

// CanonicalFields lists the canonical input columns in schema order.
var CanonicalFields = []string{FieldSKU, FieldQty, FieldCost, FieldTotal}

// aliasTable maps each canonical field to its known Stocky header aliases,
// in priority order. Matching is case-insensitive.
var aliasTable = map[string][]string{
	FieldSKU:   {"SKU", "Sku", "Item Id", "ItemID"},
	FieldQty:   {"Qty Ordered", "Quantity Ordered", "Qty"},
	FieldCost:  {"Cost (base)", "Unit Cost (base)", "Unit Cost", "Cost"},
	FieldTotal: {"Total Cost (base)", "Extended Price", "Total"},
}

// Row is one canonical input row after alias resolution and type coercion.
type Row struct {
	SKU       string
	Qty       int
	UnitCost  float64
	TotalCost float64
}

// MapColumns reduces a raw export to canonical rows. The returned slice
// preserves file order; index i is the lineage row id of record i.
func MapColumns(f *File) ([]Row, error) {
	indexes := make(map[string]int, len(CanonicalFields))
	for _, canonical := range CanonicalFields {
		idx, ok := resolveColumn(f.Headers, aliasTable[canonical])
		if !ok {
			return nil, &MissingColumnError{Canonical: canonical}
		}
		indexes[canonical] = idx
	}

	rows := make([]Row, 0, len(f.Records))
	for i, rec := range f.Records {
		qty, err := coerceQty(rec[indexes[FieldQty]])
		if err != nil {
			return nil, &TypeCoercionError{Column: FieldQty, Row: i, Value: rec[indexes[FieldQty]]}
		}
		cost, err := strconv.ParseFloat(strings.TrimSpace(rec[indexes[FieldCost]]), 64)
		if err != nil {
			return nil, &TypeCoercionError{Column: FieldCost, Row: i, Value: rec[indexes[FieldCost]]}
		}
		total, err := strconv.ParseFloat(strings.TrimSpace(rec[indexes[FieldTotal]]), 64)
		if err != nil {
			return nil, &TypeCoercionError{Column: FieldTotal, Row: i, Value: rec[indexes[FieldTotal]]}
		}
		rows = append(rows, Row{
			SKU:       CleanSKU(rec[indexes[FieldSKU]]),
			Qty:       qty,
			UnitCost:  cost,
			TotalCost: total,
		})
	}
	return rows, nil
}

// resolveColumn returns the index of the first header matching any alias.
// Exact matches are preferred over case-insensitive ones within each alias.
func resolveColumn(headers []string, aliases []string) (int, bool) {
	for _, alias := range aliases {
		for i, h := range headers {
			if h == alias {
				return i, true
			}
		}
		for i, h := range headers {
			if strings.EqualFold(h, alias) {
				return i, true
			}
		}
	}
	return 0, false
}

// coerceQty parses a quantity. Integer text is taken as-is; other numeric
// text is truncated toward zero, matching the historical importer behaviour.
// Non-numeric text is an error.
func coerceQty(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(math.Trunc(f)), nil
}

// CleanSKU strips zero-width characters and surrounding whitespace. All
// other characters are preserved verbatim.
func CleanSKU(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff':
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
