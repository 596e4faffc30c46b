// =============================================================================
// Stocky to Coast - Cart Output Writer
// =============================================================================
//
// Projects normalized rows into the four-column cart schema and serializes
// them to CSV the way the downstream vendor ordering system expects:
// configured column order, delimiter, quoting mode and fixed-width decimal
// rendering (decimal_places=3 turns 16.8 into the literal "16.800").
//
// encoding/csv is deliberately not used for output: it only implements
// minimal quoting, while the vendor contract also needs all / nonnumeric /
// none.
//
// =============================================================================

package coast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/stocky-to-coast/internal/normalize"
)

// Output column names of the fixed cart schema.
const (
	ColItemID   = "Item Id"
	ColQty      = "Qty Ordered"
	ColUnit     = "Unit Price"
	ColExtended = "Extended Price"
)

// OutputColumns lists the cart schema columns in canonical order. Vendor
// configs may permute this set but never change it.
var OutputColumns = []string{ColItemID, ColQty, ColUnit, ColExtended}

// Quoting selects the CSV quoting mode for serialized output.
type Quoting int

const (
	// QuoteAll quotes every field, headers included.
	QuoteAll Quoting = iota
	// QuoteMinimal quotes only fields containing the delimiter, a quote
	// or a line break.
	QuoteMinimal
	// QuoteNonNumeric quotes non-numeric fields only.
	QuoteNonNumeric
	// QuoteNone never quotes; fields that would require quoting are an
	// error.
	QuoteNone
)

// ParseQuoting maps a vendor config quoting name to its mode.
func ParseQuoting(s string) (Quoting, error) {
	switch s {
	case "all":
		return QuoteAll, nil
	case "minimal":
		return QuoteMinimal, nil
	case "nonnumeric":
		return QuoteNonNumeric, nil
	case "none":
		return QuoteNone, nil
	}
	return 0, fmt.Errorf("unknown quoting mode %q (want all, minimal, nonnumeric or none)", s)
}

// Row is one cart output row.
type Row struct {
	ItemID        string
	Qty           int
	UnitPrice     float64
	ExtendedPrice float64
}

// Project reshapes normalized items into the cart schema. Unit price is the
// normalized cost; extended price is recomputed from it and rounded to
// cents.
func Project(items []normalize.Item) []Row {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{
			ItemID:        it.SKU,
			Qty:           it.Qty,
			UnitPrice:     normalize.Round2(it.UnitCost),
			ExtendedPrice: normalize.Round2(float64(it.Qty) * it.UnitCost),
		})
	}
	return rows
}

// cell is a single serialized field plus its numericness, which drives the
// nonnumeric quoting mode.
type cell struct {
	text    string
	numeric bool
}

// Serialize renders rows as CSV bytes using the vendor's column order,
// delimiter, decimal precision and quoting mode. columns must be a
// permutation of OutputColumns (the config layer guarantees this). Lines end
// with "\n".
func Serialize(rows []Row, columns []string, delimiter string, decimalPlaces int, quoting Quoting) ([]byte, error) {
	var b strings.Builder

	header := make([]cell, len(columns))
	for i, c := range columns {
		header[i] = cell{text: c}
	}
	if err := writeRecord(&b, header, delimiter, quoting); err != nil {
		return nil, err
	}

	for _, r := range rows {
		rec := make([]cell, len(columns))
		for i, c := range columns {
			switch c {
			case ColItemID:
				rec[i] = cell{text: r.ItemID}
			case ColQty:
				rec[i] = cell{text: strconv.Itoa(r.Qty), numeric: true}
			case ColUnit:
				rec[i] = cell{text: formatDecimal(r.UnitPrice, decimalPlaces), numeric: true}
			case ColExtended:
				rec[i] = cell{text: formatDecimal(r.ExtendedPrice, decimalPlaces), numeric: true}
			default:
				return nil, fmt.Errorf("unknown output column %q", c)
			}
		}
		if err := writeRecord(&b, rec, delimiter, quoting); err != nil {
			return nil, err
		}
	}
	return []byte(b.String()), nil
}

// formatDecimal renders v with a fixed number of decimal places, trailing
// zeros included.
func formatDecimal(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

func writeRecord(b *strings.Builder, cells []cell, delimiter string, quoting Quoting) error {
	for i, c := range cells {
		if i > 0 {
			b.WriteString(delimiter)
		}
		quote := false
		switch quoting {
		case QuoteAll:
			quote = true
		case QuoteMinimal:
			quote = needsQuoting(c.text, delimiter)
		case QuoteNonNumeric:
			quote = !c.numeric
		case QuoteNone:
			if needsQuoting(c.text, delimiter) {
				return fmt.Errorf("quoting mode none cannot represent field %q", c.text)
			}
		}
		if quote {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(c.text, `"`, `""`))
			b.WriteByte('"')
		} else {
			b.WriteString(c.text)
		}
	}
	b.WriteByte('\n')
	return nil
}

func needsQuoting(text, delimiter string) bool {
	return strings.Contains(text, delimiter) || strings.ContainsAny(text, "\"\r\n")
}
