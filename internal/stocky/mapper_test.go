package stocky

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "po.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead_HeaderAndRecords(t *testing.T) {
	path := writeCSV(t, "SKU,Qty Ordered,Cost (base),Total Cost (base)\nABC123,10,12.50,125.00\n")

	f, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU", "Qty Ordered", "Cost (base)", "Total Cost (base)"}, f.Headers)
	require.Len(t, f.Records, 1)
	assert.Equal(t, "ABC123", f.Records[0][0])
}

func TestRead_BlankFieldStaysEmpty(t *testing.T) {
	path := writeCSV(t, "SKU,Qty Ordered,Cost (base),Total Cost (base)\n,1,1.00,1.00\n")

	f, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "", f.Records[0][0])
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestMapColumns_CanonicalHeaders(t *testing.T) {
	f := &File{
		Headers: []string{"SKU", "Qty Ordered", "Cost (base)", "Total Cost (base)"},
		Records: [][]string{{"ABC", "10", "12.50", "125.00"}},
	}

	rows, err := MapColumns(f)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{SKU: "ABC", Qty: 10, UnitCost: 12.50, TotalCost: 125.00}, rows[0])
}

func TestMapColumns_AliasResolutionCaseInsensitive(t *testing.T) {
	// Aliased and oddly cased headers must still resolve, and extra
	// columns are ignored by the mapper.
	f := &File{
		Headers: []string{"Supplier", "itemid", "QTY", "unit cost", "total"},
		Records: [][]string{{"Acme", "ABC", "3", "5.00", "15.00"}},
	}

	rows, err := MapColumns(f)
	require.NoError(t, err)
	assert.Equal(t, "ABC", rows[0].SKU)
	assert.Equal(t, 3, rows[0].Qty)
	assert.Equal(t, 5.00, rows[0].UnitCost)
	assert.Equal(t, 15.00, rows[0].TotalCost)
}

func TestMapColumns_AliasPriorityOrder(t *testing.T) {
	// "Cost (base)" outranks "Cost" in the alias list even when both are
	// present.
	f := &File{
		Headers: []string{"SKU", "Qty", "Cost", "Cost (base)", "Total"},
		Records: [][]string{{"ABC", "1", "99.99", "5.00", "5.00"}},
	}

	rows, err := MapColumns(f)
	require.NoError(t, err)
	assert.Equal(t, 5.00, rows[0].UnitCost)
}

func TestMapColumns_MissingColumn(t *testing.T) {
	f := &File{
		Headers: []string{"Qty Ordered", "Cost (base)", "Total Cost (base)"},
		Records: [][]string{{"1", "1.00", "1.00"}},
	}

	_, err := MapColumns(f)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, FieldSKU, missing.Canonical)
}

func TestMapColumns_TypeCoercionError(t *testing.T) {
	f := &File{
		Headers: []string{"SKU", "Qty Ordered", "Cost (base)", "Total Cost (base)"},
		Records: [][]string{
			{"A", "1", "1.00", "1.00"},
			{"B", "two", "1.00", "1.00"},
		},
	}

	_, err := MapColumns(f)
	var coerce *TypeCoercionError
	require.ErrorAs(t, err, &coerce)
	assert.Equal(t, FieldQty, coerce.Column)
	assert.Equal(t, 1, coerce.Row)
	assert.Equal(t, "two", coerce.Value)
}

func TestMapColumns_FractionalQtyTruncates(t *testing.T) {
	f := &File{
		Headers: []string{"SKU", "Qty Ordered", "Cost (base)", "Total Cost (base)"},
		Records: [][]string{{"A", "3.5", "1.00", "3.50"}},
	}

	rows, err := MapColumns(f)
	require.NoError(t, err)
	assert.Equal(t, 3, rows[0].Qty)
}

func TestMapColumns_PreservesSKUSymbols(t *testing.T) {
	f := &File{
		Headers: []string{"SKU", "Qty Ordered", "Cost (base)", "Total Cost (base)"},
		Records: [][]string{{"GSP38WB+", "1", "16.80", "16.80"}},
	}

	rows, err := MapColumns(f)
	require.NoError(t, err)
	assert.Equal(t, "GSP38WB+", rows[0].SKU)
}

func TestCleanSKU(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"zero width space", "AB\u200bC", "ABC"},
		{"zero width joiner and bom", "\ufeffAB\u200dC\u200c", "ABC"},
		{"surrounding whitespace", "  AB-12.C  ", "AB-12.C"},
		{"symbols preserved", "GSP38WB+", "GSP38WB+"},
		{"interior space preserved", "AB C", "AB C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanSKU(tt.in))
		})
	}
}
