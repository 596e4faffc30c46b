package pricehist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/stocky-to-coast/internal/normalize"
)

func writeHistoryCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "price_history.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeHistoryCSV(t, "SKU,LastCost\nABC,10.00\nDEF,2.50\n")

	hist, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, History{"ABC": 10.00, "DEF": 2.50}, hist)
}

func TestLoad_SkipsNonPositiveAndNonNumericCosts(t *testing.T) {
	path := writeHistoryCSV(t, "SKU,LastCost\nA,0\nB,-5.00\nC,n/a\nD,3.00\n")

	hist, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, History{"D": 3.00}, hist)
}

func TestLoad_MissingColumnsYieldsEmptyHistory(t *testing.T) {
	path := writeHistoryCSV(t, "SKU,Price\nA,10.00\n")

	hist, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_XLSXPriceBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricebook.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"SKU", "LastCost"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"ABC", 10.00}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"DEF", 0.0}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	hist, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, History{"ABC": 10.00}, hist)
}

func TestDetect_FlagsLargeDeviations(t *testing.T) {
	items := []normalize.Item{
		{SKU: "UP", Qty: 1, UnitCost: 13.00},     // +30%
		{SKU: "DOWN", Qty: 1, UnitCost: 7.00},    // -30%
		{SKU: "STABLE", Qty: 1, UnitCost: 10.50}, // +5%
		{SKU: "NEW", Qty: 1, UnitCost: 4.00},     // no history
	}
	hist := History{"UP": 10.00, "DOWN": 10.00, "STABLE": 10.00}

	flags := Detect(items, hist, DefaultThreshold)
	require.Len(t, flags, 2)

	assert.Equal(t, "UP", flags[0].SKU)
	assert.Equal(t, 10.00, flags[0].LastCost)
	assert.Equal(t, 13.00, flags[0].UnitCost)
	assert.InDelta(t, 0.30, flags[0].PctChange, 1e-9)

	assert.Equal(t, "DOWN", flags[1].SKU)
	assert.InDelta(t, -0.30, flags[1].PctChange, 1e-9)
}

func TestDetect_ThresholdIsExclusive(t *testing.T) {
	items := []normalize.Item{{SKU: "A", UnitCost: 12.00}}
	hist := History{"A": 10.00}

	// Exactly 20% is not flagged; the rule is strictly greater than.
	assert.Empty(t, Detect(items, hist, DefaultThreshold))
}

func TestDetect_EmptyHistoryFlagsNothing(t *testing.T) {
	items := []normalize.Item{{SKU: "A", UnitCost: 100.00}}
	assert.Empty(t, Detect(items, History{}, DefaultThreshold))
}
