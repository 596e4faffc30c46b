// =============================================================================
// Stocky to Coast - Price History & Variance Detection
// =============================================================================
//
// Optional stage: compares the normalized unit cost of each SKU against a
// historical reference and flags deviations above 20%. Purely informational;
// flags feed the run summary and never reject or alter rows.
//
// The reference is a file with SKU and LastCost columns, either CSV or an
// XLSX price book (first sheet, same headers). Entries with a non-positive
// or non-numeric LastCost are ignored, as are SKUs without history.
//
// =============================================================================

package pricehist

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/stocky-to-coast/internal/normalize"
)

// DefaultThreshold is the relative change above which a SKU is flagged.
const DefaultThreshold = 0.20

// History maps SKU to its last known unit cost. Only positive costs are
// kept.
type History map[string]float64

// Flag marks one SKU whose unit cost deviates from history beyond the
// threshold.
type Flag struct {
	SKU       string  `json:"sku"`
	LastCost  float64 `json:"last_cost"`
	UnitCost  float64 `json:"unit_cost"`
	PctChange float64 `json:"pct_change"`
}

// Load reads a price history file. The format is chosen by extension:
// .xlsx is read as a price book via excelize, anything else as CSV. A file
// without both SKU and LastCost columns yields an empty history, not an
// error.
func Load(path string) (History, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadXLSX(path)
	}
	return loadCSV(path)
}

func loadCSV(path string) (History, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse price history %s: %w", path, err)
	}
	return fromRecords(records), nil
}

func loadXLSX(path string) (History, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return History{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read price book %s: %w", path, err)
	}
	return fromRecords(rows), nil
}

// fromRecords extracts the SKU and LastCost columns from a header row plus
// data records. Header matching is case-insensitive.
func fromRecords(records [][]string) History {
	if len(records) == 0 {
		return History{}
	}
	skuIdx, costIdx := -1, -1
	for i, h := range records[0] {
		switch {
		case strings.EqualFold(strings.TrimSpace(h), "SKU"):
			if skuIdx < 0 {
				skuIdx = i
			}
		case strings.EqualFold(strings.TrimSpace(h), "LastCost"):
			if costIdx < 0 {
				costIdx = i
			}
		}
	}
	if skuIdx < 0 || costIdx < 0 {
		return History{}
	}

	hist := make(History)
	for _, rec := range records[1:] {
		if skuIdx >= len(rec) || costIdx >= len(rec) {
			continue
		}
		cost, err := strconv.ParseFloat(strings.TrimSpace(rec[costIdx]), 64)
		if err != nil || cost <= 0 {
			continue
		}
		hist[strings.TrimSpace(rec[skuIdx])] = cost
	}
	return hist
}

// Detect left-joins normalized items to history and flags every SKU whose
// unit cost moved more than threshold relative to its last cost. Items
// without history produce no flag.
func Detect(items []normalize.Item, hist History, threshold float64) []Flag {
	var flags []Flag
	for _, it := range items {
		last, ok := hist[it.SKU]
		if !ok {
			continue
		}
		pct := (it.UnitCost - last) / last
		if math.Abs(pct) > threshold {
			flags = append(flags, Flag{
				SKU:       it.SKU,
				LastCost:  last,
				UnitCost:  it.UnitCost,
				PctChange: pct,
			})
		}
	}
	return flags
}
