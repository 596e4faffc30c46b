// =============================================================================
// Stocky to Coast - Stocky Export Reader
// =============================================================================
//
// This module reads the raw purchase-order export produced by Stocky. The
// export is a plain CSV with a single header row; column names vary between
// Stocky versions, so no interpretation happens here — header resolution and
// type coercion live in mapper.go.
//
// Blank fields are kept as empty strings. Nothing is auto-typed at this
// stage: the SKU column in particular must reach the mapper byte-for-byte.
//
// =============================================================================

package stocky

import (
	"encoding/csv"
	"fmt"
	"os"
)

// File is one parsed Stocky export: the header row plus every data record,
// in file order.
type File struct {
	// Path is the location the export was read from.
	Path string

	// Headers contains the raw column names from the header row.
	Headers []string

	// Records contains the data rows, excluding the header. Record i
	// corresponds to row id i in lineage terms.
	Records [][]string
}

// Read parses the CSV export at path. Every record must have the same number
// of fields as the header row; ragged files are rejected by the csv reader.
func Read(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse input CSV %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("input file %s is empty", path)
	}

	return &File{
		Path:    path,
		Headers: all[0],
		Records: all[1:],
	}, nil
}
