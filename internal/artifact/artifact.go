// =============================================================================
// Stocky to Coast - Run Artifact Writer
// =============================================================================
//
// Everything a run leaves behind lives here: the content-addressed output
// CSV, the optional quarantine CSV, the lineage mapping, and the JSON and
// Markdown summaries. All artifacts target a run-scoped directory keyed by
// PO number; the directory is created on demand.
//
// The output file name embeds an 8-character digest of the vendor name and
// the serialized CSV bytes, so retrying a run with identical input and
// config produces an identically named artifact even when the timestamp
// component differs. The digest is md5-based and only needs to separate
// distinct outputs within one run window, not resist attack.
//
// =============================================================================

package artifact

import (
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ginjaninja78/stocky-to-coast/internal/normalize"
	"github.com/ginjaninja78/stocky-to-coast/internal/pricehist"
	"github.com/ginjaninja78/stocky-to-coast/internal/stocky"
)

// File names of the fixed (non-timestamped) artifacts.
const (
	QuarantineFile  = "quarantine.csv"
	LineageFile     = "lineage.json"
	SummaryJSONFile = "summary.json"
	SummaryMDFile   = "summary.md"
	LogFile         = "stocky2coast.log"
)

// Summary is the machine-readable run record. Written once, never mutated.
type Summary struct {
	RunID              string           `json:"run_id"`
	PO                 string           `json:"po"`
	Vendor             string           `json:"vendor"`
	Mode               string           `json:"mode"`
	SKUPattern         *string          `json:"sku_pattern"`
	InputFile          string           `json:"input_file"`
	OutputFile         string           `json:"output_file"`
	RowsIn             int              `json:"rows_in"`
	RowsValidated      int              `json:"rows_validated"`
	RowsQuarantined    int              `json:"rows_quarantined"`
	RowsOut            int              `json:"rows_out"`
	TotalQty           int              `json:"total_qty"`
	TotalExtendedPrice float64          `json:"total_extended_price"`
	VarianceFlags      []pricehist.Flag `json:"variance_flags"`
	Status             string           `json:"status"`
}

// JSON renders the summary with two-space indentation, the same bytes that
// go to summary.json and to stdout.
func (s *Summary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Writer owns one run directory.
type Writer struct {
	// Dir is the run-scoped artifact directory, <outdir>/<po>.
	Dir string
}

// NewWriter creates (if needed) the run directory for a PO and returns a
// Writer targeting it.
func NewWriter(outdir, po string) (*Writer, error) {
	dir := filepath.Join(outdir, po)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory %s: %w", dir, err)
	}
	return &Writer{Dir: dir}, nil
}

// Hash computes the 8-character content digest over the vendor name and the
// serialized output bytes.
func Hash(vendorName string, output []byte) string {
	h := md5.New()
	h.Write([]byte(vendorName + "\n"))
	h.Write(output)
	return hex.EncodeToString(h.Sum(nil))[:8]
}

// OutputName builds the content-addressed output file name:
// new_coast_cart_<po>_<YYYYMMDD-HHMM>_<hash>.csv with a UTC timestamp.
func OutputName(po string, now time.Time, hash string) string {
	return fmt.Sprintf("new_coast_cart_%s_%s_%s.csv", po, now.UTC().Format("20060102-1504"), hash)
}

// WriteOutput writes the serialized cart CSV under the given name and
// returns its absolute path.
func (w *Writer) WriteOutput(name string, data []byte) (string, error) {
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write output CSV: %w", err)
	}
	return filepath.Abs(path)
}

// WriteQuarantine persists rows removed by the soft-mode business rule,
// using the canonical input columns. Costs are written with two decimals.
func (w *Writer) WriteQuarantine(rows []stocky.Row) (string, error) {
	path := filepath.Join(w.Dir, QuarantineFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create quarantine file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(stocky.CanonicalFields); err != nil {
		return "", err
	}
	for _, r := range rows {
		rec := []string{
			r.SKU,
			strconv.Itoa(r.Qty),
			strconv.FormatFloat(r.UnitCost, 'f', 2, 64),
			strconv.FormatFloat(r.TotalCost, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to write quarantine file: %w", err)
	}
	return path, nil
}

// WriteLineage persists the SKU -> input row id mapping.
func (w *Writer) WriteLineage(lineage []normalize.Lineage) error {
	data, err := json.MarshalIndent(lineage, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(w.Dir, LineageFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write lineage: %w", err)
	}
	return nil
}

// WriteSummary persists both summary renderings.
func (w *Writer) WriteSummary(s *Summary) error {
	data, err := s.JSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(w.Dir, SummaryJSONFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.Dir, SummaryMDFile), []byte(s.Markdown()), 0o644); err != nil {
		return fmt.Errorf("failed to write summary.md: %w", err)
	}
	return nil
}

// Markdown renders the human-readable run summary.
func (s *Summary) Markdown() string {
	md := fmt.Sprintf("# PO %s Summary\n\n", s.PO)
	md += fmt.Sprintf("- Vendor: `%s`\n", s.Vendor)
	md += fmt.Sprintf("- Mode: `%s`\n", s.Mode)
	md += fmt.Sprintf("- Output: `%s`\n", filepath.Base(s.OutputFile))
	md += fmt.Sprintf("- Rows in/out: %d → %d (quarantined: %d)\n", s.RowsIn, s.RowsOut, s.RowsQuarantined)
	md += fmt.Sprintf("- Total Qty: %d\n", s.TotalQty)
	md += fmt.Sprintf("- Total Extended: $%.2f\n", s.TotalExtendedPrice)
	if len(s.VarianceFlags) > 0 {
		md += fmt.Sprintf("- **Variance Flags** (>20%% vs history): %d\n", len(s.VarianceFlags))
	}
	return md
}
