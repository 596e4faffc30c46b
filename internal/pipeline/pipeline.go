// =============================================================================
// Stocky to Coast - Conversion Pipeline
// =============================================================================
//
// One-shot orchestrator for a single purchase-order run. The stages run
// strictly in sequence:
//
//   1. Load and validate the vendor configuration (before any row is read)
//   2. Read the Stocky export
//   3. Resolve column aliases and coerce types
//   4. Validate: ranges, SKU pattern, then the cross-field total rule
//      (strict: fatal; soft: violating rows are quarantined)
//   5. Dedupe/normalize and capture lineage
//   6. Project to the cart schema and serialize per vendor config
//   7. Optional price-variance detection
//   8. Write the run artifacts and build the summary
//
// The output CSV is serialized in memory and written only after every
// fallible stage has passed, so a fatal error leaves no output artifact —
// only the log and, in soft mode, the quarantine file.
//
// =============================================================================

package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/stocky-to-coast/internal/artifact"
	"github.com/ginjaninja78/stocky-to-coast/internal/coast"
	"github.com/ginjaninja78/stocky-to-coast/internal/config"
	"github.com/ginjaninja78/stocky-to-coast/internal/normalize"
	"github.com/ginjaninja78/stocky-to-coast/internal/pricehist"
	"github.com/ginjaninja78/stocky-to-coast/internal/schema"
	"github.com/ginjaninja78/stocky-to-coast/internal/stocky"
)

// Options are the per-run settings, mirroring the convert command flags.
type Options struct {
	// PO is the purchase order identifier; it keys the run directory.
	PO string

	// InputPath is the Stocky CSV export.
	InputPath string

	// OutDir is the parent of the run directory. Default "runs".
	OutDir string

	// PriceHistory is an optional price reference (CSV or XLSX).
	PriceHistory string

	// SoftValidate quarantines rows violating the total rule instead of
	// failing the run.
	SoftValidate bool

	// SKUPattern overrides the vendor config pattern when set.
	SKUPattern string

	// Vendor selects a built-in vendor config; VendorConfig points at an
	// explicit YAML file. At most one may be set.
	Vendor       string
	VendorConfig string
}

// Mode returns the run mode label used in artifacts.
func (o Options) Mode() string {
	if o.SoftValidate {
		return "soft-validate"
	}
	return "strict"
}

// Runner executes one conversion run. Construct with New; the logger is
// explicit and run-scoped, never a package global.
type Runner struct {
	opts Options
	log  *slog.Logger
}

// New returns a Runner for the given options.
func New(opts Options, log *slog.Logger) *Runner {
	return &Runner{opts: opts, log: log}
}

// Run executes the pipeline. On success the returned summary has already
// been written to the run directory. Any error has been logged in full
// before it is returned.
func (r *Runner) Run() (*artifact.Summary, error) {
	runID := uuid.New().String()
	log := r.log.With("run_id", runID, "po", r.opts.PO)
	log.Info("starting run", "input", r.opts.InputPath, "mode", r.opts.Mode())

	summary, err := r.run(runID, log)
	if err != nil {
		log.Error("run failed", "error", err)
		return nil, err
	}
	log.Info("run complete",
		"vendor", summary.Vendor,
		"output", filepath.Base(summary.OutputFile),
		"rows_out", summary.RowsOut,
		"quarantined", summary.RowsQuarantined)
	return summary, nil
}

func (r *Runner) run(runID string, log *slog.Logger) (*artifact.Summary, error) {
	// Vendor configuration is validated before any input row is read, so
	// a bad config can never produce a partial run.
	cfg, err := config.Load(r.opts.Vendor, r.opts.VendorConfig)
	if err != nil {
		return nil, err
	}
	log.Info("vendor config loaded", "vendor", cfg.Name, "columns", cfg.Output.Columns)

	// CLI pattern beats vendor config pattern.
	pattern := r.opts.SKUPattern
	if pattern == "" {
		pattern = cfg.Input.SKUPattern
	}
	validator, err := schema.New(pattern)
	if err != nil {
		return nil, &schema.ValidationError{Violations: []schema.Violation{{
			Check: "sku_pattern", Message: err.Error(),
		}}}
	}

	file, err := stocky.Read(r.opts.InputPath)
	if err != nil {
		return nil, err
	}
	rowsIn := len(file.Records)
	log.Info("input read", "rows", rowsIn)

	rows, err := stocky.MapColumns(file)
	if err != nil {
		return nil, err
	}

	// Phases 1 and 2 are fatal in both modes.
	if err := validator.CheckRanges(rows); err != nil {
		return nil, err
	}
	if err := validator.CheckPattern(rows); err != nil {
		return nil, err
	}

	// Phase 3: the cross-field total rule. Strict mode aborts; soft mode
	// splits violators off for quarantine.
	badIDs := schema.TotalRuleViolations(rows)
	var quarantined []stocky.Row
	kept := rows
	keptIDs := make([]int, len(rows))
	for i := range keptIDs {
		keptIDs[i] = i
	}
	if len(badIDs) > 0 {
		if !r.opts.SoftValidate {
			return nil, schema.TotalRuleError(rows, badIDs)
		}
		bad := make(map[int]bool, len(badIDs))
		for _, id := range badIDs {
			bad[id] = true
		}
		kept = kept[:0:0]
		keptIDs = keptIDs[:0:0]
		for i, row := range rows {
			if bad[i] {
				quarantined = append(quarantined, row)
			} else {
				kept = append(kept, row)
				keptIDs = append(keptIDs, i)
			}
		}
	}

	writer, err := artifact.NewWriter(r.opts.OutDir, r.opts.PO)
	if err != nil {
		return nil, err
	}

	// The quarantine file is the one artifact allowed to exist regardless
	// of how the rest of the run ends.
	if len(quarantined) > 0 {
		qPath, err := writer.WriteQuarantine(quarantined)
		if err != nil {
			return nil, err
		}
		log.Warn("quarantined rows failing total rule",
			"rows", len(quarantined), "file", filepath.Base(qPath))
	}

	items, lineage := normalize.Dedupe(kept, keptIDs)
	outRows := coast.Project(items)

	data, err := coast.Serialize(outRows, cfg.Output.Columns, cfg.Output.Delimiter,
		cfg.Output.DecimalPlaces, cfg.Output.QuotingMode())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize output: %w", err)
	}

	flags := r.detectVariance(items, log)

	hash := artifact.Hash(cfg.Name, data)
	outName := artifact.OutputName(r.opts.PO, time.Now(), hash)
	outPath, err := writer.WriteOutput(outName, data)
	if err != nil {
		return nil, err
	}
	if err := writer.WriteLineage(lineage); err != nil {
		return nil, err
	}

	totalQty := 0
	totalExtended := 0.0
	for _, row := range outRows {
		totalQty += row.Qty
		totalExtended += row.ExtendedPrice
	}

	absInput, err := filepath.Abs(r.opts.InputPath)
	if err != nil {
		absInput = r.opts.InputPath
	}
	var patternOut *string
	if pattern != "" {
		patternOut = &pattern
	}
	if flags == nil {
		flags = []pricehist.Flag{}
	}

	summary := &artifact.Summary{
		RunID:              runID,
		PO:                 r.opts.PO,
		Vendor:             cfg.Name,
		Mode:               r.opts.Mode(),
		SKUPattern:         patternOut,
		InputFile:          absInput,
		OutputFile:         outPath,
		RowsIn:             rowsIn,
		RowsValidated:      len(kept) + len(quarantined),
		RowsQuarantined:    len(quarantined),
		RowsOut:            len(outRows),
		TotalQty:           totalQty,
		TotalExtendedPrice: totalExtended,
		VarianceFlags:      flags,
		Status:             "OK",
	}
	if err := writer.WriteSummary(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// detectVariance runs the optional price-history comparison. It never fails
// the run: an absent file is skipped silently, anything else unreadable is
// logged and ignored.
func (r *Runner) detectVariance(items []normalize.Item, log *slog.Logger) []pricehist.Flag {
	if r.opts.PriceHistory == "" {
		return nil
	}
	hist, err := pricehist.Load(r.opts.PriceHistory)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("price history unreadable, skipping variance detection",
				"path", r.opts.PriceHistory, "error", err)
		}
		return nil
	}
	flags := pricehist.Detect(items, hist, pricehist.DefaultThreshold)
	if len(flags) > 0 {
		log.Warn("price variance above threshold", "flags", len(flags))
	}
	return flags
}
