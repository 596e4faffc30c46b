// =============================================================================
// Stocky to Coast - Convert Command
// =============================================================================
//
// The convert command runs the full conversion pipeline for one purchase
// order: read, map, validate, dedupe, format, write artifacts. It owns the
// run-scoped logger; everything below it receives the logger explicitly.
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/stocky-to-coast/internal/artifact"
	"github.com/ginjaninja78/stocky-to-coast/internal/config"
	"github.com/ginjaninja78/stocky-to-coast/internal/logging"
	"github.com/ginjaninja78/stocky-to-coast/internal/pipeline"
)

var convertOpts pipeline.Options

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one Stocky PO export to a vendor cart CSV",
	Long: fmt.Sprintf(`Convert a Stocky purchase-order export into a cart-import CSV.

Artifacts are written under <outdir>/<po>/: the content-addressed output
CSV, lineage.json, summary.json, summary.md, a rotating run log and, in
soft-validate mode, quarantine.csv for rows failing the total rule.

On success the JSON summary is printed to stdout. Built-in vendors: %v;
--vendor-config points at a custom YAML instead.`, config.BuiltinVendors),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert()
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&convertOpts.PO, "po", "", "Purchase order number, e.g. 1848")
	convertCmd.Flags().StringVar(&convertOpts.InputPath, "input", "", "Path to the Stocky CSV export")
	convertCmd.Flags().StringVar(&convertOpts.OutDir, "outdir", "runs", "Output directory for run artifacts")
	convertCmd.Flags().StringVar(&convertOpts.PriceHistory, "price-history", "", "Optional price history file (CSV or XLSX) with SKU,LastCost columns")
	convertCmd.Flags().BoolVar(&convertOpts.SoftValidate, "soft-validate", false, "Quarantine rows failing the total rule instead of failing the run")
	convertCmd.Flags().StringVar(&convertOpts.SKUPattern, "sku-pattern", "", "Optional regex to validate SKU format; overrides the vendor config pattern")
	convertCmd.Flags().StringVar(&convertOpts.Vendor, "vendor", "", fmt.Sprintf("Built-in vendor config, one of %v", config.BuiltinVendors))
	convertCmd.Flags().StringVar(&convertOpts.VendorConfig, "vendor-config", "", "Path to a YAML vendor config")

	convertCmd.MarkFlagRequired("po")
	convertCmd.MarkFlagRequired("input")
	convertCmd.MarkFlagsMutuallyExclusive("vendor", "vendor-config")
}

func runConvert() error {
	runDir := filepath.Join(convertOpts.OutDir, convertOpts.PO)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("failed to create run directory %s: %w", runDir, err)
	}

	log, closeLog, err := logging.NewRunLogger(runDir, artifact.LogFile, slog.LevelInfo)
	if err != nil {
		return err
	}
	defer closeLog()

	summary, err := pipeline.New(convertOpts, log).Run()
	if err != nil {
		return err
	}

	out, err := summary.JSON()
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
