// =============================================================================
// Stocky to Coast - Root Command
// =============================================================================
//
// Base command for the Cobra CLI and the process exit contract:
//
//   0  success (the JSON run summary is printed to stdout)
//   1  validation failure: bad vendor config, unresolvable column,
//      type coercion failure, schema/business-rule violation in strict mode
//   2  anything else
//
// Validation-class failures are prefixed "VALIDATION ERROR:" on stderr,
// everything else "ERROR:".
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/stocky-to-coast/internal/config"
	"github.com/ginjaninja78/stocky-to-coast/internal/schema"
	"github.com/ginjaninja78/stocky-to-coast/internal/stocky"
)

// rootCmd is the entry point for the CLI.
var rootCmd = &cobra.Command{
	Use:   "stocky2coast",
	Short: "Convert Stocky purchase-order exports to vendor cart-import CSVs",
	Long: `stocky2coast converts a purchase-order export from Stocky into a
cart-import CSV for a downstream vendor ordering system.

Each run validates the export against the canonical schema, collapses
duplicate SKUs, applies vendor-specific output formatting, and leaves an
auditable set of artifacts (output CSV, lineage, summaries, log) in a
run directory keyed by PO number.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	SilenceErrors: true,
}

// Execute runs the CLI and maps errors to the exit-code contract. Called by
// main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if isValidationError(err) {
			fmt.Fprintf(os.Stderr, "VALIDATION ERROR: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(2)
	}
}

// isValidationError reports whether err belongs to the validation taxonomy
// (exit code 1) rather than the unhandled bucket (exit code 2).
func isValidationError(err error) bool {
	var (
		cfgErr     *config.ConfigError
		missingErr *stocky.MissingColumnError
		coerceErr  *stocky.TypeCoercionError
		schemaErr  *schema.ValidationError
	)
	return errors.As(err, &cfgErr) ||
		errors.As(err, &missingErr) ||
		errors.As(err, &coerceErr) ||
		errors.As(err, &schemaErr)
}
