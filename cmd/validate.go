// =============================================================================
// Stocky to Coast - Validate Command
// =============================================================================
//
// Checks a vendor configuration (and an optional SKU pattern) without
// reading any input data. Useful for vetting a new vendor YAML before
// pointing a real purchase order at it.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/stocky-to-coast/internal/config"
	"github.com/ginjaninja78/stocky-to-coast/internal/schema"
)

var (
	validateVendor       string
	validateVendorConfig string
	validateSKUPattern   string
)

var validateCmd = &cobra.Command{
	Use:          "validate",
	Short:        "Validate a vendor configuration without processing input",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(validateVendor, validateVendorConfig)
		if err != nil {
			return err
		}
		if _, err := schema.New(validateSKUPattern); err != nil {
			return &schema.ValidationError{Violations: []schema.Violation{{
				Check: "sku_pattern", Message: err.Error(),
			}}}
		}
		fmt.Printf("vendor config OK: name=%s columns=%v delimiter=%q decimal_places=%d quoting=%s\n",
			cfg.Name, cfg.Output.Columns, cfg.Output.Delimiter, cfg.Output.DecimalPlaces, cfg.Output.Quoting)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateVendor, "vendor", "", fmt.Sprintf("Built-in vendor config, one of %v", config.BuiltinVendors))
	validateCmd.Flags().StringVar(&validateVendorConfig, "vendor-config", "", "Path to a YAML vendor config")
	validateCmd.Flags().StringVar(&validateSKUPattern, "sku-pattern", "", "Optional SKU regex to check for compilability")
	validateCmd.MarkFlagsMutuallyExclusive("vendor", "vendor-config")
}
