// =============================================================================
// Stocky to Coast - Main Entry Point
// =============================================================================
//
// Thin entry point: all command wiring lives in cmd/, the pipeline itself
// in internal/.
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/stocky-to-coast/cmd"
)

func main() {
	cmd.Execute()
}
