// =============================================================================
// Stocky to Coast - Schema Validator
// =============================================================================
//
// Row validation for the canonical input set, decomposed into three phases
// that run in sequence:
//
//   1. CheckRanges  - non-negativity of quantity and both cost fields
//   2. CheckPattern - optional SKU regex (CLI pattern beats vendor config)
//   3. TotalRuleViolations - cross-field rule |qty*cost - total| <= 0.01
//
// Phases 1 and 2 are always fatal. Phase 3 is fatal in strict mode; in
// soft-validate mode the caller removes violating rows and quarantines them
// instead of aborting the run.
//
// Violations are collected, not thrown one at a time; each carries the row
// id and SKU so quarantine review can trace the source line.
//
// =============================================================================

package schema

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ginjaninja78/stocky-to-coast/internal/stocky"
)

// TotalTolerance is the permitted absolute difference between
// qty*cost and the reported row total.
const TotalTolerance = 0.01

// Violation is one failed check on one row.
type Violation struct {
	// Row is the zero-based canonical row id.
	Row int

	// SKU identifies the row for humans; may be empty if the SKU itself
	// is the problem.
	SKU string

	// Check names the violated rule.
	Check string

	// Message describes the failure.
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("row %d (SKU %q): %s: %s", v.Row, v.SKU, v.Check, v.Message)
}

// ValidationError aggregates every violation found in a fatal phase. It is a
// validation failure (exit code 1).
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "schema validation failed: " + e.Violations[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "schema validation failed with %d violations:", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n  ")
		b.WriteString(v.String())
	}
	return b.String()
}

// Validator holds the per-run validation settings.
type Validator struct {
	pattern *regexp.Regexp
}

// New builds a Validator. pattern may be empty; when set it must compile.
// The pattern is anchored at the start of the SKU, so "A[0-9]+" accepts
// "A12" but rejects "XA12".
func New(pattern string) (*Validator, error) {
	v := &Validator{}
	if pattern != "" {
		re, err := regexp.Compile("^(?:" + pattern + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid SKU pattern %q: %w", pattern, err)
		}
		v.pattern = re
	}
	return v, nil
}

// CheckRanges enforces non-negativity on quantity and both cost fields.
func (v *Validator) CheckRanges(rows []stocky.Row) error {
	var violations []Violation
	for i, r := range rows {
		if r.Qty < 0 {
			violations = append(violations, Violation{
				Row: i, SKU: r.SKU, Check: "qty_ordered >= 0",
				Message: fmt.Sprintf("got %d", r.Qty),
			})
		}
		if r.UnitCost < 0 {
			violations = append(violations, Violation{
				Row: i, SKU: r.SKU, Check: "unit_cost >= 0",
				Message: fmt.Sprintf("got %v", r.UnitCost),
			})
		}
		if r.TotalCost < 0 {
			violations = append(violations, Violation{
				Row: i, SKU: r.SKU, Check: "total_cost >= 0",
				Message: fmt.Sprintf("got %v", r.TotalCost),
			})
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// CheckPattern enforces the configured SKU regex. A nil pattern passes
// everything.
func (v *Validator) CheckPattern(rows []stocky.Row) error {
	if v.pattern == nil {
		return nil
	}
	var violations []Violation
	for i, r := range rows {
		if !v.pattern.MatchString(r.SKU) {
			violations = append(violations, Violation{
				Row: i, SKU: r.SKU, Check: "sku_pattern",
				Message: fmt.Sprintf("%q does not match %s", r.SKU, v.pattern),
			})
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// TotalRuleViolations returns the row ids violating the cross-field total
// identity. The caller decides fatality: strict mode turns a non-empty
// result into a ValidationError via TotalRuleError; soft mode quarantines.
func TotalRuleViolations(rows []stocky.Row) []int {
	var bad []int
	for i, r := range rows {
		if math.Abs(float64(r.Qty)*r.UnitCost-r.TotalCost) > TotalTolerance {
			bad = append(bad, i)
		}
	}
	return bad
}

// TotalRuleError builds the strict-mode error for the given violating rows.
func TotalRuleError(rows []stocky.Row, ids []int) *ValidationError {
	violations := make([]Violation, 0, len(ids))
	for _, id := range ids {
		r := rows[id]
		violations = append(violations, Violation{
			Row: id, SKU: r.SKU, Check: "row total",
			Message: fmt.Sprintf("|%d*%v - %v| > %v", r.Qty, r.UnitCost, r.TotalCost, TotalTolerance),
		})
	}
	return &ValidationError{Violations: violations}
}
