package teacalc

import (
	"fmt"
	"strings"
)

// UnitError reports an input unit string that matches no registered synonym
// of its quantity family. Suggestions carries the closest registered units.
type UnitError struct {
	Field       string
	Unit        string
	Family      string
	Suggestions []string
}

func (unitErr *UnitError) Error() string {
	msg := fmt.Sprintf("unknown unit %q for %s (family: %s)", unitErr.Unit, unitErr.Field, unitErr.Family)
	if len(unitErr.Suggestions) > 0 {
		msg += fmt.Sprintf(", did you mean: %s", strings.Join(unitErr.Suggestions, ", "))
	}
	return msg
}

// ValidationError reports structurally invalid input: a missing required
// density, an empty product list, a non-finite number, a negative lifetime.
type ValidationError struct {
	Field  string
	Reason string
}

func (validationErr *ValidationError) Error() string {
	return fmt.Sprintf("invalid input (field: %s): %s", validationErr.Field, validationErr.Reason)
}

// CalculationError reports a mathematically undefined operation, such as a
// zero production denominator. It is fatal for the request only.
type CalculationError struct {
	Op     string
	Reason string
}

func (calcErr *CalculationError) Error() string {
	return fmt.Sprintf("calculation failed (op: %s): %s", calcErr.Op, calcErr.Reason)
}
