package teacalc

import "fmt"

// WarningCode classifies soft conditions embedded in a successful result.
type WarningCode string

const (
	// WarningMassFraction signals product yields that do not sum to 100%.
	// The calculation proceeds using the yields directly.
	WarningMassFraction WarningCode = "mass_fraction"
	// WarningIRRConvergence signals that the IRR root-finder found no
	// bracket; IRR is reported as null.
	WarningIRRConvergence WarningCode = "irr_convergence"
	// WarningNonFinite signals a non-finite float replaced by zero at the
	// serialization boundary.
	WarningNonFinite WarningCode = "non_finite_sanitized"
)

// Warning is a soft condition the caller should surface but that does not
// invalidate the calculation.
type Warning struct {
	Code    WarningCode `json:"code"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s (%s): %s", w.Code, w.Field, w.Message)
}
