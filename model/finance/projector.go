// Package finance builds the discounted cash-flow schedule and derives the
// investment-appraisal metrics from a techno-economic result.
package finance

import (
	"math"

	"gonum.org/v1/gonum/floats"

	teacalc "github.com/greenfuels/teacalc"
)

const (
	// IRR search bracket. Rates below -99% or above 1000% are not
	// meaningful investment outcomes.
	irrLowerBound = -0.99
	irrUpperBound = 10.0
	irrScanStep   = 0.05
	// maxIterations bounds the bisection so a projection always terminates.
	maxIterations = 100
	irrTolerance  = 1e-9
)

type Projector struct{}

func NewProjector() *Projector {
	return &Projector{}
}

// Project builds the annual cash-flow schedule and derives NPV, IRR and
// payback. Year 0 is the capital outlay with no revenue; years 1..lifetime
// carry flat revenue and opex (no escalation is modeled; holding opex flat
// over the lifetime is an explicit simplifying assumption). IRR and payback
// being undefined are legitimate economic outcomes: they are reported as
// nil, never as errors.
func (p *Projector) Project(tea *teacalc.TechnoEconomicResult, in *teacalc.ResolvedInput) (*teacalc.FinancialResult, []teacalc.Warning, error) {
	rate := float64(in.Economics.DiscountRate)
	if rate < 0 {
		return nil, nil, &teacalc.CalculationError{Op: "project", Reason: "discount rate must not be negative"}
	}
	lifetime := in.Economics.LifetimeYears
	if lifetime <= 0 {
		return nil, nil, &teacalc.CalculationError{Op: "project", Reason: "project lifetime must be positive"}
	}

	tci := tea.TCI.Value
	annualRevenue := tea.PrimaryRevenue + tea.ByproductRevenue
	annualOpex := tea.TotalOpex.Value

	rows := make([]teacalc.CashFlowRow, 0, lifetime+1)
	presentValues := make([]float64, 0, lifetime+1)
	for year := 0; year <= lifetime; year++ {
		row := teacalc.CashFlowRow{Year: year}
		if year == 0 {
			row.NetCashFlow = -tci
		} else {
			row.Revenue = annualRevenue
			row.Opex = annualOpex
			row.NetCashFlow = annualRevenue - annualOpex
		}

		row.DiscountFactor = 1 / math.Pow(1+rate, float64(year))
		row.PresentValue = row.NetCashFlow * row.DiscountFactor

		presentValues = append(presentValues, row.PresentValue)
		row.CumulativePV = floats.Sum(presentValues)
		rows = append(rows, row)
	}

	result := &teacalc.FinancialResult{
		NPV:         rows[len(rows)-1].CumulativePV,
		PaybackYear: payback(rows),
		CashFlows:   rows,
	}

	var warnings []teacalc.Warning
	cashFlows := netCashFlows(rows)
	irr, found := InternalRateOfReturn(cashFlows)
	if found {
		result.IRR = &irr
	} else {
		warnings = append(warnings, teacalc.Warning{
			Code:    teacalc.WarningIRRConvergence,
			Field:   "financials.irr",
			Message: "no internal rate of return exists in the search bracket; the cash flows never change profitability sign",
		})
	}

	return result, warnings, nil
}

// payback returns the first year whose cumulative present value is
// non-negative, or nil when breakeven is never reached within the lifetime.
func payback(rows []teacalc.CashFlowRow) *int {
	for _, row := range rows {
		if row.CumulativePV >= 0 {
			year := row.Year
			return &year
		}
	}
	return nil
}

func netCashFlows(rows []teacalc.CashFlowRow) []float64 {
	flows := make([]float64, len(rows))
	for i, row := range rows {
		flows[i] = row.NetCashFlow
	}
	return flows
}

// NetPresentValue discounts a cash-flow series (indexed by year, starting at
// year 0) at the given rate.
func NetPresentValue(rate float64, cashFlows []float64) float64 {
	npv := 0.0
	for year, flow := range cashFlows {
		npv += flow / math.Pow(1+rate, float64(year))
	}
	return npv
}

// InternalRateOfReturn finds the discount rate zeroing the NPV of the cash
// flows. The NPV is sampled across the search bracket to locate a sign
// change, then bisected with a bounded iteration count. The second return
// is false when no sign change exists: cash flows that are never or always
// profitable have no IRR.
func InternalRateOfReturn(cashFlows []float64) (float64, bool) {
	low, high, bracketed := bracket(cashFlows)
	if !bracketed {
		return 0, false
	}

	npvLow := NetPresentValue(low, cashFlows)
	for i := 0; i < maxIterations; i++ {
		mid := (low + high) / 2
		npvMid := NetPresentValue(mid, cashFlows)

		if math.Abs(npvMid) < irrTolerance || (high-low)/2 < irrTolerance {
			return mid, true
		}

		if (npvLow < 0) == (npvMid < 0) {
			low, npvLow = mid, npvMid
		} else {
			high = mid
		}
	}

	return (low + high) / 2, true
}

// bracket scans the search range for an interval where the NPV changes sign.
func bracket(cashFlows []float64) (low, high float64, found bool) {
	previous := irrLowerBound
	npvPrevious := NetPresentValue(previous, cashFlows)

	for rate := previous + irrScanStep; rate <= irrUpperBound+irrScanStep/2; rate += irrScanStep {
		npv := NetPresentValue(rate, cashFlows)
		if (npvPrevious < 0) != (npv < 0) || npv == 0 {
			return previous, rate, true
		}
		previous, npvPrevious = rate, npv
	}

	return 0, 0, false
}
