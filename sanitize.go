package teacalc

import (
	"fmt"
	"log/slog"
	"math"
)

// Sanitize collapses every non-finite float in the result to 0 so the
// payload serializes cleanly in any format. Each substitution is flagged
// with a warning and logged, keeping "undefined" distinguishable from a
// genuine zero: internally the tri-state survives until this call, which
// belongs at the outermost encoding boundary and nowhere earlier.
func (r *Result) Sanitize() []Warning {
	s := &sanitizer{calculation: r.ID}

	if tea := r.TechnoEconomics; tea != nil {
		s.quantity("techno_economics.production", &tea.Production)
		s.traceable("techno_economics.tci", &tea.TCI)
		s.float("techno_economics.capital_recovery_factor", &tea.CapitalRecovery)
		s.float("techno_economics.annualized_capital", &tea.AnnualizedCapital)
		for i := range tea.Streams {
			stream := &tea.Streams[i]
			prefix := fmt.Sprintf("techno_economics.streams[%d]", i)
			s.quantity(prefix+".consumption", &stream.Consumption)
			s.quantity(prefix+".cost", &stream.Cost)
			s.quantity(prefix+".emissions", &stream.Emissions)
		}
		s.float("techno_economics.direct_opex", &tea.DirectOpex)
		s.float("techno_economics.indirect_opex", &tea.IndirectOpex)
		s.traceable("techno_economics.total_opex", &tea.TotalOpex)
		s.float("techno_economics.primary_revenue", &tea.PrimaryRevenue)
		s.float("techno_economics.byproduct_revenue", &tea.ByproductRevenue)
		s.quantity("techno_economics.total_co2", &tea.TotalCO2)
		s.quantity("techno_economics.carbon_intensity", &tea.CarbonIntensity)
		if tea.CarbonIntensityEnergy != nil {
			s.quantity("techno_economics.carbon_intensity_energy", tea.CarbonIntensityEnergy)
		}
		s.float("techno_economics.carbon_conversion_efficiency", &tea.CarbonConversionEfficiency)
		s.traceable("techno_economics.lcop", &tea.LCOP)
	}

	if fin := r.Financials; fin != nil {
		s.float("financials.npv", &fin.NPV)
		// a non-finite IRR degrades to the undefined marker, not to zero
		if fin.IRR != nil && (math.IsNaN(*fin.IRR) || math.IsInf(*fin.IRR, 0)) {
			s.flag("financials.irr")
			fin.IRR = nil
		}
		for i := range fin.CashFlows {
			row := &fin.CashFlows[i]
			prefix := fmt.Sprintf("financials.cash_flows[%d]", i)
			s.float(prefix+".revenue", &row.Revenue)
			s.float(prefix+".opex", &row.Opex)
			s.float(prefix+".net_cash_flow", &row.NetCashFlow)
			s.float(prefix+".discount_factor", &row.DiscountFactor)
			s.float(prefix+".present_value", &row.PresentValue)
			s.float(prefix+".cumulative_pv", &row.CumulativePV)
		}
	}

	r.Warnings = append(r.Warnings, s.warnings...)
	return s.warnings
}

type sanitizer struct {
	calculation string
	warnings    []Warning
}

func (s *sanitizer) float(field string, v *float64) {
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		s.flag(field)
		*v = 0
	}
}

func (s *sanitizer) quantity(field string, q *Quantity) {
	s.float(field, &q.Value)
}

func (s *sanitizer) traceable(field string, tv *TraceableValue) {
	s.float(field+".value", &tv.Value)
	for i := range tv.Components {
		s.float(fmt.Sprintf("%s.components[%d].value", field, i), &tv.Components[i].Value)
	}
}

func (s *sanitizer) flag(field string) {
	slog.Warn("non-finite value sanitized to zero",
		"calculation", s.calculation,
		"field", field)
	s.warnings = append(s.warnings, Warning{
		Code:    WarningNonFinite,
		Field:   field,
		Message: "value was not finite and was replaced by 0 for serialization",
	})
}
