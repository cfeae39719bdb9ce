package teacalc

import "math"

// Quantity is a numeric value paired with its unit. After normalization the
// unit is always the canonical base unit of its quantity family (capacity in
// t/yr, bulk prices in USD/t, electricity prices in USD/kWh, and so on) and
// the struct is treated as immutable.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// IsFinite reports whether the quantity holds a usable number.
func (q Quantity) IsFinite() bool {
	return !math.IsNaN(q.Value) && !math.IsInf(q.Value, 0)
}

// Fraction is a dimensionless ratio normalized to the 0..1 range.
type Fraction float64

// Percent returns the fraction expressed out of 100.
func (f Fraction) Percent() float64 {
	return float64(f) * 100
}
