package units

import (
	"math"

	teacalc "github.com/greenfuels/teacalc"
)

// Normalizer converts raw value+unit pairs into canonical-unit quantities
// using an injected Registry.
type Normalizer struct {
	registry *Registry
}

func NewNormalizer(registry *Registry) *Normalizer {
	return &Normalizer{registry: registry}
}

func (n *Normalizer) Registry() *Registry {
	return n.registry
}

// Normalize converts value+unit into the canonical unit of family. A nil
// value passes through as nil: absent optional quantities stay absent, they
// never become zero. Volumetric units are rejected here; capacity goes
// through NormalizeCapacity.
func (n *Normalizer) Normalize(field string, value *float64, unit string, family Family) (*teacalc.Quantity, error) {
	if value == nil {
		return nil, nil
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) {
		return nil, &teacalc.ValidationError{Field: field, Reason: "value is not a finite number"}
	}

	conversion, err := n.conversion(field, family, unit)
	if err != nil {
		return nil, err
	}
	if conversion.Volumetric {
		return nil, &teacalc.ValidationError{
			Field:  field,
			Reason: "volumetric unit requires an average liquid density",
		}
	}

	return &teacalc.Quantity{
		Value: *value * conversion.Factor,
		Unit:  n.registry.Canonical(family),
	}, nil
}

// NormalizeCapacity converts a throughput value into canonical t/yr. When
// the unit is volumetric (million gallons per year, barrels per day) a
// liquid density in kg/m3 is mandatory; its absence is a validation failure,
// never a silent default.
func (n *Normalizer) NormalizeCapacity(field string, value *float64, unit string, density *teacalc.Quantity) (*teacalc.Quantity, error) {
	if value == nil {
		return nil, nil
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) {
		return nil, &teacalc.ValidationError{Field: field, Reason: "value is not a finite number"}
	}

	conversion, err := n.conversion(field, Capacity, unit)
	if err != nil {
		return nil, err
	}

	tonnesPerYear := *value * conversion.Factor
	if conversion.Volumetric {
		if density == nil {
			return nil, &teacalc.ValidationError{
				Field:  field,
				Reason: "capacity unit " + unit + " requires an average liquid density",
			}
		}
		// factor yields m3/yr; density kg/m3; 1000 kg per tonne
		tonnesPerYear = *value * conversion.Factor * density.Value / 1000
	}

	return &teacalc.Quantity{Value: tonnesPerYear, Unit: n.registry.Canonical(Capacity)}, nil
}

// NormalizeFraction applies the single percentage rule: dimensionless ratio
// inputs greater than 1 are assumed to be expressed out of 100 and are
// divided by 100, so "64" and "0.64" mean the same share. The rule applies
// to fractional inputs only (carbon content, discount rate, capital ratios);
// yields are never rescaled since a yield above 1 kg/kg is legitimate.
func NormalizeFraction(value float64) teacalc.Fraction {
	if value > 1 {
		return teacalc.Fraction(value / 100)
	}
	return teacalc.Fraction(value)
}

func (n *Normalizer) conversion(field string, family Family, unit string) (Conversion, error) {
	conversion, err := n.registry.Conversion(family, unit)
	if err != nil {
		if unitErr, ok := err.(*teacalc.UnitError); ok {
			unitErr.Field = field
		}
		return Conversion{}, err
	}
	return conversion, nil
}
