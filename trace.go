package teacalc

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Component is one named contribution to a TraceableValue.
type Component struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Description string  `json:"description,omitempty"`
}

// TraceableValue wraps a derived KPI with its formula text and the named
// components it decomposes into, so every headline number can be audited
// back to its inputs. It is pure data: the caller supplies the already
// computed value.
type TraceableValue struct {
	Value      float64           `json:"value"`
	Unit       string            `json:"unit"`
	Formula    string            `json:"formula"`
	Components []Component       `json:"components,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// NewTraceable builds a TraceableValue. Components should sum to value
// within floating-point tolerance; Reconciles verifies that.
func NewTraceable(value float64, unit, formula string, components []Component, metadata map[string]string) TraceableValue {
	return TraceableValue{
		Value:      value,
		Unit:       unit,
		Formula:    formula,
		Components: components,
		Metadata:   metadata,
	}
}

// SetMetadata attaches one metadata entry, allocating the map lazily.
func (tv *TraceableValue) SetMetadata(key, value string) {
	if tv.Metadata == nil {
		tv.Metadata = make(map[string]string, 1)
	}
	tv.Metadata[key] = value
}

// Reconciles reports whether the components sum back to the wrapped value
// within the given relative tolerance. Values below tolerance in magnitude
// are compared absolutely.
func (tv TraceableValue) Reconciles(tolerance float64) bool {
	if len(tv.Components) == 0 {
		return true
	}

	values := make([]float64, len(tv.Components))
	for i, component := range tv.Components {
		values[i] = component.Value
	}

	sum := floats.Sum(values)
	diff := math.Abs(sum - tv.Value)
	scale := math.Max(math.Abs(sum), math.Abs(tv.Value))
	if scale < tolerance {
		return diff < tolerance
	}

	return diff/scale < tolerance
}
