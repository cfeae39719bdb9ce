package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	teacalc "github.com/greenfuels/teacalc"
)

func value(v float64) *float64 {
	return &v
}

func TestNormalize(t *testing.T) {
	normalizer := NewNormalizer(NewRegistry())

	q, err := normalizer.Normalize("price", value(55), "USD/MWh", PricePerKWh)
	require.NoError(t, err)
	assert.Equal(t, &teacalc.Quantity{Value: 0.055, Unit: "USD/kWh"}, q)

	// already canonical values are the identity
	q, err = normalizer.Normalize("price", value(0.055), "USD/kWh", PricePerKWh)
	require.NoError(t, err)
	assert.Equal(t, &teacalc.Quantity{Value: 0.055, Unit: "USD/kWh"}, q)
}

func TestNormalizeAbsentValue(t *testing.T) {
	normalizer := NewNormalizer(NewRegistry())

	// absent optional quantities stay absent, they do not become zero
	q, err := normalizer.Normalize("carbon_intensity", nil, "gCO2/kg", CarbonPerMass)
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestNormalizeNonFinite(t *testing.T) {
	normalizer := NewNormalizer(NewRegistry())

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := normalizer.Normalize("price", value(v), "USD/t", PricePerTonne)
		assert.Error(t, err)
	}
}

func TestNormalizeUnknownUnit(t *testing.T) {
	normalizer := NewNormalizer(NewRegistry())

	_, err := normalizer.Normalize("price", value(5), "USD/lightyear", PricePerTonne)
	require.Error(t, err)

	unitErr, ok := err.(*teacalc.UnitError)
	require.True(t, ok)
	assert.Equal(t, "price", unitErr.Field)
}

func TestNormalizeCapacity(t *testing.T) {
	normalizer := NewNormalizer(NewRegistry())

	q, err := normalizer.NormalizeCapacity("plant.capacity", value(500), "KTA", nil)
	require.NoError(t, err)
	assert.Equal(t, &teacalc.Quantity{Value: 500000, Unit: "t/yr"}, q)
}

func TestNormalizeCapacityVolumetric(t *testing.T) {
	normalizer := NewNormalizer(NewRegistry())

	// volumetric capacity without a density is a validation failure
	_, err := normalizer.NormalizeCapacity("plant.capacity", value(20), "million gallons/yr", nil)
	require.Error(t, err)
	assert.IsType(t, &teacalc.ValidationError{}, err)

	density := &teacalc.Quantity{Value: 800, Unit: "kg/m3"}
	q, err := normalizer.NormalizeCapacity("plant.capacity", value(20), "million gallons/yr", density)
	require.NoError(t, err)
	// 20 Mgal x 3785.411784 m3/Mgal x 800 kg/m3 / 1000
	assert.InEpsilon(t, 60566.588544, q.Value, 1e-9)

	q, err = normalizer.NormalizeCapacity("plant.capacity", value(10000), "bbl/d", density)
	require.NoError(t, err)
	assert.InEpsilon(t, 10000*0.158987294928*365*800/1000, q.Value, 1e-9)
}

func TestNormalizeFraction(t *testing.T) {
	// values above 1 are percentages out of 100, values below stay as-is
	assert.Equal(t, teacalc.Fraction(0.64), NormalizeFraction(64))
	assert.Equal(t, teacalc.Fraction(0.64), NormalizeFraction(0.64))
	assert.Equal(t, teacalc.Fraction(1.0), NormalizeFraction(1.0))
	assert.Equal(t, teacalc.Fraction(0), NormalizeFraction(0))
}
