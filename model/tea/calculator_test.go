package tea

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	teacalc "github.com/greenfuels/teacalc"
)

func testInput() *teacalc.ResolvedInput {
	return &teacalc.ResolvedInput{
		Plant: teacalc.Plant{
			Capacity:               teacalc.Quantity{Value: 500000, Unit: "t/yr"},
			LoadHours:              8000,
			ProcessCarbonIntensity: 10,
			ProcessType:            "HEFA",
		},
		Feedstocks: []teacalc.Feedstock{{
			Name:            "used cooking oil",
			Price:           teacalc.Quantity{Value: 800, Unit: "USD/t"},
			CarbonContent:   0.77,
			CarbonIntensity: teacalc.Quantity{Value: 140, Unit: "gCO2/kg"},
			EnergyContent:   teacalc.Quantity{Value: 37, Unit: "MJ/kg"},
			Yield:           teacalc.Quantity{Value: 1.2, Unit: "kg/kg"},
		}},
		Utilities: []teacalc.Utility{
			{
				Name:            "hydrogen",
				Basis:           teacalc.BasisMass,
				Price:           teacalc.Quantity{Value: 3, Unit: "USD/kg"},
				Yield:           teacalc.Quantity{Value: 0.04, Unit: "kg/kg"},
				CarbonIntensity: &teacalc.Quantity{Value: 9000, Unit: "gCO2/kg"},
			},
			{
				Name:  "electricity",
				Basis: teacalc.BasisEnergy,
				Price: teacalc.Quantity{Value: 0.06, Unit: "USD/kWh"},
				Yield: teacalc.Quantity{Value: 0.5, Unit: "kWh/kg"},
			},
		},
		Products: []teacalc.Product{
			{
				Name:          "jet fuel",
				Price:         teacalc.Quantity{Value: 1500, Unit: "USD/t"},
				CarbonContent: 0.85,
				EnergyContent: teacalc.Quantity{Value: 43.2, Unit: "MJ/kg"},
				Yield:         teacalc.Quantity{Value: 0.6, Unit: "kg/kg"},
				MassFraction:  60,
			},
			{
				Name:          "naphtha",
				Price:         teacalc.Quantity{Value: 700, Unit: "USD/t"},
				CarbonContent: 0.84,
				Yield:         teacalc.Quantity{Value: 0.25, Unit: "kg/kg"},
				MassFraction:  25,
			},
			{
				Name:          "lpg",
				Price:         teacalc.Quantity{Value: 600, Unit: "USD/t"},
				CarbonContent: 0.82,
				Yield:         teacalc.Quantity{Value: 0.15, Unit: "kg/kg"},
				MassFraction:  15,
			},
		},
		Economics: teacalc.EconomicParameters{
			DiscountRate:        0.07,
			LifetimeYears:       20,
			ReferenceTCI:        teacalc.Quantity{Value: 400e6, Unit: "USD"},
			ScalingExponent:     0.6,
			ReferenceCapacity:   teacalc.Quantity{Value: 500000, Unit: "t/yr"},
			WorkingCapitalRatio: 0.15,
			IndirectOpexRatio:   0.04,
		},
	}
}

func TestComputeTCIScaling(t *testing.T) {
	calculator := NewCalculator()

	// capacity equals the reference capacity: scaling ratio is exactly 1,
	// TCI is the reference TCI plus working capital
	result, err := calculator.Compute(testInput())
	require.NoError(t, err)
	assert.Equal(t, 400e6*1.15, result.TCI.Value)
	assert.True(t, result.TCI.Reconciles(1e-9))

	// half the reference capacity follows the six-tenths rule
	half := testInput()
	half.Plant.Capacity.Value = 250000
	result, err = calculator.Compute(half)
	require.NoError(t, err)
	assert.InEpsilon(t, 400e6*0.659753955386447*1.15, result.TCI.Value, 1e-6)
}

func TestComputeStreams(t *testing.T) {
	calculator := NewCalculator()

	result, err := calculator.Compute(testInput())
	require.NoError(t, err)

	require.Len(t, result.Streams, 4) // feedstock, hydrogen, electricity, process

	feedstock := result.Streams[0]
	assert.Equal(t, 600000.0, feedstock.Consumption.Value) // 500000 x 1.2
	assert.Equal(t, "t/yr", feedstock.Consumption.Unit)
	assert.Equal(t, 480e6, feedstock.Cost.Value)
	assert.InEpsilon(t, 84000.0, feedstock.Emissions.Value, 1e-9) // 600000 t x 140 g/kg

	hydrogen := result.Streams[1]
	assert.Equal(t, 20e6, hydrogen.Consumption.Value) // 500000 t x 1000 x 0.04
	assert.Equal(t, "kg/yr", hydrogen.Consumption.Unit)
	assert.Equal(t, 60e6, hydrogen.Cost.Value)

	electricity := result.Streams[2]
	assert.Equal(t, 250e6, electricity.Consumption.Value) // 500000 t x 1000 x 0.5
	assert.Equal(t, "kWh/yr", electricity.Consumption.Unit)
	assert.Equal(t, 15e6, electricity.Cost.Value)
	assert.Equal(t, 0.0, electricity.Emissions.Value) // no carbon intensity set

	assert.Equal(t, 480e6+60e6+15e6, result.DirectOpex)
	assert.Equal(t, 400e6*1.15*0.04, result.IndirectOpex)
	assert.True(t, result.TotalOpex.Reconciles(1e-9))
}

func TestComputeLCOPReconciles(t *testing.T) {
	calculator := NewCalculator()

	result, err := calculator.Compute(testInput())
	require.NoError(t, err)

	assert.True(t, result.LCOP.Reconciles(1e-6))
	assert.Equal(t, "USD/t", result.LCOP.Unit)

	// byproduct revenue is credited: naphtha and lpg tonnage at their prices
	expectedByproduct := 0.25*500000*700 + 0.15*500000*600
	assert.InEpsilon(t, expectedByproduct, result.ByproductRevenue, 1e-9)

	expectedLCOP := (result.AnnualizedCapital + result.TotalOpex.Value - result.ByproductRevenue) / 500000
	assert.InEpsilon(t, expectedLCOP, result.LCOP.Value, 1e-12)
}

func TestComputeCarbonLedger(t *testing.T) {
	calculator := NewCalculator()

	result, err := calculator.Compute(testInput())
	require.NoError(t, err)

	// feedstock 84000 t + hydrogen 20e6 kg x 9000 g/kg = 180000 t
	// + process 500000 t x 1000 x 43.2 MJ/kg x 10 g/MJ = 216000 t
	assert.InEpsilon(t, 84000.0+180000+216000, result.TotalCO2.Value, 1e-9)

	// per kg of product
	assert.InEpsilon(t, (84000.0+180000+216000)*1e6/(500000*1000), result.CarbonIntensity.Value, 1e-9)

	require.NotNil(t, result.CarbonIntensityEnergy)
	assert.InEpsilon(t, result.CarbonIntensity.Value/43.2, result.CarbonIntensityEnergy.Value, 1e-9)

	// carbon in products over carbon in feed
	carbonIn := 600000 * 0.77
	carbonOut := 0.6*500000*0.85 + 0.25*500000*0.84 + 0.15*500000*0.82
	assert.InEpsilon(t, carbonOut/carbonIn*100, result.CarbonConversionEfficiency, 1e-9)
}

func TestComputePriceSensitivity(t *testing.T) {
	calculator := NewCalculator()

	base, err := calculator.Compute(testInput())
	require.NoError(t, err)

	adjusted := testInput()
	// a negative coefficient models a premium that shrinks as carbon
	// intensity grows
	adjusted.Products[0].PriceSensitivity = &teacalc.Quantity{Value: -0.0001, Unit: "USD/gCO2"}
	result, err := calculator.Compute(adjusted)
	require.NoError(t, err)

	expectedDelta := -0.0001 * base.CarbonIntensity.Value * 1000 * (0.6 * 500000)
	assert.InEpsilon(t, base.PrimaryRevenue+expectedDelta, result.PrimaryRevenue, 1e-9)
}

func TestComputeProductionMustBePositive(t *testing.T) {
	calculator := NewCalculator()

	input := testInput()
	input.Plant.Capacity.Value = 0

	_, err := calculator.Compute(input)
	require.Error(t, err)
	assert.IsType(t, &teacalc.CalculationError{}, err)
}

func TestComputeNameplateProduction(t *testing.T) {
	calculator := NewCalculator()

	// production is taken at nameplate capacity, load hours never scale it
	input := testInput()
	input.Plant.LoadHours = 4000
	result, err := calculator.Compute(input)
	require.NoError(t, err)
	assert.Equal(t, 500000.0, result.Production.Value)
}

func TestCapitalRecoveryFactor(t *testing.T) {
	// the r=0 branch is the exact limit of the annuity formula
	assert.Equal(t, 0.04, capitalRecoveryFactor(0, 25))
	assert.InDelta(t, 0.09439, capitalRecoveryFactor(0.07, 20), 1e-4)
	assert.InDelta(t, 0.1, capitalRecoveryFactor(0.1, 1000), 1e-9)
}
