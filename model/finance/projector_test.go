package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	teacalc "github.com/greenfuels/teacalc"
)

func testProjection(tci, revenue, opex float64, rate teacalc.Fraction, lifetime int) (*teacalc.FinancialResult, []teacalc.Warning, error) {
	tea := &teacalc.TechnoEconomicResult{
		TCI:            teacalc.NewTraceable(tci, "USD", "", nil, nil),
		TotalOpex:      teacalc.NewTraceable(opex, "USD/yr", "", nil, nil),
		PrimaryRevenue: revenue,
	}
	in := &teacalc.ResolvedInput{
		Economics: teacalc.EconomicParameters{
			DiscountRate:  rate,
			LifetimeYears: lifetime,
		},
	}
	return NewProjector().Project(tea, in)
}

func TestProjectBreakevenNPV(t *testing.T) {
	// the classic two-year sanity check: -1000 at year 0, +1100 at year 1,
	// discounted at 10% nets out to exactly zero
	result, _, err := testProjection(1000, 1100, 0, 0.10, 1)
	require.NoError(t, err)

	require.Len(t, result.CashFlows, 2)
	assert.Equal(t, -1000.0, result.CashFlows[0].NetCashFlow)
	assert.Equal(t, 1100.0, result.CashFlows[1].NetCashFlow)
	assert.InDelta(t, 0.0, result.NPV, 1e-6)

	require.NotNil(t, result.IRR)
	assert.InDelta(t, 0.10, *result.IRR, 1e-6)
}

func TestProjectSchedule(t *testing.T) {
	result, warnings, err := testProjection(1e6, 500000, 280000, 0.07, 10)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, result.CashFlows, 11)

	year0 := result.CashFlows[0]
	assert.Equal(t, 0.0, year0.Revenue)
	assert.Equal(t, -1e6, year0.NetCashFlow)
	assert.Equal(t, 1.0, year0.DiscountFactor)
	assert.Equal(t, -1e6, year0.CumulativePV)

	year3 := result.CashFlows[3]
	assert.Equal(t, 500000.0, year3.Revenue)
	assert.Equal(t, 280000.0, year3.Opex)
	assert.Equal(t, 220000.0, year3.NetCashFlow)
	assert.InEpsilon(t, 1/(1.07*1.07*1.07), year3.DiscountFactor, 1e-12)
	assert.InEpsilon(t, 220000/(1.07*1.07*1.07), year3.PresentValue, 1e-12)

	assert.Equal(t, result.CashFlows[10].CumulativePV, result.NPV)
}

func TestProjectPaybackBoundary(t *testing.T) {
	// undiscounted: cumulative PV walks -1000000, -786000, ... and first
	// turns non-negative (+70000) at year 5
	result, _, err := testProjection(1e6, 214000, 0, 0, 5)
	require.NoError(t, err)

	assert.InDelta(t, 70000.0, result.CashFlows[5].CumulativePV, 1e-6)
	require.NotNil(t, result.PaybackYear)
	assert.Equal(t, 5, *result.PaybackYear)
}

func TestProjectPaybackNotAchieved(t *testing.T) {
	result, _, err := testProjection(1e6, 100000, 80000, 0.07, 10)
	require.NoError(t, err)
	assert.Nil(t, result.PaybackYear)
}

func TestProjectIRRUndefined(t *testing.T) {
	// opex exceeds revenue every year: the cash flows never change sign
	// and no IRR exists; that is a warning, not an error
	result, warnings, err := testProjection(1e6, 100000, 200000, 0.07, 10)
	require.NoError(t, err)

	assert.Nil(t, result.IRR)
	require.Len(t, warnings, 1)
	assert.Equal(t, teacalc.WarningIRRConvergence, warnings[0].Code)
}

func TestNetPresentValue(t *testing.T) {
	assert.InDelta(t, 0.0, NetPresentValue(0.10, []float64{-1000, 1100}), 1e-9)
	assert.Equal(t, 100.0, NetPresentValue(0, []float64{-1000, 1100}))
}

func TestInternalRateOfReturn(t *testing.T) {
	irr, found := InternalRateOfReturn([]float64{-1000, 1100})
	require.True(t, found)
	assert.InDelta(t, 0.10, irr, 1e-6)

	// a very profitable project still terminates within the bracket
	irr, found = InternalRateOfReturn([]float64{-100, 500, 500})
	require.True(t, found)
	assert.InDelta(t, 0.0, NetPresentValue(irr, []float64{-100, 500, 500}), 1e-3)

	_, found = InternalRateOfReturn([]float64{-1000, -100, -100})
	assert.False(t, found)
}
