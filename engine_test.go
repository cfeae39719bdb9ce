package teacalc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	teacalc "github.com/greenfuels/teacalc"
	"github.com/greenfuels/teacalc/internal/refdata"
	"github.com/greenfuels/teacalc/internal/resolve"
	"github.com/greenfuels/teacalc/internal/units"
	"github.com/greenfuels/teacalc/model/finance"
	"github.com/greenfuels/teacalc/model/tea"
)

func newTestEngine() *teacalc.Engine {
	normalizer := units.NewNormalizer(units.NewRegistry())
	return teacalc.NewEngine(
		teacalc.WithResolver(resolve.NewResolver(normalizer, refdata.NewEmbedded())),
		teacalc.WithCalculator(tea.NewCalculator()),
		teacalc.WithProjector(finance.NewProjector()),
	)
}

func scenario() map[string]any {
	return map[string]any{
		"plant": map[string]any{
			"capacity":                 map[string]any{"value": 500, "unit": "KTA"},
			"load_hours":               8000,
			"process_type":             "HEFA",
			"process_carbon_intensity": 10,
		},
		"feedstocks": []any{
			map[string]any{
				"name":  "used cooking oil",
				"price": map[string]any{"value": 800, "unit": "USD/t"},
				"yield": map[string]any{"value": 1.2, "unit": "kg/kg"},
			},
		},
		"utilities": []any{
			map[string]any{
				"name":             "hydrogen",
				"price":            map[string]any{"value": 3, "unit": "USD/kg"},
				"yield":            map[string]any{"value": 0.04, "unit": "kg/kg"},
				"carbon_intensity": map[string]any{"value": 9, "unit": "kgCO2/kg"},
			},
			map[string]any{
				"name":             "electricity",
				"price":            map[string]any{"value": 60, "unit": "USD/MWh"},
				"yield":            map[string]any{"value": 0.5, "unit": "kWh/kg"},
				"carbon_intensity": map[string]any{"value": 400, "unit": "gCO2/kWh"},
			},
		},
		"products": []any{
			map[string]any{
				"name":           "jet fuel",
				"price":          map[string]any{"value": 2000, "unit": "USD/t"},
				"carbon_content": 0.85,
				"energy_content": map[string]any{"value": 43.2, "unit": "MJ/kg"},
				"yield":          map[string]any{"value": 0.6, "unit": "kg/kg"},
			},
			map[string]any{
				"name":           "naphtha",
				"price":          map[string]any{"value": 700, "unit": "USD/t"},
				"carbon_content": 0.84,
				"yield":          map[string]any{"value": 0.25, "unit": "kg/kg"},
			},
			map[string]any{
				"name":           "lpg",
				"price":          map[string]any{"value": 600, "unit": "USD/t"},
				"carbon_content": 0.82,
				"yield":          map[string]any{"value": 0.15, "unit": "kg/kg"},
			},
		},
		"economics": map[string]any{
			"discount_rate":         0.07,
			"lifetime":              20,
			"reference_tci":         map[string]any{"value": 400, "unit": "MUSD"},
			"scaling_exponent":      0.6,
			"reference_capacity":    map[string]any{"value": 500, "unit": "KTA"},
			"working_capital_ratio": 0.15,
			"indirect_opex_ratio":   0.04,
		},
	}
}

func TestCalculateEndToEnd(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.Calculate(context.Background(), scenario())
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Empty(t, result.Warnings)

	economics := result.TechnoEconomics
	// 500 KTA resolves to 500,000 t/yr; the capacity matches the
	// reference so the scaling ratio is 1 and a 15% working-capital
	// ratio puts TCI at 460 MUSD
	assert.Equal(t, 500000.0, economics.Production.Value)
	assert.InDelta(t, 460e6, economics.TCI.Value, 1)
	assert.True(t, economics.TCI.Reconciles(1e-9))
	assert.True(t, economics.TotalOpex.Reconciles(1e-9))
	assert.True(t, economics.LCOP.Reconciles(1e-6))
	assert.Equal(t, result.ID, economics.LCOP.Metadata["calculation"])

	fin := result.Financials
	require.Len(t, fin.CashFlows, 21)
	assert.InDelta(t, -460e6, fin.CashFlows[0].NetCashFlow, 1)
	// revenue at these prices comfortably clears opex
	require.NotNil(t, fin.IRR)
	assert.Greater(t, *fin.IRR, 0.0)
	require.NotNil(t, fin.PaybackYear)

	assert.Equal(t, "jet fuel", result.ResolvedInputs.PrimaryProduct().Name)
}

func TestCalculateUnknownUnitFailsWholeCall(t *testing.T) {
	engine := newTestEngine()

	source := scenario()
	source["economics"].(map[string]any)["reference_tci"] = map[string]any{"value": 400, "unit": "doubloons"}

	result, err := engine.Calculate(context.Background(), source)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.IsType(t, &teacalc.UnitError{}, err)
}

func TestCalculateMassFractionWarningSurfaces(t *testing.T) {
	engine := newTestEngine()

	source := scenario()
	source["products"] = []any{
		map[string]any{
			"name":  "jet fuel",
			"price": map[string]any{"value": 1500, "unit": "USD/t"},
			"yield": map[string]any{"value": 0.4, "unit": "kg/kg"},
		},
		map[string]any{
			"name":  "naphtha",
			"price": map[string]any{"value": 700, "unit": "USD/t"},
			"yield": map[string]any{"value": 0.2, "unit": "kg/kg"},
		},
	}

	result, err := engine.Calculate(context.Background(), source)
	require.NoError(t, err)

	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, teacalc.WarningMassFraction, result.Warnings[0].Code)
}
