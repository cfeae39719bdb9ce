// Package tea implements the techno-economic calculation model: capital
// investment scaling, operating costs, the carbon ledger and the levelized
// cost of production. All inputs are canonical-unit quantities produced by
// the resolver; no unit strings are interpreted here.
package tea

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	teacalc "github.com/greenfuels/teacalc"
)

const (
	gramsPerTonne     = 1e6
	kilogramsPerTonne = 1e3
)

type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute runs the full techno-economic model on one resolved input.
//
// Production is taken at nameplate capacity: load hours bound feasible
// utilization but do not scale throughput. The carbon intensity canonical
// form is grams CO2 per kilogram of product; a per-energy figure is derived
// when the primary product declares an energy content.
func (c *Calculator) Compute(in *teacalc.ResolvedInput) (*teacalc.TechnoEconomicResult, error) {
	production := in.Plant.Capacity.Value
	if production <= 0 {
		return nil, &teacalc.CalculationError{Op: "production", Reason: "production volume must be positive"}
	}

	economics := in.Economics
	if economics.ReferenceCapacity.Value <= 0 {
		return nil, &teacalc.CalculationError{Op: "tci", Reason: "reference capacity must be positive"}
	}
	if economics.ReferenceTCI.Value < 0 {
		return nil, &teacalc.CalculationError{Op: "tci", Reason: "reference TCI must not be negative"}
	}
	if economics.DiscountRate < 0 {
		return nil, &teacalc.CalculationError{Op: "crf", Reason: "discount rate must not be negative"}
	}
	if economics.LifetimeYears <= 0 {
		return nil, &teacalc.CalculationError{Op: "crf", Reason: "project lifetime must be positive"}
	}

	// six-tenths-rule power-law scaling from the reference plant
	scalingRatio := math.Pow(production/economics.ReferenceCapacity.Value, economics.ScalingExponent)
	scaledCapital := economics.ReferenceTCI.Value * scalingRatio
	workingCapital := scaledCapital * float64(economics.WorkingCapitalRatio)
	tci := scaledCapital + workingCapital

	streams, err := c.streams(in, production)
	if err != nil {
		return nil, err
	}

	costs := make([]float64, 0, len(streams))
	emissions := make([]float64, 0, len(streams)+1)
	for _, stream := range streams {
		costs = append(costs, stream.Cost.Value)
		emissions = append(emissions, stream.Emissions.Value)
	}
	directOpex := floats.Sum(costs)

	indirectOpex := tci * float64(economics.IndirectOpexRatio)
	totalOpex := directOpex + indirectOpex

	processEmissions := c.processEmissions(in, production)
	streams = append(streams, processEmissions)
	emissions = append(emissions, processEmissions.Emissions.Value)
	totalCO2 := floats.Sum(emissions)

	crf := capitalRecoveryFactor(float64(economics.DiscountRate), economics.LifetimeYears)
	annualizedCapital := tci * crf

	primaryRevenue, byproductRevenue := c.revenues(in, production, totalCO2)

	lcop := (annualizedCapital + totalOpex - byproductRevenue) / production

	carbonIntensity := totalCO2 * gramsPerTonne / (production * kilogramsPerTonne)

	var carbonIntensityEnergy *teacalc.Quantity
	if energy := in.PrimaryProduct().EnergyContent.Value; energy > 0 {
		carbonIntensityEnergy = &teacalc.Quantity{
			Value: totalCO2 * gramsPerTonne / (production * kilogramsPerTonne * energy),
			Unit:  "gCO2/MJ",
		}
	}

	return &teacalc.TechnoEconomicResult{
		Production:                 teacalc.Quantity{Value: production, Unit: "t/yr"},
		TCI:                        c.traceTCI(scaledCapital, workingCapital, tci, economics),
		CapitalRecovery:            crf,
		AnnualizedCapital:          annualizedCapital,
		Streams:                    streams,
		DirectOpex:                 directOpex,
		IndirectOpex:               indirectOpex,
		TotalOpex:                  c.traceTotalOpex(streams[:len(streams)-1], indirectOpex, totalOpex),
		PrimaryRevenue:             primaryRevenue,
		ByproductRevenue:           byproductRevenue,
		TotalCO2:                   teacalc.Quantity{Value: totalCO2, Unit: "tCO2/yr"},
		CarbonIntensity:            teacalc.Quantity{Value: carbonIntensity, Unit: "gCO2/kg"},
		CarbonIntensityEnergy:      carbonIntensityEnergy,
		CarbonConversionEfficiency: c.carbonConversionEfficiency(in, production),
		LCOP:                       c.traceLCOP(in, streams[:len(streams)-1], annualizedCapital, indirectOpex, byproductRevenue, production, lcop),
	}, nil
}

// streams builds the per-stream consumption, cost and emission ledger for
// every input stream. Consumption units follow the stream basis: feedstocks
// in t/yr, mass utilities in kg/yr, energy utilities in kWh/yr.
func (c *Calculator) streams(in *teacalc.ResolvedInput, production float64) ([]teacalc.StreamResult, error) {
	streams := make([]teacalc.StreamResult, 0, len(in.Feedstocks)+len(in.Utilities)+1)

	for _, feedstock := range in.Feedstocks {
		consumption := production * feedstock.Yield.Value
		streams = append(streams, teacalc.StreamResult{
			Name:        feedstock.Name,
			Consumption: teacalc.Quantity{Value: consumption, Unit: "t/yr"},
			Cost:        teacalc.Quantity{Value: consumption * feedstock.Price.Value, Unit: "USD/yr"},
			Emissions: teacalc.Quantity{
				// t/yr x 1000 kg/t x gCO2/kg / 1e6 g/t
				Value: consumption * kilogramsPerTonne * feedstock.CarbonIntensity.Value / gramsPerTonne,
				Unit:  "tCO2/yr",
			},
		})
	}

	for _, utility := range in.Utilities {
		var consumption float64
		var consumptionUnit string
		switch utility.Basis {
		case teacalc.BasisMass:
			consumption = production * kilogramsPerTonne * utility.Yield.Value
			consumptionUnit = "kg/yr"
		case teacalc.BasisEnergy:
			consumption = production * kilogramsPerTonne * utility.Yield.Value
			consumptionUnit = "kWh/yr"
		default:
			return nil, &teacalc.CalculationError{
				Op:     "consumption",
				Reason: fmt.Sprintf("utility %q has unknown basis %q", utility.Name, utility.Basis),
			}
		}

		carbonIntensity := 0.0
		if utility.CarbonIntensity != nil {
			carbonIntensity = utility.CarbonIntensity.Value
		}

		streams = append(streams, teacalc.StreamResult{
			Name:        utility.Name,
			Consumption: teacalc.Quantity{Value: consumption, Unit: consumptionUnit},
			Cost:        teacalc.Quantity{Value: consumption * utility.Price.Value, Unit: "USD/yr"},
			Emissions: teacalc.Quantity{
				Value: consumption * carbonIntensity / gramsPerTonne,
				Unit:  "tCO2/yr",
			},
		})
	}

	return streams, nil
}

// processEmissions converts the plant process emission factor (gCO2 per MJ
// of product) into an annual emission stream using the primary product
// energy content.
func (c *Calculator) processEmissions(in *teacalc.ResolvedInput, production float64) teacalc.StreamResult {
	energyOutput := production * kilogramsPerTonne * in.PrimaryProduct().EnergyContent.Value // MJ/yr
	return teacalc.StreamResult{
		Name:        "process",
		Consumption: teacalc.Quantity{Value: energyOutput, Unit: "MJ/yr"},
		Cost:        teacalc.Quantity{Value: 0, Unit: "USD/yr"},
		Emissions: teacalc.Quantity{
			Value: energyOutput * in.Plant.ProcessCarbonIntensity / gramsPerTonne,
			Unit:  "tCO2/yr",
		},
	}
}

// revenues computes the annual primary and byproduct revenue. A product's
// effective price includes its carbon price sensitivity applied to the
// plant-level carbon intensity.
func (c *Calculator) revenues(in *teacalc.ResolvedInput, production, totalCO2 float64) (primary, byproduct float64) {
	carbonIntensity := totalCO2 * gramsPerTonne / (production * kilogramsPerTonne) // gCO2/kg

	for i, product := range in.Products {
		tonnage := product.MassFraction / 100 * production
		price := product.Price.Value
		if product.PriceSensitivity != nil {
			// USD/gCO2 x gCO2/kg x 1000 kg/t = USD/t adjustment
			price += product.PriceSensitivity.Value * carbonIntensity * kilogramsPerTonne
		}
		if i == 0 {
			primary = tonnage * price
			continue
		}
		byproduct += tonnage * price
	}

	return primary, byproduct
}

// carbonConversionEfficiency is the share of feed carbon retained in the
// product slate, in percent. With zero feed carbon the figure is undefined
// (NaN); the serialization boundary collapses and flags it.
func (c *Calculator) carbonConversionEfficiency(in *teacalc.ResolvedInput, production float64) float64 {
	carbonIn := 0.0
	for _, feedstock := range in.Feedstocks {
		carbonIn += production * feedstock.Yield.Value * float64(feedstock.CarbonContent)
	}

	carbonOut := 0.0
	for _, product := range in.Products {
		carbonOut += product.MassFraction / 100 * production * float64(product.CarbonContent)
	}

	return carbonOut / carbonIn * 100
}

// capitalRecoveryFactor is the annuity factor converting present capital
// into a uniform annual payment. The r=0 branch is the exact limit of the
// annuity formula as r approaches zero.
func capitalRecoveryFactor(rate float64, years int) float64 {
	if rate == 0 {
		return 1 / float64(years)
	}

	compound := math.Pow(1+rate, float64(years))
	return rate * compound / (compound - 1)
}

func (c *Calculator) traceTCI(scaledCapital, workingCapital, tci float64, economics teacalc.EconomicParameters) teacalc.TraceableValue {
	return teacalc.NewTraceable(tci, "USD",
		"TCI = TCI_ref x (capacity / capacity_ref)^exponent x (1 + working_capital_ratio)",
		[]teacalc.Component{
			{Name: "scaled_base_capital", Value: scaledCapital, Unit: "USD",
				Description: "reference TCI scaled by the capacity ratio power law"},
			{Name: "working_capital", Value: workingCapital, Unit: "USD",
				Description: "working capital as a share of the scaled base capital"},
		},
		map[string]string{
			"scaling_exponent": fmt.Sprintf("%g", economics.ScalingExponent),
		})
}

func (c *Calculator) traceTotalOpex(streams []teacalc.StreamResult, indirectOpex, totalOpex float64) teacalc.TraceableValue {
	components := make([]teacalc.Component, 0, len(streams)+1)
	for _, stream := range streams {
		components = append(components, teacalc.Component{
			Name:        stream.Name,
			Value:       stream.Cost.Value,
			Unit:        "USD/yr",
			Description: "annual stream cost (consumption x price)",
		})
	}
	components = append(components, teacalc.Component{
		Name:        "indirect",
		Value:       indirectOpex,
		Unit:        "USD/yr",
		Description: "indirect opex as a share of TCI",
	})

	return teacalc.NewTraceable(totalOpex, "USD/yr",
		"total_opex = sum(stream costs) + TCI x indirect_opex_ratio",
		components, nil)
}

func (c *Calculator) traceLCOP(in *teacalc.ResolvedInput, streams []teacalc.StreamResult, annualizedCapital, indirectOpex, byproductRevenue, production, lcop float64) teacalc.TraceableValue {
	components := make([]teacalc.Component, 0, len(streams)+3)
	components = append(components, teacalc.Component{
		Name:        "capital",
		Value:       annualizedCapital / production,
		Unit:        "USD/t",
		Description: "annualized capital (TCI x CRF) per tonne",
	})
	for _, stream := range streams {
		components = append(components, teacalc.Component{
			Name:        stream.Name,
			Value:       stream.Cost.Value / production,
			Unit:        "USD/t",
			Description: "stream cost per tonne",
		})
	}
	components = append(components, teacalc.Component{
		Name:        "indirect",
		Value:       indirectOpex / production,
		Unit:        "USD/t",
		Description: "indirect opex per tonne",
	})
	if byproductRevenue != 0 {
		components = append(components, teacalc.Component{
			Name:        "byproduct_credit",
			Value:       -byproductRevenue / production,
			Unit:        "USD/t",
			Description: "byproduct revenue credited against the primary product",
		})
	}

	return teacalc.NewTraceable(lcop, "USD/t",
		"LCOP = (annualized_capital + total_opex - byproduct_revenue) / production",
		components,
		map[string]string{"primary_product": in.PrimaryProduct().Name})
}
