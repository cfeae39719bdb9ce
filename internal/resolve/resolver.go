// Package resolve assembles the fully-normalized input model the calculation
// engine works from. It is the only place where alternate field spellings
// and raw unit strings are interpreted; everything it returns is canonical.
package resolve

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gonum.org/v1/gonum/floats"

	teacalc "github.com/greenfuels/teacalc"
	"github.com/greenfuels/teacalc/internal/refdata"
	"github.com/greenfuels/teacalc/internal/units"
)

// yieldSumTolerance is the allowed deviation of the product yield sum from
// unity before a mass-fraction warning is raised.
const yieldSumTolerance = 1e-3

// Resolver normalizes raw input documents. The reference-data provider is
// optional; without it process types are not validated and no catalog
// defaulting happens.
type Resolver struct {
	normalizer *units.Normalizer
	refdata    refdata.Provider
}

func NewResolver(normalizer *units.Normalizer, provider refdata.Provider) *Resolver {
	return &Resolver{
		normalizer: normalizer,
		refdata:    provider,
	}
}

// Resolve decodes, normalizes and validates one raw input document. Hard
// failures return a nil model: the resolver never hands back partially
// normalized input. Mass fractions not summing to 100% is a warning, not a
// failure, since the calculator works from yields directly.
func (r *Resolver) Resolve(ctx context.Context, source map[string]any) (*teacalc.ResolvedInput, []teacalc.Warning, error) {
	raw := new(rawInput)
	if err := decode(source, raw); err != nil {
		return nil, nil, &teacalc.ValidationError{Field: "input", Reason: err.Error()}
	}

	var warnings []teacalc.Warning

	plant, err := r.resolvePlant(ctx, raw.Plant)
	if err != nil {
		return nil, nil, err
	}

	feedstocks, err := r.resolveFeedstocks(ctx, raw.Feedstocks)
	if err != nil {
		return nil, nil, err
	}

	utilities, err := r.resolveUtilities(raw.Utilities)
	if err != nil {
		return nil, nil, err
	}

	products, productWarnings, err := r.resolveProducts(raw.Products)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, productWarnings...)

	economics, err := r.resolveEconomics(raw.Economics, plant.LiquidDensity)
	if err != nil {
		return nil, nil, err
	}

	return &teacalc.ResolvedInput{
		Plant:      *plant,
		Feedstocks: feedstocks,
		Utilities:  utilities,
		Products:   products,
		Economics:  *economics,
	}, warnings, nil
}

func (r *Resolver) resolvePlant(ctx context.Context, raw rawPlant) (*teacalc.Plant, error) {
	density, err := r.normalizer.Normalize("plant.liquid_density", value(raw.LiquidDensity), unit(raw.LiquidDensity), units.Density)
	if err != nil {
		return nil, err
	}

	capacity, err := r.normalizer.NormalizeCapacity("plant.capacity", raw.Capacity.Value, raw.Capacity.Unit, density)
	if err != nil {
		return nil, err
	}
	if capacity == nil {
		return nil, &teacalc.ValidationError{Field: "plant.capacity", Reason: "required"}
	}

	loadHours := 8760.0
	if raw.LoadHours != nil {
		loadHours = *raw.LoadHours
		if math.IsNaN(loadHours) || math.IsInf(loadHours, 0) {
			return nil, &teacalc.ValidationError{Field: "plant.load_hours", Reason: "value is not a finite number"}
		}
		if loadHours < 0 || loadHours > 8760 {
			return nil, &teacalc.ValidationError{Field: "plant.load_hours", Reason: "must be between 0 and 8760"}
		}
	}

	processCI := 0.0
	if raw.ProcessCarbonIntensity != nil {
		processCI = *raw.ProcessCarbonIntensity
		if math.IsNaN(processCI) || math.IsInf(processCI, 0) {
			return nil, &teacalc.ValidationError{Field: "plant.process_carbon_intensity", Reason: "value is not a finite number"}
		}
	}

	if r.refdata != nil && raw.ProcessType != "" {
		tech, known, err := r.refdata.ProcessTechnology(ctx, raw.ProcessType)
		if err != nil {
			return nil, fmt.Errorf("reference data lookup failed: %w", err)
		}
		if !known {
			return nil, &teacalc.ValidationError{
				Field:  "plant.process_type",
				Reason: fmt.Sprintf("unknown process technology %q", raw.ProcessType),
			}
		}
		if raw.ProcessCarbonIntensity == nil {
			processCI = tech.DefaultCarbonIntensity
		}
	}

	return &teacalc.Plant{
		Capacity:               *capacity,
		LoadHours:              loadHours,
		ProcessCarbonIntensity: processCI,
		ProcessType:            raw.ProcessType,
		LiquidDensity:          density,
	}, nil
}

func (r *Resolver) resolveFeedstocks(ctx context.Context, raws []rawFeedstock) ([]teacalc.Feedstock, error) {
	if len(raws) == 0 {
		return nil, &teacalc.ValidationError{Field: "feedstocks", Reason: "at least one feedstock is required"}
	}

	feedstocks := make([]teacalc.Feedstock, 0, len(raws))
	for i, raw := range raws {
		field := func(name string) string { return fmt.Sprintf("feedstocks[%d].%s", i, name) }

		var defaults refdata.FeedstockDefaults
		var hasDefaults bool
		if r.refdata != nil && raw.Name != "" {
			var err error
			defaults, hasDefaults, err = r.refdata.Feedstock(ctx, raw.Name)
			if err != nil {
				return nil, fmt.Errorf("reference data lookup failed: %w", err)
			}
		}

		price, err := r.require(field("price"), raw.Price, units.PricePerTonne)
		if err != nil {
			return nil, err
		}

		yield, err := r.require(field("yield"), raw.Yield, units.YieldMass)
		if err != nil {
			return nil, err
		}

		carbonContent, err := r.fraction(field("carbon_content"), raw.CarbonContent)
		if err != nil {
			return nil, err
		}
		if raw.CarbonContent == nil {
			if !hasDefaults {
				return nil, &teacalc.ValidationError{Field: field("carbon_content"), Reason: "required (no catalog default for this feedstock)"}
			}
			carbonContent = teacalc.Fraction(defaults.DefaultCarbonContent)
		}

		carbonIntensity, err := r.normalizer.Normalize(field("carbon_intensity"), value(raw.CarbonIntensity), unit(raw.CarbonIntensity), units.CarbonPerMass)
		if err != nil {
			return nil, err
		}
		if carbonIntensity == nil {
			if !hasDefaults {
				return nil, &teacalc.ValidationError{Field: field("carbon_intensity"), Reason: "required (no catalog default for this feedstock)"}
			}
			carbonIntensity = &teacalc.Quantity{Value: defaults.DefaultCarbonIntensity, Unit: "gCO2/kg"}
		}

		energyContent, err := r.normalizer.Normalize(field("energy_content"), value(raw.EnergyContent), unit(raw.EnergyContent), units.EnergyContent)
		if err != nil {
			return nil, err
		}
		if energyContent == nil {
			energy := 0.0
			if hasDefaults {
				energy = defaults.DefaultEnergyContent
			}
			energyContent = &teacalc.Quantity{Value: energy, Unit: "MJ/kg"}
		}

		feedstocks = append(feedstocks, teacalc.Feedstock{
			Name:            raw.Name,
			Price:           *price,
			CarbonContent:   carbonContent,
			CarbonIntensity: *carbonIntensity,
			EnergyContent:   *energyContent,
			Yield:           *yield,
		})
	}

	return feedstocks, nil
}

func (r *Resolver) resolveUtilities(raws []rawUtility) ([]teacalc.Utility, error) {
	utilities := make([]teacalc.Utility, 0, len(raws))
	for i, raw := range raws {
		field := func(name string) string { return fmt.Sprintf("utilities[%d].%s", i, name) }

		basis, yield, err := r.resolveUtilityYield(field("yield"), raw.Yield)
		if err != nil {
			return nil, err
		}

		priceFamily, carbonFamily := units.PricePerKilogram, units.CarbonPerMass
		if basis == teacalc.BasisEnergy {
			priceFamily, carbonFamily = units.PricePerKWh, units.CarbonPerEnergy
		}

		price, err := r.require(field("price"), raw.Price, priceFamily)
		if err != nil {
			return nil, err
		}

		// nil stays nil: zero-emission utilities omit their carbon intensity
		carbonIntensity, err := r.normalizer.Normalize(field("carbon_intensity"), value(raw.CarbonIntensity), unit(raw.CarbonIntensity), carbonFamily)
		if err != nil {
			return nil, err
		}

		utilities = append(utilities, teacalc.Utility{
			Name:            raw.Name,
			Basis:           basis,
			Price:           *price,
			Yield:           *yield,
			CarbonIntensity: carbonIntensity,
		})
	}

	return utilities, nil
}

// resolveUtilityYield infers the metering basis of a utility from the unit
// family of its yield: kg/kg style units make a mass stream, kWh/kg style
// units an energy stream. An empty unit defaults to the mass basis.
func (r *Resolver) resolveUtilityYield(field string, raw rawQuantity) (teacalc.UtilityBasis, *teacalc.Quantity, error) {
	if raw.Value == nil {
		return "", nil, &teacalc.ValidationError{Field: field, Reason: "required"}
	}

	yield, err := r.normalizer.Normalize(field, raw.Value, raw.Unit, units.YieldMass)
	if err == nil {
		return teacalc.BasisMass, yield, nil
	}
	if _, isUnit := err.(*teacalc.UnitError); !isUnit {
		return "", nil, err
	}

	yield, energyErr := r.normalizer.Normalize(field, raw.Value, raw.Unit, units.YieldEnergy)
	if energyErr == nil {
		return teacalc.BasisEnergy, yield, nil
	}

	// neither family recognizes the unit; report against the mass family,
	// whose suggestions cover the common case
	return "", nil, err
}

func (r *Resolver) resolveProducts(raws []rawProduct) ([]teacalc.Product, []teacalc.Warning, error) {
	if len(raws) == 0 {
		return nil, nil, &teacalc.ValidationError{Field: "products", Reason: "product list must not be empty"}
	}

	products := make([]teacalc.Product, 0, len(raws))
	yields := make([]float64, 0, len(raws))
	for i, raw := range raws {
		field := func(name string) string { return fmt.Sprintf("products[%d].%s", i, name) }

		price, err := r.require(field("price"), raw.Price, units.PricePerTonne)
		if err != nil {
			return nil, nil, err
		}

		yield, err := r.require(field("yield"), raw.Yield, units.YieldMass)
		if err != nil {
			return nil, nil, err
		}
		if yield.Value <= 0 {
			return nil, nil, &teacalc.ValidationError{Field: field("yield"), Reason: "must be positive"}
		}

		sensitivity, err := r.normalizer.Normalize(field("price_sensitivity"), value(raw.PriceSensitivity), unit(raw.PriceSensitivity), units.PriceSensitivity)
		if err != nil {
			return nil, nil, err
		}

		carbonContent, err := r.fraction(field("carbon_content"), raw.CarbonContent)
		if err != nil {
			return nil, nil, err
		}

		energyContent, err := r.normalizer.Normalize(field("energy_content"), value(raw.EnergyContent), unit(raw.EnergyContent), units.EnergyContent)
		if err != nil {
			return nil, nil, err
		}
		if energyContent == nil {
			energyContent = &teacalc.Quantity{Value: 0, Unit: "MJ/kg"}
		}

		density, err := r.normalizer.Normalize(field("density"), value(raw.Density), unit(raw.Density), units.Density)
		if err != nil {
			return nil, nil, err
		}

		products = append(products, teacalc.Product{
			Name:             raw.Name,
			Price:            *price,
			PriceSensitivity: sensitivity,
			CarbonContent:    carbonContent,
			EnergyContent:    *energyContent,
			Density:          density,
			Yield:            *yield,
		})
		yields = append(yields, yield.Value)
	}

	// mass fractions derive from each yield's share of the yield sum
	yieldSum := floats.Sum(yields)
	for i := range products {
		products[i].MassFraction = yields[i] / yieldSum * 100
	}

	var warnings []teacalc.Warning
	if math.Abs(yieldSum-1) > yieldSumTolerance {
		warnings = append(warnings, teacalc.Warning{
			Code:  teacalc.WarningMassFraction,
			Field: "products",
			Message: fmt.Sprintf("product yields sum to %.1f%% of fuel mass, not 100%%; mass fractions were derived proportionally and the calculation uses yields directly",
				yieldSum*100),
		})
	}

	return products, warnings, nil
}

func (r *Resolver) resolveEconomics(raw rawEconomics, density *teacalc.Quantity) (*teacalc.EconomicParameters, error) {
	if raw.DiscountRate == nil {
		return nil, &teacalc.ValidationError{Field: "economics.discount_rate", Reason: "required"}
	}
	discountRate, err := r.fraction("economics.discount_rate", raw.DiscountRate)
	if err != nil {
		return nil, err
	}
	if discountRate < 0 {
		return nil, &teacalc.ValidationError{Field: "economics.discount_rate", Reason: "must not be negative"}
	}

	if raw.Lifetime == nil || *raw.Lifetime <= 0 {
		return nil, &teacalc.ValidationError{Field: "economics.lifetime", Reason: "must be a positive number of years"}
	}

	referenceTCI, err := r.require("economics.reference_tci", raw.ReferenceTCI, units.Currency)
	if err != nil {
		return nil, err
	}

	if raw.ScalingExponent == nil {
		return nil, &teacalc.ValidationError{Field: "economics.scaling_exponent", Reason: "required"}
	}
	exponent := float64(units.NormalizeFraction(*raw.ScalingExponent))
	if math.IsNaN(exponent) || exponent <= 0 || exponent > 1 {
		return nil, &teacalc.ValidationError{Field: "economics.scaling_exponent", Reason: "must be in (0, 1]"}
	}

	referenceCapacity, err := r.normalizer.NormalizeCapacity("economics.reference_capacity", raw.ReferenceCapacity.Value, raw.ReferenceCapacity.Unit, density)
	if err != nil {
		return nil, err
	}
	if referenceCapacity == nil {
		return nil, &teacalc.ValidationError{Field: "economics.reference_capacity", Reason: "required"}
	}

	workingCapital, err := r.fraction("economics.working_capital_ratio", raw.WorkingCapitalRatio)
	if err != nil {
		return nil, err
	}

	indirectOpex, err := r.fraction("economics.indirect_opex_ratio", raw.IndirectOpexRatio)
	if err != nil {
		return nil, err
	}

	return &teacalc.EconomicParameters{
		DiscountRate:        discountRate,
		LifetimeYears:       *raw.Lifetime,
		ReferenceTCI:        *referenceTCI,
		ScalingExponent:     exponent,
		ReferenceCapacity:   *referenceCapacity,
		WorkingCapitalRatio: workingCapital,
		IndirectOpexRatio:   indirectOpex,
	}, nil
}

// require normalizes a quantity that must be present.
func (r *Resolver) require(field string, raw rawQuantity, family units.Family) (*teacalc.Quantity, error) {
	q, err := r.normalizer.Normalize(field, raw.Value, raw.Unit, family)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, &teacalc.ValidationError{Field: field, Reason: "required"}
	}
	return q, nil
}

// fraction validates and normalizes a dimensionless ratio, applying the
// percentage rule. A nil value resolves to zero.
func (r *Resolver) fraction(field string, v *float64) (teacalc.Fraction, error) {
	if v == nil {
		return 0, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, &teacalc.ValidationError{Field: field, Reason: "value is not a finite number"}
	}
	return units.NormalizeFraction(*v), nil
}

func value(raw *rawQuantity) *float64 {
	if raw == nil {
		return nil
	}
	return raw.Value
}

func unit(raw *rawQuantity) string {
	if raw == nil {
		return ""
	}
	return raw.Unit
}

// decode maps the canonicalized source document onto the raw input structs.
// Numeric strings are accepted for numeric fields.
func decode(source map[string]any, target *rawInput) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(canonicalizeKeys(source))
}

// canonicalizeKeys rewrites every map key to its canonical spelling:
// lowercased, spaces/underscores/hyphens stripped, aliases resolved.
func canonicalizeKeys(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			canonical := strings.ToLower(key)
			canonical = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(canonical)
			if alias, found := keyAliases[canonical]; found {
				canonical = alias
			}
			out[canonical] = canonicalizeKeys(value)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = canonicalizeKeys(item)
		}
		return out
	default:
		return v
	}
}
