// Package units owns the canonical unit system of the calculation engine.
// Every quantity family has one canonical base unit and a table of accepted
// synonyms with multiplicative conversion factors. The Registry is pure data
// constructed once and injected wherever units are interpreted; nothing in
// the package mutates it after construction.
package units

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	teacalc "github.com/greenfuels/teacalc"
)

// Family identifies a physical quantity family with its own canonical unit.
type Family string

const (
	Capacity         Family = "capacity"           // t/yr
	Density          Family = "density"            // kg/m3
	PricePerTonne    Family = "price_per_tonne"    // USD/t
	PricePerKilogram Family = "price_per_kilogram" // USD/kg
	PricePerKWh      Family = "price_per_kwh"      // USD/kWh
	CarbonPerMass    Family = "carbon_per_mass"    // gCO2/kg
	CarbonPerEnergy  Family = "carbon_per_energy"  // gCO2/kWh
	EnergyContent    Family = "energy_content"     // MJ/kg
	YieldMass        Family = "yield_mass"         // kg/kg
	YieldEnergy      Family = "yield_energy"       // kWh/kg
	PriceSensitivity Family = "price_sensitivity"  // USD/gCO2
	Currency         Family = "currency"           // USD
)

// Liters per US gallon and per oil barrel, used by volumetric capacities.
const (
	cubicMetersPerMillionGallons = 3785.411784
	cubicMetersPerBarrel         = 0.158987294928
)

// Conversion converts a synonym unit to its family canonical unit. For
// volumetric capacity units Factor yields cubic meters per year and the
// normalizer must additionally apply a liquid density.
type Conversion struct {
	Factor     float64
	Volumetric bool
}

// Registry maps (family, unit string) to conversion factors. Matching is
// case-insensitive and ignores internal spaces, underscores and hyphens, so
// "USD/MWh", "usd_mwh" and "usd-mwh" are the same unit.
type Registry struct {
	families  map[Family]map[string]Conversion
	canonical map[Family]string
}

// NewRegistry builds the default registry covering the fuel-pathway unit
// catalog.
func NewRegistry() *Registry {
	return &Registry{
		canonical: map[Family]string{
			Capacity:         "t/yr",
			Density:          "kg/m3",
			PricePerTonne:    "USD/t",
			PricePerKilogram: "USD/kg",
			PricePerKWh:      "USD/kWh",
			CarbonPerMass:    "gCO2/kg",
			CarbonPerEnergy:  "gCO2/kWh",
			EnergyContent:    "MJ/kg",
			YieldMass:        "kg/kg",
			YieldEnergy:      "kWh/kg",
			PriceSensitivity: "USD/gCO2",
			Currency:         "USD",
		},
		families: map[Family]map[string]Conversion{
			Capacity: {
				"t/yr":                {Factor: 1},
				"t/y":                 {Factor: 1},
				"t/a":                 {Factor: 1},
				"tpy":                 {Factor: 1},
				"tonnes/year":         {Factor: 1},
				"tonne/yr":            {Factor: 1},
				"kt/yr":               {Factor: 1000},
				"kt/y":                {Factor: 1000},
				"kt/a":                {Factor: 1000},
				"kta":                 {Factor: 1000},
				"kilotonnes/year":     {Factor: 1000},
				"mt/yr":               {Factor: 1e6},
				"milliongallons/yr":   {Factor: cubicMetersPerMillionGallons, Volumetric: true},
				"milliongallons/year": {Factor: cubicMetersPerMillionGallons, Volumetric: true},
				"mmgal/yr":            {Factor: cubicMetersPerMillionGallons, Volumetric: true},
				"mgpy":                {Factor: cubicMetersPerMillionGallons, Volumetric: true},
				"barrels/day":         {Factor: cubicMetersPerBarrel * 365, Volumetric: true},
				"bbl/day":             {Factor: cubicMetersPerBarrel * 365, Volumetric: true},
				"bbl/d":               {Factor: cubicMetersPerBarrel * 365, Volumetric: true},
				"bpd":                 {Factor: cubicMetersPerBarrel * 365, Volumetric: true},
			},
			Density: {
				"kg/m3":  {Factor: 1},
				"kg/m^3": {Factor: 1},
				"g/cm3":  {Factor: 1000},
				"g/cm^3": {Factor: 1000},
				"g/ml":   {Factor: 1000},
				"kg/l":   {Factor: 1000},
				"t/m3":   {Factor: 1000},
			},
			PricePerTonne: {
				"usd/t":     {Factor: 1},
				"$/t":       {Factor: 1},
				"usd/tonne": {Factor: 1},
				"usd/kg":    {Factor: 1000},
				"$/kg":      {Factor: 1000},
				"usd/kt":    {Factor: 0.001},
			},
			PricePerKilogram: {
				"usd/kg":    {Factor: 1},
				"$/kg":      {Factor: 1},
				"usd/g":     {Factor: 1000},
				"usd/t":     {Factor: 0.001},
				"usd/tonne": {Factor: 0.001},
			},
			PricePerKWh: {
				"usd/kwh": {Factor: 1},
				"$/kwh":   {Factor: 1},
				"usd/mwh": {Factor: 0.001},
				"$/mwh":   {Factor: 0.001},
				"usd/gj":  {Factor: 0.0036},
			},
			CarbonPerMass: {
				"gco2/kg":  {Factor: 1},
				"gco2e/kg": {Factor: 1},
				"g/kg":     {Factor: 1},
				"kgco2/t":  {Factor: 1}, // 1 kgCO2/t == 1 gCO2/kg
				"kgco2e/t": {Factor: 1},
				"kg/t":     {Factor: 1},
				"kgco2/kg": {Factor: 1000},
				"tco2/t":   {Factor: 1000},
			},
			CarbonPerEnergy: {
				"gco2/kwh":   {Factor: 1},
				"gco2e/kwh":  {Factor: 1},
				"kgco2/mwh":  {Factor: 1}, // 1 kgCO2/MWh == 1 gCO2/kWh
				"kgco2e/mwh": {Factor: 1},
				"gco2/mj":    {Factor: 3.6},
			},
			EnergyContent: {
				"mj/kg":  {Factor: 1},
				"gj/t":   {Factor: 1},
				"kj/g":   {Factor: 1},
				"kwh/kg": {Factor: 3.6},
				"mwh/t":  {Factor: 3.6},
			},
			YieldMass: {
				"kg/kg":       {Factor: 1},
				"t/t":         {Factor: 1},
				"ton/ton":     {Factor: 1},
				"tonne/tonne": {Factor: 1},
				"kg/t":        {Factor: 0.001},
				"g/kg":        {Factor: 0.001},
			},
			YieldEnergy: {
				"kwh/kg": {Factor: 1},
				"mwh/kg": {Factor: 1000},
				"mwh/t":  {Factor: 1},
				"kwh/t":  {Factor: 0.001},
			},
			PriceSensitivity: {
				"usd/gco2":  {Factor: 1},
				"$/gco2":    {Factor: 1},
				"usd/kgco2": {Factor: 0.001},
				"$/kgco2":   {Factor: 0.001},
				"usd/tco2":  {Factor: 1e-6},
			},
			Currency: {
				"usd":        {Factor: 1},
				"$":          {Factor: 1},
				"kusd":       {Factor: 1e3},
				"k$":         {Factor: 1e3},
				"musd":       {Factor: 1e6},
				"m$":         {Factor: 1e6},
				"millionusd": {Factor: 1e6},
			},
		},
	}
}

// Canonical returns the canonical base unit of a family.
func (r *Registry) Canonical(family Family) string {
	return r.canonical[family]
}

// Units lists the registered synonyms of a family, sorted.
func (r *Registry) Units(family Family) []string {
	synonyms := r.families[family]
	units := make([]string, 0, len(synonyms))
	for unit := range synonyms {
		units = append(units, unit)
	}
	sort.Strings(units)
	return units
}

// Conversion resolves a unit string within a family. An empty unit string
// means the caller already supplied the canonical unit. Unrecognized units
// yield a *teacalc.UnitError carrying fuzzy suggestions; the caller fills in
// the field name.
func (r *Registry) Conversion(family Family, unit string) (Conversion, error) {
	if unit == "" {
		return Conversion{Factor: 1}, nil
	}

	synonyms, found := r.families[family]
	if !found {
		return Conversion{}, &teacalc.UnitError{Unit: unit, Family: string(family)}
	}

	conversion, found := synonyms[canonicalKey(unit)]
	if !found {
		return Conversion{}, &teacalc.UnitError{
			Unit:        unit,
			Family:      string(family),
			Suggestions: r.suggest(family, unit),
		}
	}

	return conversion, nil
}

// Convert re-expresses a canonical-unit quantity in any registered synonym
// of its family. Volumetric capacity targets are rejected since the mass to
// volume relation is not invertible without a density.
func (r *Registry) Convert(q teacalc.Quantity, family Family, targetUnit string) (teacalc.Quantity, error) {
	conversion, err := r.Conversion(family, targetUnit)
	if err != nil {
		return teacalc.Quantity{}, err
	}
	if conversion.Volumetric {
		return teacalc.Quantity{}, &teacalc.ValidationError{
			Field:  string(family),
			Reason: "cannot convert to a volumetric unit without a density",
		}
	}

	return teacalc.Quantity{Value: q.Value / conversion.Factor, Unit: targetUnit}, nil
}

// suggest returns the closest registered synonyms for an unknown unit.
func (r *Registry) suggest(family Family, unit string) []string {
	ranks := fuzzy.RankFindNormalizedFold(canonicalKey(unit), r.Units(family))
	sort.Sort(ranks)

	suggestions := make([]string, 0, 3)
	for _, rank := range ranks {
		suggestions = append(suggestions, rank.Target)
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions
}

// canonicalKey lowercases a unit string and strips spaces, underscores and
// hyphens so spelling variants collapse to one table key.
func canonicalKey(unit string) string {
	key := strings.ToLower(unit)
	key = strings.ReplaceAll(key, " ", "")
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	return key
}
