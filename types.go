package teacalc

// UtilityBasis tells how a utility stream is metered. It is derived from the
// unit family of the utility's yield during resolution.
type UtilityBasis string

const (
	// BasisMass meters the utility in kilograms (e.g. hydrogen).
	BasisMass UtilityBasis = "mass"
	// BasisEnergy meters the utility in kilowatt-hours (e.g. electricity).
	BasisEnergy UtilityBasis = "energy"
)

// Plant describes the production facility. Capacity is canonical t/yr.
type Plant struct {
	Capacity Quantity `json:"capacity"`
	// LoadHours is the annual operating time, 0..8760. It does not scale
	// nameplate production; see tea.Calculator.
	LoadHours float64 `json:"load_hours"`
	// ProcessCarbonIntensity is the process emission factor in gCO2/MJ.
	ProcessCarbonIntensity float64 `json:"process_carbon_intensity"`
	ProcessType            string  `json:"process_type"`
	// LiquidDensity (kg/m3) is only present when the capacity was supplied
	// in a volumetric unit.
	LiquidDensity *Quantity `json:"liquid_density,omitempty"`
}

// Feedstock is a mass input stream. Price USD/t, carbon intensity gCO2/kg,
// energy content MJ/kg, yield kg feedstock per kg fuel.
type Feedstock struct {
	Name            string   `json:"name"`
	Price           Quantity `json:"price"`
	CarbonContent   Fraction `json:"carbon_content"`
	CarbonIntensity Quantity `json:"carbon_intensity"`
	EnergyContent   Quantity `json:"energy_content"`
	Yield           Quantity `json:"yield"`
}

// Utility is a non-feedstock input stream such as hydrogen or electricity.
// Units depend on Basis: mass streams are priced in USD/kg with yields in
// kg/kg, energy streams in USD/kWh with yields in kWh/kg.
type Utility struct {
	Name  string       `json:"name"`
	Basis UtilityBasis `json:"basis"`
	Price Quantity     `json:"price"`
	Yield Quantity     `json:"yield"`
	// CarbonIntensity is nil for zero-emission utilities.
	CarbonIntensity *Quantity `json:"carbon_intensity,omitempty"`
}

// Product is an output stream. The first product of the resolved list is the
// primary product the LCOP values; the rest are byproducts.
type Product struct {
	Name  string   `json:"name"`
	Price Quantity `json:"price"`
	// PriceSensitivity (USD/gCO2) adjusts the price linearly with the
	// product carbon intensity when present.
	PriceSensitivity *Quantity `json:"price_sensitivity,omitempty"`
	CarbonContent    Fraction  `json:"carbon_content"`
	EnergyContent    Quantity  `json:"energy_content"`
	Density          *Quantity `json:"density,omitempty"`
	Yield            Quantity  `json:"yield"`
	// MassFraction is this product's share of total output mass in percent,
	// derived from its yield over the sum of all product yields.
	MassFraction float64 `json:"mass_fraction"`
}

// EconomicParameters are the appraisal assumptions in canonical units
// (reference TCI and capacity already converted to USD and t/yr).
type EconomicParameters struct {
	DiscountRate        Fraction `json:"discount_rate"`
	LifetimeYears       int      `json:"lifetime_years"`
	ReferenceTCI        Quantity `json:"reference_tci"`
	ScalingExponent     float64  `json:"scaling_exponent"`
	ReferenceCapacity   Quantity `json:"reference_capacity"`
	WorkingCapitalRatio Fraction `json:"working_capital_ratio"`
	IndirectOpexRatio   Fraction `json:"indirect_opex_ratio"`
}

// ResolvedInput is the fully normalized, internally consistent input model
// every downstream component works from. No unit strings other than the
// canonical ones appear past this point.
type ResolvedInput struct {
	Plant      Plant              `json:"plant"`
	Feedstocks []Feedstock        `json:"feedstocks"`
	Utilities  []Utility          `json:"utilities"`
	Products   []Product          `json:"products"`
	Economics  EconomicParameters `json:"economics"`
}

// PrimaryProduct returns the product the LCOP is expressed against.
func (in *ResolvedInput) PrimaryProduct() Product {
	return in.Products[0]
}

// StreamResult is the per-stream consumption, cost and emission ledger.
type StreamResult struct {
	Name string `json:"name"`
	// Consumption in the stream's metering unit per year.
	Consumption Quantity `json:"consumption"`
	// Cost in USD/yr.
	Cost Quantity `json:"cost"`
	// Emissions in tCO2/yr attributed to this stream.
	Emissions Quantity `json:"emissions"`
}

// TechnoEconomicResult holds every cost and carbon figure of one plant
// configuration. Headline KPIs carry their TraceableValue decomposition.
type TechnoEconomicResult struct {
	// Production is the nameplate output in t/yr.
	Production Quantity `json:"production"`

	TCI               TraceableValue `json:"tci"`
	CapitalRecovery   float64        `json:"capital_recovery_factor"`
	AnnualizedCapital float64        `json:"annualized_capital"`

	Streams      []StreamResult `json:"streams"`
	DirectOpex   float64        `json:"direct_opex"`
	IndirectOpex float64        `json:"indirect_opex"`
	TotalOpex    TraceableValue `json:"total_opex"`

	// PrimaryRevenue and ByproductRevenue are annual USD figures at the
	// resolved product prices.
	PrimaryRevenue   float64 `json:"primary_revenue"`
	ByproductRevenue float64 `json:"byproduct_revenue"`

	// TotalCO2 in tCO2/yr across feedstock, utility and process emissions.
	TotalCO2 Quantity `json:"total_co2"`
	// CarbonIntensity of the product in gCO2/kg.
	CarbonIntensity Quantity `json:"carbon_intensity"`
	// CarbonIntensityEnergy in gCO2/MJ, present when the primary product
	// declares an energy content.
	CarbonIntensityEnergy *Quantity `json:"carbon_intensity_energy,omitempty"`
	// CarbonConversionEfficiency is the share of feed carbon ending up in
	// products, in percent.
	CarbonConversionEfficiency float64 `json:"carbon_conversion_efficiency"`

	// LCOP in USD per tonne of primary product.
	LCOP TraceableValue `json:"lcop"`
}

// CashFlowRow is one year of the discounted cash-flow schedule.
type CashFlowRow struct {
	Year           int     `json:"year"`
	Revenue        float64 `json:"revenue"`
	Opex           float64 `json:"opex"`
	NetCashFlow    float64 `json:"net_cash_flow"`
	DiscountFactor float64 `json:"discount_factor"`
	PresentValue   float64 `json:"present_value"`
	CumulativePV   float64 `json:"cumulative_pv"`
}

// FinancialResult is the investment appraisal of one configuration. IRR and
// PaybackYear are nil when economically undefined; that is an outcome, not
// an error.
type FinancialResult struct {
	NPV         float64       `json:"npv"`
	IRR         *float64      `json:"irr"`
	PaybackYear *int          `json:"payback_year"`
	CashFlows   []CashFlowRow `json:"cash_flows"`
}
