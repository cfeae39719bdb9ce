package resolve

// Raw input shapes decoded from the caller's JSON or YAML document. Field
// matching happens on canonicalized keys (lowercased, spaces, underscores
// and hyphens stripped), so "load_hours", "loadHours" and "load-hours" all
// land on the same field. Alternate spellings live in keyAliases and nowhere
// else; past this package only canonical names exist.

type rawQuantity struct {
	Value *float64 `mapstructure:"value"`
	Unit  string   `mapstructure:"unit"`
}

type rawPlant struct {
	Capacity               rawQuantity  `mapstructure:"capacity"`
	LoadHours              *float64     `mapstructure:"loadhours"`
	ProcessCarbonIntensity *float64     `mapstructure:"processcarbonintensity"`
	ProcessType            string       `mapstructure:"processtype"`
	LiquidDensity          *rawQuantity `mapstructure:"liquiddensity"`
}

type rawFeedstock struct {
	Name            string       `mapstructure:"name"`
	Price           rawQuantity  `mapstructure:"price"`
	CarbonContent   *float64     `mapstructure:"carboncontent"`
	CarbonIntensity *rawQuantity `mapstructure:"carbonintensity"`
	EnergyContent   *rawQuantity `mapstructure:"energycontent"`
	Yield           rawQuantity  `mapstructure:"yield"`
}

type rawUtility struct {
	Name            string       `mapstructure:"name"`
	Price           rawQuantity  `mapstructure:"price"`
	Yield           rawQuantity  `mapstructure:"yield"`
	CarbonIntensity *rawQuantity `mapstructure:"carbonintensity"`
}

type rawProduct struct {
	Name             string       `mapstructure:"name"`
	Price            rawQuantity  `mapstructure:"price"`
	PriceSensitivity *rawQuantity `mapstructure:"pricesensitivity"`
	CarbonContent    *float64     `mapstructure:"carboncontent"`
	EnergyContent    *rawQuantity `mapstructure:"energycontent"`
	Density          *rawQuantity `mapstructure:"density"`
	Yield            rawQuantity  `mapstructure:"yield"`
}

type rawEconomics struct {
	DiscountRate        *float64    `mapstructure:"discountrate"`
	Lifetime            *int        `mapstructure:"lifetime"`
	ReferenceTCI        rawQuantity `mapstructure:"referencetci"`
	ScalingExponent     *float64    `mapstructure:"scalingexponent"`
	ReferenceCapacity   rawQuantity `mapstructure:"referencecapacity"`
	WorkingCapitalRatio *float64    `mapstructure:"workingcapitalratio"`
	IndirectOpexRatio   *float64    `mapstructure:"indirectopexratio"`
}

type rawInput struct {
	Plant      rawPlant       `mapstructure:"plant"`
	Feedstocks []rawFeedstock `mapstructure:"feedstocks"`
	Utilities  []rawUtility   `mapstructure:"utilities"`
	Products   []rawProduct   `mapstructure:"products"`
	Economics  rawEconomics   `mapstructure:"economics"`
}

// keyAliases maps canonicalized alternate spellings seen in the wild onto
// the field names above.
var keyAliases = map[string]string{
	"averageliquiddensity":        "liquiddensity",
	"processcarbondefault":        "processcarbonintensity",
	"projectlifetime":             "lifetime",
	"lifetimeyears":               "lifetime",
	"tciref":                      "referencetci",
	"referencetotalcapital":       "referencetci",
	"capacityref":                 "referencecapacity",
	"referenceproductioncapacity": "referencecapacity",
	"wcratio":                     "workingcapitalratio",
	"workingcapitaltotciratio":    "workingcapitalratio",
	"indirectopextotciratio":      "indirectopexratio",
	"annualloadhours":             "loadhours",
	"feedstock":                   "feedstocks",
	"utility":                     "utilities",
	"product":                     "products",
	"economicparameters":          "economics",
}
