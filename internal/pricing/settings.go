package pricing

// WholesaleFormula selects how a wholesale price is derived from a computed
// retail price and its cost basis.
type WholesaleFormula string

const (
	// WholesalePercentOfRetail prices wholesale as a fraction of retail.
	WholesalePercentOfRetail WholesaleFormula = "percent-of-retail"
	// WholesaleMultiplierAdjusted prices wholesale as baseCost times an
	// adjusted business multiplier.
	WholesaleMultiplierAdjusted WholesaleFormula = "multiplier-adjusted"
	// WholesaleFormulaBased adds half the combined fee overhead to cost.
	// This is the default.
	WholesaleFormulaBased WholesaleFormula = "formula-based"
)

// WholesaleConfig holds the selected wholesale formula and its parameters.
type WholesaleConfig struct {
	Formula           WholesaleFormula `json:"formula"`
	Percentage        float64          `json:"percentage"`
	Adjustment        float64          `json:"adjustment"`
	MinimumMultiplier float64          `json:"minimumMultiplier"`
}

// Settings is the canonical, fully populated configuration consumed by every
// engine operation. Build one with NormalizeSettings; the engine never
// mutates it.
type Settings struct {
	BaseWage          float64            `json:"baseWage"`
	MaterialMarkup    float64            `json:"materialMarkup"`
	AdministrativeFee float64            `json:"administrativeFee"`
	BusinessFee       float64            `json:"businessFee"`
	ConsumablesFee    float64            `json:"consumablesFee"`
	MetalComplexity   map[string]float64 `json:"metalComplexityMultipliers"`
	Wholesale         WholesaleConfig    `json:"wholesaleConfig"`
}

// SettingsInput is a partial admin settings document as stored or received.
// Nil fields mean "not configured" and take defaults during normalization.
type SettingsInput struct {
	BaseWage          *float64              `json:"baseWage,omitempty"`
	MaterialMarkup    *float64              `json:"materialMarkup,omitempty"`
	AdministrativeFee *float64              `json:"administrativeFee,omitempty"`
	BusinessFee       *float64              `json:"businessFee,omitempty"`
	ConsumablesFee    *float64              `json:"consumablesFee,omitempty"`
	MetalComplexity   map[string]float64    `json:"metalComplexityMultipliers,omitempty"`
	Wholesale         *WholesaleConfigInput `json:"wholesaleConfig,omitempty"`
}

// WholesaleConfigInput is the partial wholesale section of SettingsInput.
type WholesaleConfigInput struct {
	Formula           string   `json:"formula,omitempty"`
	Percentage        *float64 `json:"percentage,omitempty"`
	Adjustment        *float64 `json:"adjustment,omitempty"`
	MinimumMultiplier *float64 `json:"minimumMultiplier,omitempty"`
}

// Normalization defaults.
const (
	defaultBaseWage             = 50.0
	defaultMaterialMarkup       = 2.0
	defaultAdministrativeFee    = 0.10
	defaultBusinessFee          = 0.15
	defaultConsumablesFee       = 0.05
	defaultWholesalePercentage  = 0.5
	defaultWholesaleAdjustment  = 0.75
	defaultWholesaleMinMultiple = 1.5
)

// NormalizeSettings merges a possibly nil or partial settings document with
// the engine defaults, producing the canonical shape. Absence of input is a
// supported case, not an error; this function never fails.
func NormalizeSettings(in *SettingsInput) Settings {
	s := Settings{
		BaseWage:          defaultBaseWage,
		MaterialMarkup:    defaultMaterialMarkup,
		AdministrativeFee: defaultAdministrativeFee,
		BusinessFee:       defaultBusinessFee,
		ConsumablesFee:    defaultConsumablesFee,
		MetalComplexity:   defaultMetalComplexity(),
		Wholesale: WholesaleConfig{
			Formula:           WholesaleFormulaBased,
			Percentage:        defaultWholesalePercentage,
			Adjustment:        defaultWholesaleAdjustment,
			MinimumMultiplier: defaultWholesaleMinMultiple,
		},
	}
	if in == nil {
		return s
	}

	if in.BaseWage != nil {
		s.BaseWage = *in.BaseWage
	}
	if in.MaterialMarkup != nil {
		s.MaterialMarkup = *in.MaterialMarkup
	}
	if in.AdministrativeFee != nil {
		s.AdministrativeFee = *in.AdministrativeFee
	}
	if in.BusinessFee != nil {
		s.BusinessFee = *in.BusinessFee
	}
	if in.ConsumablesFee != nil {
		s.ConsumablesFee = *in.ConsumablesFee
	}
	for metal, multiplier := range in.MetalComplexity {
		s.MetalComplexity[normalizeMetalKey(metal)] = multiplier
	}
	if in.Wholesale != nil {
		switch WholesaleFormula(in.Wholesale.Formula) {
		case WholesalePercentOfRetail, WholesaleMultiplierAdjusted, WholesaleFormulaBased:
			s.Wholesale.Formula = WholesaleFormula(in.Wholesale.Formula)
		}
		if in.Wholesale.Percentage != nil {
			s.Wholesale.Percentage = *in.Wholesale.Percentage
		}
		if in.Wholesale.Adjustment != nil {
			s.Wholesale.Adjustment = *in.Wholesale.Adjustment
		}
		if in.Wholesale.MinimumMultiplier != nil {
			s.Wholesale.MinimumMultiplier = *in.Wholesale.MinimumMultiplier
		}
	}
	return s
}

// ResolvedMaterialMarkup returns the material markup with the engine floor
// applied. Settings requesting a lower markup still resolve to the floor.
func (s Settings) ResolvedMaterialMarkup() float64 {
	if s.MaterialMarkup < MinMaterialMarkup {
		return MinMaterialMarkup
	}
	return s.MaterialMarkup
}

// BusinessMultiplier returns the combined fee multiplier applied once to a
// task's total base cost, floored at MinBusinessMultiplier.
func (s Settings) BusinessMultiplier() float64 {
	m := s.AdministrativeFee + s.BusinessFee + s.ConsumablesFee + 1
	if m < MinBusinessMultiplier {
		return MinBusinessMultiplier
	}
	return m
}
