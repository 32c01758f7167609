package pricing

import "math"

// CalculateWholesalePrice derives a wholesale price from a retail price and
// its cost basis using the formula selected in settings, rounded to cents.
//
// It fails with a TypeError when either argument is non-numeric, a
// RangeError when either is negative, and a RangeError when retailPrice is
// below baseCost — retail below its own cost basis is an inconsistent
// pricing state, not something to clamp silently.
func CalculateWholesalePrice(retailPrice, baseCost float64, s Settings) (float64, error) {
	if math.IsNaN(retailPrice) || math.IsInf(retailPrice, 0) {
		return 0, newTypeError("retailPrice", "must be numeric")
	}
	if math.IsNaN(baseCost) || math.IsInf(baseCost, 0) {
		return 0, newTypeError("baseCost", "must be numeric")
	}
	if retailPrice < 0 {
		return 0, newRangeError("retailPrice", "must not be negative, got %v", retailPrice)
	}
	if baseCost < 0 {
		return 0, newRangeError("baseCost", "must not be negative, got %v", baseCost)
	}
	if retailPrice < baseCost {
		return 0, newRangeError("retailPrice", "must not be below baseCost (%v < %v)", retailPrice, baseCost)
	}

	w, err := deriveWholesale(retailPrice, baseCost, s)
	if err != nil {
		return 0, err
	}
	return RoundCents(w), nil
}

// deriveWholesale applies the configured formula and the minimum-margin
// floor without rounding. Callers have already validated the inputs.
func deriveWholesale(retailPrice, baseCost float64, s Settings) (float64, error) {
	var w float64
	switch s.Wholesale.Formula {
	case WholesalePercentOfRetail:
		pct := s.Wholesale.Percentage
		if pct <= 0 {
			pct = defaultWholesalePercentage
		}
		w = retailPrice * pct
	case WholesaleMultiplierAdjusted:
		adj := s.Wholesale.Adjustment
		if adj <= 0 {
			adj = defaultWholesaleAdjustment
		}
		w = baseCost * (s.BusinessMultiplier() * adj)
	case WholesaleFormulaBased, "":
		overhead := baseCost*s.AdministrativeFee + baseCost*s.BusinessFee + baseCost*s.ConsumablesFee
		w = overhead/2 + baseCost
	default:
		return 0, newTypeError("wholesaleConfig.formula", "unknown formula %q", s.Wholesale.Formula)
	}

	// Minimum profit margin holds no matter how generous the formula
	// parameters are.
	minMultiplier := s.Wholesale.MinimumMultiplier
	if minMultiplier < MinWholesaleMultiplier {
		minMultiplier = MinWholesaleMultiplier
	}
	if floor := baseCost * minMultiplier; w < floor {
		w = floor
	}
	return w, nil
}
