package pricing

import "math"

// HourlyRate resolves the billable hourly rate for a skill level:
// baseWage times the skill multiplier. Unrecognized levels bill at standard.
func HourlyRate(level SkillLevel, s Settings) float64 {
	return s.BaseWage * SkillMultiplier(level)
}

// LaborCost computes the cost of a labor entry, rounded to cents. It fails
// with a TypeError for non-numeric hours (NaN or infinite) and a RangeError
// for negative hours.
func LaborCost(hours float64, level SkillLevel, s Settings) (float64, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, newTypeError("laborHours", "must be numeric")
	}
	if hours < 0 {
		return 0, newRangeError("laborHours", "must not be negative, got %v", hours)
	}
	return RoundCents(hours * HourlyRate(level, s)), nil
}
