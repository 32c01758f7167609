// Package pricing implements the deterministic cost engine for bench work:
// labor and material cost primitives, per-process pricing with metal-variant
// expansion, task-level aggregation, and wholesale price derivation.
//
// Every public operation is a pure function of its arguments. Inputs are
// never mutated and there is no package-level state, so the engine is safe
// to call from any number of goroutines. Monetary outputs are rounded to
// cents at the boundary; intermediate arithmetic runs at full precision.
package pricing

import (
	"math"
	"strings"
)

// SkillLevel selects the labor rate multiplier for a process.
type SkillLevel string

const (
	SkillBasic    SkillLevel = "basic"
	SkillStandard SkillLevel = "standard"
	SkillAdvanced SkillLevel = "advanced"
	SkillExpert   SkillLevel = "expert"
)

// Enforced pricing floors. Settings may request lower values but the engine
// never resolves below these.
const (
	MinMaterialMarkup      = 2.0
	MinBusinessMultiplier  = 2.0
	MinWholesaleMultiplier = 1.5
)

var skillMultipliers = map[SkillLevel]float64{
	SkillBasic:    0.75,
	SkillStandard: 1.0,
	SkillAdvanced: 1.25,
	SkillExpert:   1.5,
}

// SkillMultiplier returns the hourly-rate multiplier for a skill level.
// Unrecognized or empty levels fall back to standard.
func SkillMultiplier(level SkillLevel) float64 {
	if m, ok := skillMultipliers[normalizeSkill(level)]; ok {
		return m
	}
	return skillMultipliers[SkillStandard]
}

// ValidSkillLevel reports whether level is one of the fixed enumeration.
func ValidSkillLevel(level SkillLevel) bool {
	_, ok := skillMultipliers[normalizeSkill(level)]
	return ok
}

func normalizeSkill(level SkillLevel) SkillLevel {
	return SkillLevel(strings.ToLower(strings.TrimSpace(string(level))))
}

// defaultMetalComplexity returns a fresh copy of the built-in
// metal-complexity table so callers can never alias engine state.
func defaultMetalComplexity() map[string]float64 {
	return map[string]float64{
		"gold":      1.0,
		"silver":    0.9,
		"platinum":  1.3,
		"palladium": 1.2,
		"copper":    0.8,
		"brass":     0.7,
		"stainless": 0.8,
		"titanium":  1.4,
		"other":     1.0,
	}
}

// metalComplexityFor resolves the complexity multiplier for a metal type.
// The lookup is case-insensitive and tolerates qualified names ("Yellow
// Gold" resolves through its "gold" component). Unknown metals resolve to
// the "other" entry, or 1.0 when the table carries no such entry.
func (s Settings) metalComplexityFor(metalType string) float64 {
	name := normalizeMetalKey(metalType)
	if name == "" {
		return 1.0
	}
	if m, ok := s.MetalComplexity[name]; ok {
		return m
	}
	for _, word := range strings.Split(name, "_") {
		if m, ok := s.MetalComplexity[word]; ok {
			return m
		}
	}
	if m, ok := s.MetalComplexity["other"]; ok {
		return m
	}
	return 1.0
}

// RoundCents rounds a monetary value to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
