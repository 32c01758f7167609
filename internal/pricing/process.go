package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Process is one billable operation: labor hours at a skill level, plus the
// materials the operation consumes.
type Process struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name,omitempty"`
	LaborHours *float64   `json:"laborHours,omitempty"`
	SkillLevel SkillLevel `json:"skillLevel,omitempty"`
	MetalType  string     `json:"metalType,omitempty"`
	Materials  []Material `json:"materials,omitempty"`
}

// IsMetalDependent reports whether any of the process's materials must be
// priced per metal variant.
func (p *Process) IsMetalDependent() bool {
	for i := range p.Materials {
		if p.Materials[i].MetalDependent {
			return true
		}
	}
	return false
}

// Breakdown is the cost detail produced for one priced unit: a process, a
// metal variant of a process, or a whole task. Labor and materials figures
// are weighted by the applicable metal-complexity multiplier. All monetary
// fields are rounded to cents.
type Breakdown struct {
	LaborCost          float64   `json:"laborCost"`
	BaseMaterialsCost  float64   `json:"baseMaterialsCost"`
	MaterialsCost      float64   `json:"materialsCost"` // legacy marked-up view: baseMaterialsCost x materialMarkup
	CostOfGoods        float64   `json:"costOfGoods"`
	RetailPrice        float64   `json:"retailPrice"`
	WholesalePrice     float64   `json:"wholesalePrice"`
	HourlyRate         float64   `json:"hourlyRate"`
	SkillMultiplier    float64   `json:"skillMultiplier"`
	MetalComplexity    float64   `json:"metalComplexity"`
	BusinessMultiplier float64   `json:"businessMultiplier"`
	MaterialMarkup     float64   `json:"materialMarkup"`
	CalculatedAt       time.Time `json:"calculatedAt"`
}

// VariantCost is the breakdown for one metal/karat combination of a
// metal-dependent process. MissingMaterials names the metal-dependent
// materials that carry no vendor variant for this combination; they
// contribute zero and are surfaced here instead of failing the calculation.
type VariantCost struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	MetalType string `json:"metalType"`
	Karat     string `json:"karat,omitempty"`
	Breakdown
	MissingMaterials []string `json:"missingMaterials,omitempty"`
}

// ProcessCost is the result of pricing one process. For a metal-independent
// process the embedded Breakdown is the full figure and Variants is nil. For
// a metal-dependent process Variants holds one entry per discovered
// metal/karat pair and the embedded Breakdown is a labor-only summary, a
// conservative metal-agnostic preview.
type ProcessCost struct {
	MetalDependent bool `json:"metalDependent"`
	Breakdown
	Variants map[string]VariantCost `json:"variants,omitempty"`
}

// CalculateProcessCost prices a single process against normalized settings.
//
// The returned cost-of-goods is the process's contribution to a task's base
// cost; the business multiplier is deliberately applied once at the task
// level, not here. The per-unit retail and wholesale figures carried in the
// breakdown treat the process as a standalone task of one.
func CalculateProcessCost(p *Process, s Settings) (*ProcessCost, error) {
	if p == nil {
		return nil, newTypeError("process", "must be an object")
	}

	var hours float64
	if p.LaborHours != nil {
		hours = *p.LaborHours
	}
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return nil, newTypeError("laborHours", "must be numeric")
	}
	if hours < 0 {
		return nil, newRangeError("laborHours", "must not be negative, got %v", hours)
	}

	rate := HourlyRate(p.SkillLevel, s)
	laborRaw := hours * rate
	skillMult := SkillMultiplier(p.SkillLevel)

	if !p.IsMetalDependent() {
		complexity := 1.0
		if p.MetalType != "" {
			complexity = s.metalComplexityFor(p.MetalType)
		}
		base, err := sumMaterialBase(p.Materials, false)
		if err != nil {
			return nil, err
		}
		bk, err := buildBreakdown(s, laborRaw*complexity, base*complexity, rate, skillMult, complexity)
		if err != nil {
			return nil, err
		}
		return &ProcessCost{Breakdown: bk}, nil
	}

	// Metal-dependent: price each discovered metal/karat pair separately.
	// Labor does not change with metal choice; only the materials side and
	// the complexity weighting vary across variants.
	sharedBase, err := sumMaterialBase(p.Materials, true)
	if err != nil {
		return nil, err
	}

	refs := discoverVariants(p)
	variants := make(map[string]VariantCost, len(refs))
	for _, ref := range refs {
		variantBase := sharedBase
		var missing []string
		for i := range p.Materials {
			m := &p.Materials[i]
			if !m.MetalDependent {
				continue
			}
			cost, found := m.variantCost(ref.metalType, ref.karat)
			if !found {
				missing = append(missing, materialDisplayName(m, i))
				continue
			}
			qty, err := m.effectiveQuantity()
			if err != nil {
				return nil, prefixField(err, fmt.Sprintf("materials[%d]", i))
			}
			variantBase += cost * qty
		}

		complexity := s.metalComplexityFor(ref.metalType)
		bk, err := buildBreakdown(s, laborRaw*complexity, variantBase*complexity, rate, skillMult, complexity)
		if err != nil {
			return nil, err
		}
		variants[ref.key] = VariantCost{
			Key:              ref.key,
			Label:            ref.label,
			MetalType:        ref.metalType,
			Karat:            ref.karat,
			Breakdown:        bk,
			MissingMaterials: missing,
		}
	}

	summary, err := buildBreakdown(s, laborRaw, 0, rate, skillMult, 1.0)
	if err != nil {
		return nil, err
	}
	return &ProcessCost{
		MetalDependent: true,
		Breakdown:      summary,
		Variants:       variants,
	}, nil
}

// sumMaterialBase sums raw per-use cost times quantity across materials.
// With skipMetalDependent set, metal-dependent materials are left to the
// per-variant pass.
func sumMaterialBase(materials []Material, skipMetalDependent bool) (float64, error) {
	var total float64
	for i := range materials {
		m := &materials[i]
		if skipMetalDependent && m.MetalDependent {
			continue
		}
		raw, err := MaterialRawCost(m)
		if err != nil {
			return 0, prefixField(err, fmt.Sprintf("materials[%d]", i))
		}
		qty, err := m.effectiveQuantity()
		if err != nil {
			return 0, prefixField(err, fmt.Sprintf("materials[%d]", i))
		}
		total += raw * qty
	}
	return total, nil
}

// buildBreakdown derives every downstream figure from one weighted base
// value, so the marked-up, retail, and wholesale views can never diverge
// from each other. Inputs are unrounded; outputs are rounded to cents.
func buildBreakdown(s Settings, weightedLabor, weightedBase, rate, skillMult, complexity float64) (Breakdown, error) {
	costOfGoods := weightedLabor + weightedBase
	markup := s.ResolvedMaterialMarkup()
	business := s.BusinessMultiplier()
	retail := costOfGoods*business + weightedBase*(markup-1)

	wholesale, err := deriveWholesale(retail, costOfGoods, s)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		LaborCost:          RoundCents(weightedLabor),
		BaseMaterialsCost:  RoundCents(weightedBase),
		MaterialsCost:      RoundCents(weightedBase * markup),
		CostOfGoods:        RoundCents(costOfGoods),
		RetailPrice:        RoundCents(retail),
		WholesalePrice:     RoundCents(wholesale),
		HourlyRate:         RoundCents(rate),
		SkillMultiplier:    skillMult,
		MetalComplexity:    complexity,
		BusinessMultiplier: business,
		MaterialMarkup:     markup,
		CalculatedAt:       time.Now().UTC(),
	}, nil
}

type variantRef struct {
	key       string
	label     string
	metalType string
	karat     string
}

// discoverVariants collects the distinct metal/karat pairs present across a
// process's metal-dependent materials, in first-appearance order.
func discoverVariants(p *Process) []variantRef {
	var refs []variantRef
	seen := make(map[string]bool)
	for i := range p.Materials {
		m := &p.Materials[i]
		if !m.MetalDependent {
			continue
		}
		for _, v := range m.Variants {
			key := VariantKey(v.MetalType, v.Karat)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			refs = append(refs, variantRef{
				key:       key,
				label:     VariantLabel(v.MetalType, v.Karat),
				metalType: v.MetalType,
				karat:     v.Karat,
			})
		}
	}
	return refs
}

func materialDisplayName(m *Material, index int) string {
	if m.Name != "" {
		return m.Name
	}
	if m.ID != "" {
		return m.ID
	}
	return fmt.Sprintf("materials[%d]", index)
}

// VariantKey normalizes a metal/karat pair into a stable map key, e.g.
// ("Yellow Gold", "14K") becomes "yellow_gold_14k".
func VariantKey(metalType, karat string) string {
	key := normalizeMetalKey(metalType)
	if k := normalizeKarat(karat); k != "" {
		key += "_" + k
	}
	return key
}

// VariantLabel renders a human-readable variant name, e.g. "Yellow Gold 14K".
func VariantLabel(metalType, karat string) string {
	label := titleWords(metalType)
	if k := normalizeKarat(karat); k != "" {
		label += " " + strings.ToUpper(k)
	}
	return label
}

func normalizeMetalKey(metalType string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(metalType)), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	return strings.Join(fields, "_")
}

func normalizeKarat(karat string) string {
	k := strings.ToLower(strings.TrimSpace(karat))
	switch k {
	case "", "n/a", "na", "-":
		return ""
	}
	return k
}

func titleWords(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + strings.ToLower(f[1:])
	}
	return strings.Join(fields, " ")
}
