package pricing

import "math"

// StullerVariant is one vendor-supplied price point for a specific metal
// type and karat combination.
type StullerVariant struct {
	MetalType      string   `json:"metalType"`
	Karat          string   `json:"karat,omitempty"`
	VendorPrice    *float64 `json:"vendorPrice,omitempty"`
	CostPerPortion *float64 `json:"costPerPortion,omitempty"`
}

// Material is a consumable or component record.
//
// Its base unit cost is resolved from a prioritized list of sources, first
// non-nil wins: EstimatedCost, CostPerPortion, UnitCost, VendorPrice. When
// the chosen source prices a full purchase unit (anything but CostPerPortion)
// and PortionsPerUnit is greater than one with no portion-specific override
// present, the value is divided by PortionsPerUnit to yield a per-use price.
// This ordering is part of the type's contract; stored records from older
// schema generations stay interpretable through it.
type Material struct {
	ID              string           `json:"id,omitempty"`
	Name            string           `json:"name,omitempty"`
	EstimatedCost   *float64         `json:"estimatedCost,omitempty"`
	CostPerPortion  *float64         `json:"costPerPortion,omitempty"`
	UnitCost        *float64         `json:"unitCost,omitempty"`
	VendorPrice     *float64         `json:"vendorPrice,omitempty"`
	Quantity        *float64         `json:"quantity,omitempty"`
	PortionsPerUnit *float64         `json:"portionsPerUnit,omitempty"`
	MetalDependent  bool             `json:"isMetalDependent,omitempty"`
	Variants        []StullerVariant `json:"stullerVariants,omitempty"`
}

// costSource is one named accessor in the resolution order. perPortion marks
// sources whose value already describes a single usage portion.
type costSource struct {
	name       string
	value      func(*Material) *float64
	perPortion bool
}

var materialCostSources = []costSource{
	{name: "estimatedCost", value: func(m *Material) *float64 { return m.EstimatedCost }},
	{name: "costPerPortion", value: func(m *Material) *float64 { return m.CostPerPortion }, perPortion: true},
	{name: "unitCost", value: func(m *Material) *float64 { return m.UnitCost }},
	{name: "vendorPrice", value: func(m *Material) *float64 { return m.VendorPrice }},
}

// MaterialRawCost resolves a material's base per-use cost following the
// documented source priority. It fails with a TypeError when no source
// carries a numeric value and with a RangeError when the resolved cost is
// negative.
func MaterialRawCost(m *Material) (float64, error) {
	if m == nil {
		return 0, newTypeError("material", "must be an object")
	}
	for _, src := range materialCostSources {
		v := src.value(m)
		if v == nil || math.IsNaN(*v) {
			continue
		}
		cost := *v
		if cost < 0 {
			return 0, newRangeError(src.name, "must not be negative, got %v", cost)
		}
		if !src.perPortion && m.CostPerPortion == nil {
			if ppu := m.portionsPerUnit(); ppu > 1 {
				cost /= ppu
			}
		}
		return cost, nil
	}
	return 0, newTypeError("", "no numeric cost source found (checked estimatedCost, costPerPortion, unitCost, vendorPrice)")
}

// MarkupMaterial applies the resolved material markup to a raw cost.
func MarkupMaterial(rawCost float64, s Settings) float64 {
	return rawCost * s.ResolvedMaterialMarkup()
}

// effectiveQuantity returns the material record's usage quantity, defaulting
// a missing value to one. A present non-positive quantity is out of domain.
func (m *Material) effectiveQuantity() (float64, error) {
	if m.Quantity == nil {
		return 1, nil
	}
	q := *m.Quantity
	if math.IsNaN(q) {
		return 0, newTypeError("quantity", "must be numeric")
	}
	if q <= 0 {
		return 0, newRangeError("quantity", "must be positive, got %v", q)
	}
	return q, nil
}

func (m *Material) portionsPerUnit() float64 {
	if m.PortionsPerUnit == nil || *m.PortionsPerUnit <= 0 {
		return 1
	}
	return *m.PortionsPerUnit
}

// variantCost resolves the per-use cost of a metal-dependent material for
// one metal/karat pair. The second return is false when the material carries
// no matching vendor variant; the caller records that as a "not found"
// diagnostic and the material contributes zero for the variant.
func (m *Material) variantCost(metalType, karat string) (float64, bool) {
	for i := range m.Variants {
		v := &m.Variants[i]
		if normalizeMetalKey(v.MetalType) != normalizeMetalKey(metalType) || normalizeKarat(v.Karat) != normalizeKarat(karat) {
			continue
		}
		if v.CostPerPortion != nil && !math.IsNaN(*v.CostPerPortion) {
			return *v.CostPerPortion, true
		}
		if v.VendorPrice != nil && !math.IsNaN(*v.VendorPrice) {
			price := *v.VendorPrice
			if ppu := m.portionsPerUnit(); ppu > 1 {
				price /= ppu
			}
			return price, true
		}
	}
	return 0, false
}
