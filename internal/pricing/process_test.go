package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateProcessCost_MetalIndependent(t *testing.T) {
	s := NormalizeSettings(nil)
	p := &Process{
		Name:      "Polish",
		Materials: []Material{{Name: "Rouge", EstimatedCost: f(10), Quantity: f(3)}},
	}

	got, err := CalculateProcessCost(p, s)
	require.NoError(t, err)

	assert.False(t, got.MetalDependent)
	assert.Nil(t, got.Variants)
	assert.Equal(t, 0.0, got.LaborCost)
	assert.Equal(t, 30.0, got.BaseMaterialsCost)
	assert.Equal(t, 60.0, got.MaterialsCost, "legacy view carries the marked-up figure")
	assert.Equal(t, 30.0, got.CostOfGoods)
	assert.Equal(t, 90.0, got.RetailPrice)
	assert.Equal(t, 45.0, got.WholesalePrice, "formula result 34.50 is floored at 1.5x cost")
	assert.Equal(t, 1.0, got.MetalComplexity)
}

func TestCalculateProcessCost_MetalTypeWeightsLaborAndMaterials(t *testing.T) {
	s := NormalizeSettings(nil)
	hours := 1.0
	p := &Process{
		LaborHours: &hours,
		SkillLevel: SkillStandard,
		MetalType:  "titanium",
		Materials:  []Material{{EstimatedCost: f(10)}},
	}

	got, err := CalculateProcessCost(p, s)
	require.NoError(t, err)

	assert.Equal(t, 1.4, got.MetalComplexity)
	assert.Equal(t, 70.0, got.LaborCost)
	assert.Equal(t, 14.0, got.BaseMaterialsCost)
	assert.Equal(t, 84.0, got.CostOfGoods)
}

func TestCalculateProcessCost_MetalDependentExpandsVariants(t *testing.T) {
	s := NormalizeSettings(nil)
	hours := 1.0
	p := &Process{
		Name:       "Ring sizing",
		LaborHours: &hours,
		SkillLevel: SkillStandard,
		Materials: []Material{
			{Name: "Solder", EstimatedCost: f(5)},
			{
				Name:           "Sizing stock",
				MetalDependent: true,
				Variants: []StullerVariant{
					{MetalType: "Yellow Gold", Karat: "14K", CostPerPortion: f(40)},
					{MetalType: "White Gold", Karat: "18K", VendorPrice: f(60)},
				},
			},
		},
	}

	got, err := CalculateProcessCost(p, s)
	require.NoError(t, err)

	assert.True(t, got.MetalDependent)
	require.Len(t, got.Variants, 2)

	yg, ok := got.Variants["yellow_gold_14k"]
	require.True(t, ok)
	assert.Equal(t, "Yellow Gold 14K", yg.Label)
	assert.Equal(t, 50.0, yg.LaborCost, "labor does not change with metal choice")
	assert.Equal(t, 45.0, yg.BaseMaterialsCost)
	assert.Equal(t, 95.0, yg.CostOfGoods)
	assert.Empty(t, yg.MissingMaterials)

	wg, ok := got.Variants["white_gold_18k"]
	require.True(t, ok)
	assert.Equal(t, "White Gold 18K", wg.Label)
	assert.Equal(t, 65.0, wg.BaseMaterialsCost)
	assert.Equal(t, 115.0, wg.CostOfGoods)

	// Summary is the metal-agnostic labor-only preview.
	assert.Equal(t, 50.0, got.LaborCost)
	assert.Equal(t, 0.0, got.BaseMaterialsCost)
	assert.Equal(t, 50.0, got.CostOfGoods)
}

func TestCalculateProcessCost_UnmatchedVariantIsFlaggedNotFound(t *testing.T) {
	s := NormalizeSettings(nil)
	p := &Process{
		Materials: []Material{
			{Name: "Flux", EstimatedCost: f(5)},
			{
				Name:           "Gold stock",
				MetalDependent: true,
				Variants:       []StullerVariant{{MetalType: "Yellow Gold", Karat: "14K", CostPerPortion: f(12)}},
			},
			{
				Name:           "Platinum head",
				MetalDependent: true,
				Variants:       []StullerVariant{{MetalType: "Platinum", VendorPrice: f(100)}},
			},
		},
	}

	got, err := CalculateProcessCost(p, s)
	require.NoError(t, err)
	require.Len(t, got.Variants, 2)

	yg := got.Variants["yellow_gold_14k"]
	assert.Equal(t, []string{"Platinum head"}, yg.MissingMaterials)
	assert.Equal(t, 17.0, yg.BaseMaterialsCost, "metal-independent 5 plus matched 12; unmatched contributes zero")

	pt := got.Variants["platinum"]
	assert.Equal(t, []string{"Gold stock"}, pt.MissingMaterials)
	assert.Equal(t, 1.3, pt.MetalComplexity)
	assert.InDelta(t, 136.5, pt.BaseMaterialsCost, 1e-9, "(5+100) weighted by platinum complexity")
}

func TestCalculateProcessCost_MetalDependentWithoutVariantsYieldsLaborOnlySummary(t *testing.T) {
	s := NormalizeSettings(nil)
	hours := 2.0
	p := &Process{
		LaborHours: &hours,
		Materials:  []Material{{Name: "Head", MetalDependent: true}},
	}

	got, err := CalculateProcessCost(p, s)
	require.NoError(t, err)

	assert.True(t, got.MetalDependent)
	assert.Empty(t, got.Variants)
	assert.Equal(t, 100.0, got.LaborCost)
	assert.Equal(t, 100.0, got.CostOfGoods)
}

func TestCalculateProcessCost_NilProcessIsTypeError(t *testing.T) {
	_, err := CalculateProcessCost(nil, NormalizeSettings(nil))
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "process", typeErr.Field)
}

func TestCalculateProcessCost_NegativeHoursIsRangeError(t *testing.T) {
	hours := -1.0
	_, err := CalculateProcessCost(&Process{LaborHours: &hours}, NormalizeSettings(nil))
	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "laborHours", rangeErr.Field)
}

func TestCalculateProcessCost_MaterialErrorNamesIndex(t *testing.T) {
	p := &Process{
		Materials: []Material{
			{EstimatedCost: f(5)},
			{Name: "mystery"}, // no cost source
		},
	}
	_, err := CalculateProcessCost(p, NormalizeSettings(nil))
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "materials[1]", typeErr.Field)
}

func TestVariantKeyAndLabel(t *testing.T) {
	assert.Equal(t, "yellow_gold_14k", VariantKey("Yellow Gold", "14K"))
	assert.Equal(t, "platinum", VariantKey("Platinum", "N/A"))
	assert.Equal(t, "Yellow Gold 14K", VariantLabel("yellow gold", "14k"))
	assert.Equal(t, "Platinum", VariantLabel("PLATINUM", ""))
}
