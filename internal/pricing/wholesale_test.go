package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateWholesalePrice_FormulaBasedFlooredAtMinimum(t *testing.T) {
	s := NormalizeSettings(nil) // fees 0.10/0.15/0.05, formula-based

	// Half the fee overhead on a 40 cost basis is 6, giving 46, but the
	// 1.5x minimum margin floor wins.
	got, err := CalculateWholesalePrice(100, 40, s)
	require.NoError(t, err)
	assert.Equal(t, 60.0, got)
}

func TestCalculateWholesalePrice_FormulaBasedAboveFloor(t *testing.T) {
	s := NormalizeSettings(&SettingsInput{
		AdministrativeFee: f(0.6),
		BusinessFee:       f(0.5),
		ConsumablesFee:    f(0.2),
	})

	// Overhead fraction 1.3, so wholesale = 40*1.3/2 + 40 = 66 > 60 floor.
	got, err := CalculateWholesalePrice(200, 40, s)
	require.NoError(t, err)
	assert.Equal(t, 66.0, got)
}

func TestCalculateWholesalePrice_PercentOfRetail(t *testing.T) {
	s := NormalizeSettings(&SettingsInput{
		Wholesale: &WholesaleConfigInput{Formula: string(WholesalePercentOfRetail)},
	})

	got, err := CalculateWholesalePrice(200, 50, s)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got, "default percentage is 0.5")
}

func TestCalculateWholesalePrice_MultiplierAdjusted(t *testing.T) {
	s := NormalizeSettings(&SettingsInput{
		Wholesale: &WholesaleConfigInput{Formula: string(WholesaleMultiplierAdjusted)},
	})

	// Business multiplier floors at 2.0; default adjustment 0.75.
	got, err := CalculateWholesalePrice(400, 100, s)
	require.NoError(t, err)
	assert.Equal(t, 150.0, got)
}

func TestCalculateWholesalePrice_RetailBelowCostIsRangeError(t *testing.T) {
	_, err := CalculateWholesalePrice(50, 80, NormalizeSettings(nil))
	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "retailPrice", rangeErr.Field)
}

func TestCalculateWholesalePrice_NegativeInputsAreRangeErrors(t *testing.T) {
	s := NormalizeSettings(nil)
	var rangeErr *RangeError

	_, err := CalculateWholesalePrice(-1, 0, s)
	require.True(t, errors.As(err, &rangeErr))

	_, err = CalculateWholesalePrice(10, -1, s)
	require.True(t, errors.As(err, &rangeErr))
}

func TestCalculateWholesalePrice_NonNumericInputsAreTypeErrors(t *testing.T) {
	s := NormalizeSettings(nil)
	var typeErr *TypeError

	_, err := CalculateWholesalePrice(math.NaN(), 10, s)
	require.True(t, errors.As(err, &typeErr))

	_, err = CalculateWholesalePrice(10, math.Inf(1), s)
	require.True(t, errors.As(err, &typeErr))
}

func TestCalculateWholesalePrice_RaisedMinimumMultiplierWins(t *testing.T) {
	s := NormalizeSettings(&SettingsInput{
		Wholesale: &WholesaleConfigInput{MinimumMultiplier: f(2.0)},
	})

	got, err := CalculateWholesalePrice(300, 40, s)
	require.NoError(t, err)
	assert.Equal(t, 80.0, got, "configured minimum above the engine floor applies")
}

func TestCalculateWholesalePrice_FloorHoldsAcrossFormulas(t *testing.T) {
	base := 40.0
	retail := 400.0
	for _, formula := range []WholesaleFormula{WholesalePercentOfRetail, WholesaleMultiplierAdjusted, WholesaleFormulaBased} {
		s := NormalizeSettings(&SettingsInput{
			Wholesale: &WholesaleConfigInput{Formula: string(formula)},
		})
		got, err := CalculateWholesalePrice(retail, base, s)
		require.NoError(t, err, formula)
		assert.GreaterOrEqual(t, got, base*MinWholesaleMultiplier, formula)
		assert.LessOrEqual(t, got, retail, formula)
	}
}
