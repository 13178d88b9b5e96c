package bond

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ilbond/config"
	"github.com/meenmo/ilbond/utils"
)

func tips2020(t *testing.T) *FixedRateBond {
	t.Helper()
	b, err := NewFixedRateBond(Terms{
		IssueDate:    utils.Date(2010, time.July, 15),
		MaturityDate: utils.Date(2020, time.July, 15),
		Coupon:       0.0125,
		Frequency:    SemiAnnual,
		DayCount:     utils.ActActICMA,
	})
	require.NoError(t, err)
	return b
}

func TestYieldToMaturity_RoundTrip(t *testing.T) {
	t.Parallel()

	b := tips2020(t)
	settle := utils.Date(2017, time.July, 21)
	for _, conv := range []YTMConvention{UKDMO, USStreet, USTreasury} {
		for _, y := range []float64{-0.005, 0.0, 0.0125, 0.04} {
			clean, err := b.CleanPriceFromYTM(settle, y, conv)
			require.NoError(t, err)

			res, err := b.YieldToMaturity(settle, clean, conv)
			require.NoError(t, err, "%s y=%g", conv, y)
			assert.InDelta(t, y, res.Yield, 1e-9, "%s y=%g", conv, y)
			assert.InDelta(t, clean, res.CleanPrice, 1e-8)
			assert.Greater(t, res.Iterations, 0)
		}
	}
}

func TestYieldToMaturity_PremiumBondHasNegativeRealYield(t *testing.T) {
	t.Parallel()

	b := tips2020(t)
	res, err := b.YieldToMaturity(utils.Date(2017, time.July, 21), 104.03502, USTreasury)
	require.NoError(t, err)
	assert.Less(t, res.Yield, 0.0)
	assert.Greater(t, res.Yield, -0.01)
}

func TestYieldToMaturity_InvalidPrice(t *testing.T) {
	t.Parallel()

	b := tips2020(t)
	_, err := b.YieldToMaturity(utils.Date(2017, time.July, 21), -1, UKDMO)
	require.Error(t, err)
}

func TestSolveYield_NoConvergence(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig
	cfg.MaxYieldIterations = 1
	price := func(y float64) (float64, error) { return 100 - 500*y, nil }

	_, _, err := solveYield(90, 0.0, price, cfg)
	require.True(t, errors.Is(err, ErrNoConvergence))
}

func TestSolveYield_FlatPrice(t *testing.T) {
	t.Parallel()

	price := func(float64) (float64, error) { return 100, nil }
	_, _, err := solveYield(90, 0.01, price, config.DefaultConfig)
	require.True(t, errors.Is(err, ErrDerivativeTooSmall))
}

func TestRiskFromYTM(t *testing.T) {
	t.Parallel()

	b := tips2020(t)
	r, err := b.RiskFromYTM(utils.Date(2017, time.July, 21), 0.01, UKDMO)
	require.NoError(t, err)

	assert.Greater(t, r.DollarDuration, 0.0)
	// Three years left: modified duration just under three.
	assert.Greater(t, r.ModifiedDuration, 2.5)
	assert.Less(t, r.ModifiedDuration, 3.0)
	assert.InDelta(t, r.ModifiedDuration*1.005, r.MacaulayDuration, 1e-12)
	assert.Greater(t, r.Convexity, 0.0)
}
