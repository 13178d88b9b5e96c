package bond

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/ilbond/config"
)

// YieldResult is the output of YieldToMaturity.
type YieldResult struct {
	// Yield is the annualised yield as a fraction (0.0125 for 1.25%).
	Yield float64
	// CleanPrice is the price the solved yield reproduces (per 100 par).
	CleanPrice float64
	// Iterations is the number of Newton-Raphson steps taken.
	Iterations int
}

// YieldToMaturity solves for the yield y such that CleanPriceFromYTM(settle, y, conv)
// equals cleanPrice.
//
// The solver uses Newton-Raphson with a central-difference derivative and
// clamps every iterate to the configured yield bounds.
func (b *FixedRateBond) YieldToMaturity(settle time.Time, cleanPrice float64, conv YTMConvention) (YieldResult, error) {
	if cleanPrice <= 0 || math.IsNaN(cleanPrice) {
		return YieldResult{}, fmt.Errorf("YieldToMaturity: clean price must be positive, got %g", cleanPrice)
	}
	acc, err := b.Accrued(settle, 1.0)
	if err != nil {
		return YieldResult{}, err
	}

	cfg := config.GetConfig()
	price := func(y float64) (float64, error) {
		dirty, err := b.dirtyPrice(acc, y, conv)
		if err != nil {
			return 0, err
		}
		return dirty - acc.Interest*Par, nil
	}

	y, iterations, err := solveYield(cleanPrice, b.terms.Coupon, price, cfg)
	if err != nil {
		return YieldResult{}, err
	}
	p, err := price(y)
	if err != nil {
		return YieldResult{}, err
	}
	return YieldResult{Yield: y, CleanPrice: p, Iterations: iterations}, nil
}

// ---------------------------------------------------------------------------
// Newton-Raphson solver (unexported)
// ---------------------------------------------------------------------------

// solveYield finds y such that price(y) == target via Newton-Raphson.
func solveYield(target, guess float64, price func(float64) (float64, error), cfg config.Config) (float64, int, error) {
	y := clamp(guess, cfg.YieldFloor, cfg.YieldCeiling)
	h := cfg.DerivativeBump

	for iter := 0; iter < cfg.MaxYieldIterations; iter++ {
		p, err := price(y)
		if err != nil {
			return y, iter + 1, err
		}
		f := p - target
		if math.Abs(f) < cfg.ConvergenceTolerance {
			return y, iter + 1, nil
		}

		up, err := price(y + h)
		if err != nil {
			return y, iter + 1, err
		}
		down, err := price(y - h)
		if err != nil {
			return y, iter + 1, err
		}
		dPdy := (up - down) / (2 * h)
		if math.Abs(dPdy) < cfg.DerivativeThreshold {
			return y, iter + 1, fmt.Errorf("YieldToMaturity: iteration %d: %w", iter, ErrDerivativeTooSmall)
		}

		y = clamp(y-f/dPdy, cfg.YieldFloor, cfg.YieldCeiling)
	}

	return y, cfg.MaxYieldIterations, fmt.Errorf("YieldToMaturity: %d iterations: %w", cfg.MaxYieldIterations, ErrNoConvergence)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
