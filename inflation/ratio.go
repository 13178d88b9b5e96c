package inflation

import (
	"fmt"
	"math"
)

// IndexRatio scales a nominal amount by index growth since issue:
// fixing / base. Both must be positive and finite.
func IndexRatio(fixing, base float64) (float64, error) {
	if !positive(base) {
		return 0, fmt.Errorf("IndexRatio: base index value must be positive, got %g: %w", base, ErrDomain)
	}
	if !positive(fixing) {
		return 0, fmt.Errorf("IndexRatio: index fixing must be positive, got %g: %w", fixing, ErrDomain)
	}
	return fixing / base, nil
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
