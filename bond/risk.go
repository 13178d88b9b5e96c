package bond

import (
	"time"

	"github.com/meenmo/ilbond/config"
)

// Risk holds yield sensitivities of the dirty price per 100 par.
type Risk struct {
	DirtyPrice float64
	// DollarDuration is -dP/dy.
	DollarDuration   float64
	ModifiedDuration float64
	MacaulayDuration float64
	Convexity        float64
}

// RiskFromYTM bumps ytm by the configured risk bump in both directions.
func (b *FixedRateBond) RiskFromYTM(settle time.Time, ytm float64, conv YTMConvention) (Risk, error) {
	acc, err := b.Accrued(settle, 1.0)
	if err != nil {
		return Risk{}, err
	}
	h := config.GetConfig().RiskBump

	p0, err := b.dirtyPrice(acc, ytm, conv)
	if err != nil {
		return Risk{}, err
	}
	up, err := b.dirtyPrice(acc, ytm+h, conv)
	if err != nil {
		return Risk{}, err
	}
	down, err := b.dirtyPrice(acc, ytm-h, conv)
	if err != nil {
		return Risk{}, err
	}

	f := float64(b.terms.Frequency.PeriodsPerYear())
	dd := -(up - down) / (2 * h)
	md := dd / p0
	return Risk{
		DirtyPrice:       p0,
		DollarDuration:   dd,
		ModifiedDuration: md,
		MacaulayDuration: md * (1.0 + ytm/f),
		Convexity:        (up + down - 2*p0) / (p0 * h * h),
	}, nil
}
