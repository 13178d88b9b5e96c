package bond

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/ilbond/calendar"
	"github.com/meenmo/ilbond/utils"
)

// Terms are the fixed contractual terms of a nominal fixed-rate bond.
type Terms struct {
	IssueDate    time.Time
	MaturityDate time.Time
	// Coupon is the annual coupon rate as a fraction (0.0125 for 1.25%).
	Coupon    float64
	Frequency Frequency
	DayCount  utils.DayCount
	// ExDivDays is the number of business days before a coupon date from
	// which a buyer no longer receives that coupon.
	ExDivDays  int
	Calendar   calendar.CalendarID
	EndOfMonth bool
}

// FixedRateBond prices a nominal fixed-rate bond off its yield.
//
// All methods are read-only; a FixedRateBond is safe for concurrent use.
type FixedRateBond struct {
	terms Terms
	// dates[0] is the quasi-coupon date on or before issue; dates[1:] are
	// coupon dates, the last being maturity.
	dates     []time.Time
	cashflows []Cashflow
}

// Accrual is the accrued-interest state of a bond at a settlement date.
type Accrual struct {
	Settlement time.Time
	// PCD and NCD are the previous and next coupon dates bracketing settlement.
	PCD time.Time
	NCD time.Time
	// Factor is the accrued year fraction, net of one period when ex-dividend.
	Factor float64
	// Days is the day-count numerator from PCD to settlement.
	Days int
	// Alpha is the fraction of the current coupon period left to run.
	Alpha float64
	// ExDividend is true when settlement is past the ex-dividend date of NCD.
	ExDividend bool
	Interest   float64

	next int // index into dates of NCD
}

// NewFixedRateBond validates terms and builds the coupon schedule.
func NewFixedRateBond(t Terms) (*FixedRateBond, error) {
	if math.IsNaN(t.Coupon) || math.IsInf(t.Coupon, 0) {
		return nil, fmt.Errorf("NewFixedRateBond: coupon must be finite: %w", ErrInvalidTerms)
	}
	if t.ExDivDays < 0 {
		return nil, fmt.Errorf("NewFixedRateBond: ExDivDays must not be negative: %w", ErrInvalidTerms)
	}
	if t.DayCount == "" {
		t.DayCount = utils.ActActICMA
	}
	if t.Calendar == "" {
		t.Calendar = calendar.NONE
	}

	dates, err := GenerateCouponDates(t.IssueDate, t.MaturityDate, t.Frequency, t.Calendar, t.EndOfMonth)
	if err != nil {
		return nil, err
	}

	cpn := t.Coupon / float64(t.Frequency.PeriodsPerYear())
	cfs := make([]Cashflow, 0, len(dates)-1)
	for _, d := range dates[1:] {
		cfs = append(cfs, Cashflow{Date: d, Coupon: cpn})
	}
	cfs[len(cfs)-1].Principal = Redemption

	return &FixedRateBond{terms: t, dates: dates, cashflows: cfs}, nil
}

// CouponDates returns the coupon dates after issue in ascending order.
func (b *FixedRateBond) CouponDates() []time.Time {
	out := make([]time.Time, len(b.dates)-1)
	copy(out, b.dates[1:])
	return out
}

// Cashflows returns the coupon and redemption flows per unit face.
func (b *FixedRateBond) Cashflows() []Cashflow {
	out := make([]Cashflow, len(b.cashflows))
	copy(out, b.cashflows)
	return out
}

// FlowAmounts returns the total flow per unit face on each coupon date.
func (b *FixedRateBond) FlowAmounts() []float64 {
	out := make([]float64, len(b.cashflows))
	for i, cf := range b.cashflows {
		out[i] = cf.Amount()
	}
	return out
}

// Accrued computes accrued interest for the given face at settle.
//
// A coupon paid on the settlement date belongs to the seller. Past the
// ex-dividend date the accrual is net of the upcoming coupon and negative.
func (b *FixedRateBond) Accrued(settle time.Time, face float64) (Accrual, error) {
	if settle.Before(b.terms.IssueDate) {
		return Accrual{}, fmt.Errorf("Accrued: settlement %s before issue %s: %w",
			settle.Format(utils.DateLayout), b.terms.IssueDate.Format(utils.DateLayout), ErrSettlement)
	}

	next := -1
	for i := 1; i < len(b.dates); i++ {
		if b.dates[i].After(settle) {
			next = i
			break
		}
	}
	if next < 0 {
		return Accrual{}, fmt.Errorf("Accrued: settlement %s on or after maturity %s: %w",
			settle.Format(utils.DateLayout), b.terms.MaturityDate.Format(utils.DateLayout), ErrSettlement)
	}

	pcd, ncd := b.dates[next-1], b.dates[next]
	freq := b.terms.Frequency.PeriodsPerYear()
	factor, days := utils.AccrualFactor(b.terms.DayCount, pcd, settle, ncd, freq)
	alpha := 1.0 - factor*float64(freq)

	exDivDate := calendar.AddBusinessDays(b.terms.Calendar, ncd, -b.terms.ExDivDays)
	exDiv := settle.After(exDivDate)
	if exDiv {
		factor -= 1.0 / float64(freq)
	}

	return Accrual{
		Settlement: settle,
		PCD:        pcd,
		NCD:        ncd,
		Factor:     factor,
		Days:       days,
		Alpha:      alpha,
		ExDividend: exDiv,
		Interest:   factor * face * b.terms.Coupon,
		next:       next,
	}, nil
}

// AccruedInterest returns the nominal accrued interest for face at settle.
func (b *FixedRateBond) AccruedInterest(settle time.Time, face float64) (float64, error) {
	acc, err := b.Accrued(settle, face)
	if err != nil {
		return 0, err
	}
	return acc.Interest, nil
}

// DirtyPriceFromYTM returns the full price per 100 par at settle for yield ytm.
//
// With v = 1/(1+ytm/f) the k-th remaining flow (k = 0 for the next coupon)
// is discounted by v^(alpha+k), except that US_TREASURY, and US_STREET in
// the final period, discount the fractional period with simple interest.
func (b *FixedRateBond) DirtyPriceFromYTM(settle time.Time, ytm float64, conv YTMConvention) (float64, error) {
	acc, err := b.Accrued(settle, 1.0)
	if err != nil {
		return 0, err
	}
	return b.dirtyPrice(acc, ytm, conv)
}

// CleanPriceFromYTM returns the quoted price per 100 par: dirty less accrued.
func (b *FixedRateBond) CleanPriceFromYTM(settle time.Time, ytm float64, conv YTMConvention) (float64, error) {
	acc, err := b.Accrued(settle, 1.0)
	if err != nil {
		return 0, err
	}
	dirty, err := b.dirtyPrice(acc, ytm, conv)
	if err != nil {
		return 0, err
	}
	return dirty - acc.Interest*Par, nil
}

// CurrentYield is the annual coupon over the clean price.
func (b *FixedRateBond) CurrentYield(cleanPrice float64) (float64, error) {
	if cleanPrice <= 0 {
		return 0, fmt.Errorf("CurrentYield: clean price must be positive, got %g", cleanPrice)
	}
	return b.terms.Coupon * Par / cleanPrice, nil
}

func (b *FixedRateBond) dirtyPrice(acc Accrual, ytm float64, conv YTMConvention) (float64, error) {
	f := float64(b.terms.Frequency.PeriodsPerYear())
	base := 1.0 + ytm/f
	if base <= 0 || math.IsNaN(ytm) || math.IsInf(ytm, 0) {
		return 0, fmt.Errorf("DirtyPriceFromYTM: yield %g: %w", ytm, ErrInvalidYield)
	}
	v := 1.0 / base

	remaining := b.cashflows[acc.next-1:]
	n := len(remaining) - 1

	var simple float64
	switch conv {
	case UKDMO, USStreet, USTreasury:
		simple = 1.0 + acc.Alpha*ytm/f
		if simple <= 0 && (conv == USTreasury || (conv == USStreet && n == 0)) {
			return 0, fmt.Errorf("DirtyPriceFromYTM: yield %g: %w", ytm, ErrInvalidYield)
		}
	default:
		return 0, fmt.Errorf("DirtyPriceFromYTM: unknown yield convention %q", conv)
	}

	amounts := make([]float64, len(remaining))
	discounts := make([]float64, len(remaining))
	for k, cf := range remaining {
		amounts[k] = cf.Amount()
		if k == 0 && acc.ExDividend {
			amounts[k] = cf.Principal
		}

		switch {
		case conv == USTreasury, conv == USStreet && n == 0:
			discounts[k] = math.Pow(v, float64(k)) / simple
		default:
			discounts[k] = math.Pow(v, acc.Alpha+float64(k))
		}
	}

	dirty := floats.Dot(amounts, discounts) * Par
	if math.IsNaN(dirty) || math.IsInf(dirty, 0) {
		return 0, fmt.Errorf("DirtyPriceFromYTM: yield %g gives non-finite price: %w", ytm, ErrInvalidYield)
	}
	return dirty, nil
}
