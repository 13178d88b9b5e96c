// Package inflation values inflation-linked bonds by scaling a nominal
// bond's price and accrued interest with an index ratio.
//
// Principal and accrued interest use the reference index fixing for the
// settlement date. The flat price uses the fixing at the last coupon date.
package inflation

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/ilbond/bond"
	"github.com/meenmo/ilbond/calendar"
	"github.com/meenmo/ilbond/utils"
)

// NominalEngine prices the unindexed bond.
type NominalEngine interface {
	CouponDates() []time.Time
	FlowAmounts() []float64
	DirtyPriceFromYTM(settle time.Time, ytm float64, conv bond.YTMConvention) (float64, error)
	CleanPriceFromYTM(settle time.Time, ytm float64, conv bond.YTMConvention) (float64, error)
	AccruedInterest(settle time.Time, face float64) (float64, error)
}

// Terms are the fixed terms of an inflation-linked bond.
type Terms struct {
	IssueDate    time.Time
	MaturityDate time.Time
	// Coupon is the real annual coupon before indexation, as a fraction.
	Coupon    float64
	Frequency bond.Frequency
	DayCount  utils.DayCount
	ExDivDays int
	// NumExDividendDays, when non-zero, replaces ExDivDays as the ex-dividend
	// window handed to the nominal engine.
	NumExDividendDays int
	Calendar          calendar.CalendarID
	// BaseIndexValue is the reference index level at issue.
	BaseIndexValue float64
}

// Bond is an inflation-linked bond. Its terms and schedule never change
// after construction, so a Bond may be shared between goroutines.
type Bond struct {
	terms       Terms
	endOfMonth  bool
	engine      NominalEngine
	couponDates []time.Time
	flows       []float64
	log         zerolog.Logger
}

// New validates terms and builds a nominal fixed-rate engine for the schedule.
func New(t Terms, log zerolog.Logger) (*Bond, error) {
	t = withDefaults(t)
	if err := validate("New", t); err != nil {
		return nil, err
	}
	eom := utils.IsEndOfMonth(t.MaturityDate)

	exDiv := t.ExDivDays
	if t.NumExDividendDays != 0 {
		exDiv = t.NumExDividendDays
	}
	engine, err := bond.NewFixedRateBond(bond.Terms{
		IssueDate:    t.IssueDate,
		MaturityDate: t.MaturityDate,
		Coupon:       t.Coupon,
		Frequency:    t.Frequency,
		DayCount:     t.DayCount,
		ExDivDays:    exDiv,
		Calendar:     t.Calendar,
		EndOfMonth:   eom,
	})
	if err != nil {
		return nil, fmt.Errorf("New: %w: %w", ErrConstruction, err)
	}
	return newBond("New", t, eom, engine, log)
}

// NewWithEngine validates terms and uses engine for nominal pricing.
func NewWithEngine(t Terms, engine NominalEngine, log zerolog.Logger) (*Bond, error) {
	t = withDefaults(t)
	if err := validate("NewWithEngine", t); err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, fmt.Errorf("NewWithEngine: nil engine: %w", ErrConstruction)
	}
	return newBond("NewWithEngine", t, utils.IsEndOfMonth(t.MaturityDate), engine, log)
}

func withDefaults(t Terms) Terms {
	if t.Calendar == "" {
		t.Calendar = calendar.NONE
	}
	return t
}

func validate(op string, t Terms) error {
	if !t.IssueDate.Before(t.MaturityDate) {
		return fmt.Errorf("%s: issue date %s must precede maturity date %s: %w", op,
			t.IssueDate.Format(utils.DateLayout), t.MaturityDate.Format(utils.DateLayout), ErrConstruction)
	}
	if !positive(t.BaseIndexValue) {
		return fmt.Errorf("%s: base index value must be positive, got %g: %w", op, t.BaseIndexValue, ErrConstruction)
	}
	if math.IsNaN(t.Coupon) || math.IsInf(t.Coupon, 0) {
		return fmt.Errorf("%s: coupon must be finite: %w", op, ErrConstruction)
	}
	if t.DayCount == "" {
		return fmt.Errorf("%s: day count is required: %w", op, ErrConstruction)
	}
	if !t.Frequency.Valid() {
		return fmt.Errorf("%s: unsupported frequency %d: %w", op, int(t.Frequency), ErrConstruction)
	}
	if t.ExDivDays < 0 || t.NumExDividendDays < 0 {
		return fmt.Errorf("%s: ex-dividend days must not be negative: %w", op, ErrConstruction)
	}
	return nil
}

func newBond(op string, t Terms, eom bool, engine NominalEngine, log zerolog.Logger) (*Bond, error) {
	dates := engine.CouponDates()
	flows := engine.FlowAmounts()
	if len(dates) == 0 || len(dates) != len(flows) {
		return nil, fmt.Errorf("%s: engine returned %d coupon dates and %d flows: %w", op, len(dates), len(flows), ErrConstruction)
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("%s: coupon dates not increasing at %s: %w", op, dates[i].Format(utils.DateLayout), ErrConstruction)
		}
	}
	if last := dates[len(dates)-1]; !last.Equal(t.MaturityDate) {
		return nil, fmt.Errorf("%s: last coupon date %s is not maturity %s: %w", op,
			last.Format(utils.DateLayout), t.MaturityDate.Format(utils.DateLayout), ErrConstruction)
	}

	b := &Bond{
		terms:       t,
		endOfMonth:  eom,
		engine:      engine,
		couponDates: dates,
		flows:       flows,
		log:         log.With().Str("component", "inflation_bond").Logger(),
	}
	b.log.Debug().
		Time("issue", t.IssueDate).
		Time("maturity", t.MaturityDate).
		Float64("base_index", t.BaseIndexValue).
		Int("coupons", len(dates)).
		Bool("end_of_month", eom).
		Msg("inflation bond constructed")
	return b, nil
}

// Terms returns the bond's construction terms.
func (b *Bond) Terms() Terms { return b.terms }

// BaseIndexValue is the index level at issue.
func (b *Bond) BaseIndexValue() float64 { return b.terms.BaseIndexValue }

// EndOfMonth reports whether maturity is the last day of its month, in
// which case every coupon date rolls to month end.
func (b *Bond) EndOfMonth() bool { return b.endOfMonth }

// Nominal returns the engine pricing the unindexed bond.
func (b *Bond) Nominal() NominalEngine { return b.engine }

// CouponDates returns the coupon dates in ascending order; the last is maturity.
func (b *Bond) CouponDates() []time.Time {
	out := make([]time.Time, len(b.couponDates))
	copy(out, b.couponDates)
	return out
}

// FlowAmounts returns the nominal flow per unit face on each coupon date.
func (b *Bond) FlowAmounts() []float64 {
	out := make([]float64, len(b.flows))
	copy(out, b.flows)
	return out
}
