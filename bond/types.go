package bond

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// Par is the quotation par: prices are per 100 of face.
	Par = 100.0
	// Redemption is the fraction of face repaid at maturity.
	Redemption = 1.0
)

var (
	// ErrInvalidTerms is returned when bond terms cannot produce a schedule.
	ErrInvalidTerms = errors.New("invalid bond terms")
	// ErrSettlement is returned when a settlement date falls outside the bond's life.
	ErrSettlement = errors.New("settlement date outside bond life")
	// ErrInvalidYield is returned when a yield makes the discount base non-positive
	// or the resulting price non-finite.
	ErrInvalidYield = errors.New("invalid yield")
	// ErrNoConvergence is returned when the yield solver exhausts its iterations.
	ErrNoConvergence = errors.New("yield solver did not converge")
	// ErrDerivativeTooSmall is returned when the price/yield slope vanishes.
	ErrDerivativeTooSmall = errors.New("yield solver derivative too small")
)

// Cashflow is a single dated cash payment for a bond.
//
// Amounts are per unit of face.
type Cashflow struct {
	Date      time.Time
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// Frequency is the number of coupon payments per year.
type Frequency int

const (
	Annual     Frequency = 1
	SemiAnnual Frequency = 2
	Quarterly  Frequency = 4
	Monthly    Frequency = 12
)

// PeriodsPerYear returns the number of coupons per year.
func (f Frequency) PeriodsPerYear() int {
	return int(f)
}

// Months returns the length of one coupon period in months.
func (f Frequency) Months() int {
	if !f.Valid() {
		return 0
	}
	return 12 / int(f)
}

// Valid reports whether f is a supported frequency.
func (f Frequency) Valid() bool {
	switch f {
	case Annual, SemiAnnual, Quarterly, Monthly:
		return true
	}
	return false
}

func (f Frequency) String() string {
	switch f {
	case Annual:
		return "ANNUAL"
	case SemiAnnual:
		return "SEMI_ANNUAL"
	case Quarterly:
		return "QUARTERLY"
	case Monthly:
		return "MONTHLY"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}

// ParseFrequency maps a frequency name to a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ANNUAL", "1":
		return Annual, nil
	case "SEMI_ANNUAL", "SEMIANNUAL", "SEMI", "2":
		return SemiAnnual, nil
	case "QUARTERLY", "4":
		return Quarterly, nil
	case "MONTHLY", "12":
		return Monthly, nil
	default:
		return 0, fmt.Errorf("ParseFrequency: unknown frequency %q", s)
	}
}

// YTMConvention selects how the fractional first period is discounted.
type YTMConvention string

const (
	// UKDMO compounds over the fractional first period.
	UKDMO YTMConvention = "UK_DMO"
	// USStreet compounds, except in the final coupon period where simple
	// interest applies.
	USStreet YTMConvention = "US_STREET"
	// USTreasury discounts the fractional first period with simple interest.
	USTreasury YTMConvention = "US_TREASURY"
)

// ParseYTMConvention maps a convention name to a YTMConvention.
func ParseYTMConvention(s string) (YTMConvention, error) {
	switch c := YTMConvention(strings.ToUpper(strings.TrimSpace(s))); c {
	case UKDMO, USStreet, USTreasury:
		return c, nil
	default:
		return "", fmt.Errorf("ParseYTMConvention: unknown convention %q", s)
	}
}
