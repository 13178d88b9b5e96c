package bond

import (
	"fmt"
	"time"

	"github.com/meenmo/ilbond/calendar"
	"github.com/meenmo/ilbond/utils"
)

// GenerateCouponDates rolls backward from maturity in whole coupon periods.
//
// The returned slice starts with the quasi-coupon date on or before issue
// (the previous coupon date of the first period) followed by every coupon
// date after issue; the last element is maturity. With eom set, rolled dates
// snap to month end. Coupon dates other than maturity are adjusted Modified
// Following on cal; the leading quasi-coupon date is left unadjusted.
func GenerateCouponDates(issue, maturity time.Time, freq Frequency, cal calendar.CalendarID, eom bool) ([]time.Time, error) {
	if !issue.Before(maturity) {
		return nil, fmt.Errorf("GenerateCouponDates: issue %s must precede maturity %s: %w",
			issue.Format(utils.DateLayout), maturity.Format(utils.DateLayout), ErrInvalidTerms)
	}
	if !freq.Valid() {
		return nil, fmt.Errorf("GenerateCouponDates: unsupported frequency %d: %w", int(freq), ErrInvalidTerms)
	}

	months := freq.Months()
	unadjusted := []time.Time{maturity}
	next := maturity
	for k := 1; next.After(issue); k++ {
		next = utils.AddMonth(maturity, -k*months)
		if eom {
			next = utils.EndOfMonth(next)
		}
		unadjusted = append(unadjusted, next)
	}

	n := len(unadjusted)
	dates := make([]time.Time, n)
	for i, d := range unadjusted {
		dates[n-1-i] = d
	}

	for i := 1; i < n-1; i++ {
		dates[i] = calendar.Adjust(cal, dates[i])
	}
	return dates, nil
}
