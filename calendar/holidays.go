package calendar

import "time"

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// easterSunday uses the anonymous Gregorian algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(year, time.Month(month), day)
}

// nthWeekday returns the n-th (1-based) weekday of a month; n = -1 is the last.
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	if n < 0 {
		last := date(year, month+1, 0)
		return last.AddDate(0, 0, -((int(last.Weekday()) - int(wd) + 7) % 7))
	}
	first := date(year, month, 1)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+7*(n-1))
}

// observedUS moves Saturday holidays to Friday and Sunday holidays to Monday.
func observedUS(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

// substituteUK moves weekend holidays to the following Monday.
func substituteUK(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, 2)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

func isTargetHoliday(t time.Time) bool {
	y := t.Year()
	easter := easterSunday(y)
	for _, h := range []time.Time{
		date(y, time.January, 1),
		easter.AddDate(0, 0, -2),
		easter.AddDate(0, 0, 1),
		date(y, time.May, 1),
		date(y, time.December, 25),
		date(y, time.December, 26),
	} {
		if sameDay(t, h) {
			return true
		}
	}
	return false
}

func isUSDHoliday(t time.Time) bool {
	y := t.Year()
	holidays := []time.Time{
		observedUS(date(y, time.January, 1)),
		nthWeekday(y, time.January, time.Monday, 3),
		nthWeekday(y, time.February, time.Monday, 3),
		nthWeekday(y, time.May, time.Monday, -1),
		observedUS(date(y, time.July, 4)),
		nthWeekday(y, time.September, time.Monday, 1),
		nthWeekday(y, time.October, time.Monday, 2),
		observedUS(date(y, time.November, 11)),
		nthWeekday(y, time.November, time.Thursday, 4),
		observedUS(date(y, time.December, 25)),
	}
	if y >= 2022 {
		holidays = append(holidays, observedUS(date(y, time.June, 19)))
	}
	// New Year's Day of the following year observed on Dec 31.
	holidays = append(holidays, observedUS(date(y+1, time.January, 1)))
	for _, h := range holidays {
		if sameDay(t, h) {
			return true
		}
	}
	return false
}

func isUKHoliday(t time.Time) bool {
	y := t.Year()
	easter := easterSunday(y)
	christmas := substituteUK(date(y, time.December, 25))
	boxing := substituteUK(date(y, time.December, 26))
	if sameDay(boxing, christmas) {
		boxing = boxing.AddDate(0, 0, 1)
	}
	for _, h := range []time.Time{
		substituteUK(date(y, time.January, 1)),
		easter.AddDate(0, 0, -2),
		easter.AddDate(0, 0, 1),
		nthWeekday(y, time.May, time.Monday, 1),
		nthWeekday(y, time.May, time.Monday, -1),
		nthWeekday(y, time.August, time.Monday, -1),
		christmas,
		boxing,
	} {
		if sameDay(t, h) {
			return true
		}
	}
	return false
}
