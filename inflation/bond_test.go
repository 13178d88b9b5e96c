package inflation

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ilbond/bond"
	"github.com/meenmo/ilbond/calendar"
	"github.com/meenmo/ilbond/utils"
)

// fakeEngine returns fixed prices so index-ratio arithmetic can be checked exactly.
type fakeEngine struct {
	dates      []time.Time
	flows      []float64
	dirty      float64
	clean      float64
	accrualPer float64 // accrued per unit face
	err        error
}

func (f *fakeEngine) CouponDates() []time.Time { return f.dates }
func (f *fakeEngine) FlowAmounts() []float64   { return f.flows }

func (f *fakeEngine) DirtyPriceFromYTM(time.Time, float64, bond.YTMConvention) (float64, error) {
	return f.dirty, f.err
}

func (f *fakeEngine) CleanPriceFromYTM(time.Time, float64, bond.YTMConvention) (float64, error) {
	return f.clean, f.err
}

func (f *fakeEngine) AccruedInterest(_ time.Time, face float64) (float64, error) {
	return f.accrualPer * face, f.err
}

func scenarioTerms() Terms {
	return Terms{
		IssueDate:      utils.Date(2020, time.January, 1),
		MaturityDate:   utils.Date(2030, time.January, 1),
		Coupon:         0.01,
		Frequency:      bond.SemiAnnual,
		DayCount:       utils.ActActICMA,
		BaseIndexValue: 200,
	}
}

func newFake(t Terms) *fakeEngine {
	return &fakeEngine{
		dates:      []time.Time{t.IssueDate.AddDate(0, 6, 0), t.MaturityDate},
		flows:      []float64{0.005, 1.005},
		dirty:      101.37,
		clean:      100.92,
		accrualPer: 0.0045,
	}
}

func TestNew_BuildsScheduleEndingAtMaturity(t *testing.T) {
	t.Parallel()

	pairs := [][2]time.Time{
		{utils.Date(2020, time.January, 1), utils.Date(2030, time.January, 1)},
		{utils.Date(2010, time.July, 15), utils.Date(2020, time.July, 15)},
		{utils.Date(2013, time.September, 25), utils.Date(2068, time.March, 22)},
		{utils.Date(2024, time.March, 1), utils.Date(2024, time.April, 30)},
		{utils.Date(2021, time.May, 31), utils.Date(2031, time.February, 28)},
	}
	for _, p := range pairs {
		terms := scenarioTerms()
		terms.IssueDate, terms.MaturityDate = p[0], p[1]

		b, err := New(terms, zerolog.Nop())
		require.NoError(t, err)
		dates := b.CouponDates()
		require.NotEmpty(t, dates)
		assert.True(t, dates[len(dates)-1].Equal(p[1]))
		assert.Len(t, b.FlowAmounts(), len(dates))
		assert.Equal(t, utils.IsEndOfMonth(p[1]), b.EndOfMonth())
	}
}

func TestNew_RejectsIssueNotBeforeMaturity(t *testing.T) {
	t.Parallel()

	terms := scenarioTerms()
	terms.IssueDate = terms.MaturityDate
	_, err := New(terms, zerolog.Nop())
	require.True(t, errors.Is(err, ErrConstruction))

	terms.IssueDate = terms.MaturityDate.AddDate(0, 0, 1)
	_, err = New(terms, zerolog.Nop())
	require.True(t, errors.Is(err, ErrConstruction))
}

func TestNew_RejectsInvalidTerms(t *testing.T) {
	t.Parallel()

	mutate := map[string]func(*Terms){
		"zero base":           func(t *Terms) { t.BaseIndexValue = 0 },
		"negative base":       func(t *Terms) { t.BaseIndexValue = -218 },
		"bad frequency":       func(t *Terms) { t.Frequency = bond.Frequency(5) },
		"negative ex-div":     func(t *Terms) { t.ExDivDays = -1 },
		"negative num ex-div": func(t *Terms) { t.NumExDividendDays = -2 },
		"empty day count":     func(t *Terms) { t.DayCount = "" },
	}
	for name, m := range mutate {
		terms := scenarioTerms()
		m(&terms)
		_, err := New(terms, zerolog.Nop())
		assert.True(t, errors.Is(err, ErrConstruction), name)
	}
}

func TestNewWithEngine_ChecksSchedule(t *testing.T) {
	t.Parallel()

	terms := scenarioTerms()

	eng := newFake(terms)
	eng.dates = []time.Time{terms.IssueDate.AddDate(0, 6, 0), terms.MaturityDate.AddDate(0, 0, -1)}
	_, err := NewWithEngine(terms, eng, zerolog.Nop())
	require.True(t, errors.Is(err, ErrConstruction), "last date must be maturity")

	eng = newFake(terms)
	eng.dates = []time.Time{terms.MaturityDate, terms.MaturityDate}
	_, err = NewWithEngine(terms, eng, zerolog.Nop())
	require.True(t, errors.Is(err, ErrConstruction), "dates must increase")

	eng = newFake(terms)
	eng.flows = eng.flows[:1]
	_, err = NewWithEngine(terms, eng, zerolog.Nop())
	require.True(t, errors.Is(err, ErrConstruction), "flows parallel to dates")

	_, err = NewWithEngine(terms, nil, zerolog.Nop())
	require.True(t, errors.Is(err, ErrConstruction))
}

func TestString(t *testing.T) {
	t.Parallel()

	b, err := New(scenarioTerms(), zerolog.Nop())
	require.NoError(t, err)

	want := strings.Join([]string{
		"OBJECT TYPE   : InflationBond",
		"ISSUE DATE    : 2020-01-01",
		"MATURITY DATE : 2030-01-01",
		"COUPON        : 0.01",
		"FREQUENCY     : SEMI_ANNUAL",
		"ACCRUAL TYPE  : ACT/ACT ICMA",
		"EX-DIV DAYS   : 0",
		"BASE CPI VALUE: 200",
	}, "\n") + "\n"
	assert.Equal(t, want, b.String())
	assert.Equal(t, b.String(), b.String())

	var buf bytes.Buffer
	require.NoError(t, b.Print(&buf))
	assert.Equal(t, want, buf.String())
}

func TestNew_RequiresDayCount(t *testing.T) {
	t.Parallel()

	terms := scenarioTerms()
	terms.DayCount = ""
	_, err := New(terms, zerolog.Nop())
	require.ErrorIs(t, err, ErrConstruction)
	assert.True(t, strings.HasPrefix(err.Error(), "New: "), err.Error())

	_, err = NewWithEngine(terms, newFake(terms), zerolog.Nop())
	require.ErrorIs(t, err, ErrConstruction)
	assert.True(t, strings.HasPrefix(err.Error(), "NewWithEngine: "), err.Error())
}

func TestNew_DefaultsCalendar(t *testing.T) {
	t.Parallel()

	b, err := New(scenarioTerms(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, calendar.NONE, b.Terms().Calendar)
	assert.Equal(t, utils.ActActICMA, b.Terms().DayCount)
}

func TestNew_LogsConstruction(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	_, err := New(scenarioTerms(), log)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "inflation bond constructed")
	assert.Contains(t, buf.String(), `"base_index":200`)
}

func TestBond_ConcurrentValuation(t *testing.T) {
	t.Parallel()

	b, err := New(scenarioTerms(), zerolog.Nop())
	require.NoError(t, err)
	settle := utils.Date(2024, time.March, 12)
	want, err := b.Valuation(settle, 100, 0.015, 240, 238, bond.USStreet)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := b.Valuation(settle, 100, 0.015, 240, 238, bond.USStreet)
			if err != nil {
				errs <- err
				return
			}
			if got != want {
				errs <- errors.New("valuation differs between goroutines")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
