package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonth_ClampsToMonthEnd(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in     time.Time
		months int
		want   time.Time
	}{
		{Date(2024, time.January, 31), 1, Date(2024, time.February, 29)},
		{Date(2023, time.January, 31), 1, Date(2023, time.February, 28)},
		{Date(2030, time.January, 1), -6, Date(2029, time.July, 1)},
		{Date(2020, time.August, 31), -6, Date(2020, time.February, 29)},
		{Date(2020, time.March, 15), 12, Date(2021, time.March, 15)},
	}
	for _, tc := range cases {
		got := AddMonth(tc.in, tc.months)
		assert.True(t, got.Equal(tc.want), "AddMonth(%s, %d) = %s, want %s",
			tc.in.Format(DateLayout), tc.months, got.Format(DateLayout), tc.want.Format(DateLayout))
	}
}

func TestIsEndOfMonth(t *testing.T) {
	t.Parallel()

	assert.True(t, IsEndOfMonth(Date(2024, time.February, 29)))
	assert.False(t, IsEndOfMonth(Date(2023, time.February, 27)))
	assert.True(t, IsEndOfMonth(Date(2030, time.June, 30)))
	assert.False(t, IsEndOfMonth(Date(2030, time.January, 1)))
	assert.True(t, EndOfMonth(Date(2023, time.February, 3)).Equal(Date(2023, time.February, 28)))
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2017-07-21")
	require.NoError(t, err)
	assert.True(t, d.Equal(Date(2017, time.July, 21)))

	_, err = ParseDate("21/07/2017")
	require.Error(t, err)
}
