package batch

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ilbond/inflation"
)

const tipsJSON = `{
  "task_id": "tips-2020",
  "issue_date": "2010-07-15",
  "maturity_date": "2020-07-15",
  "coupon": 0.0125,
  "frequency": "SEMI_ANNUAL",
  "day_count": "ACT/ACT ICMA",
  "base_index_value": 218.08532,
  "settlement_date": "2017-07-21",
  "face": 100,
  "clean_price": 104.03502,
  "reference_index": 244.65884,
  "last_coupon_index": 244.61839,
  "convention": "US_TREASURY"
}`

const listYAML = `
- task_id: a
  issue_date: "2020-01-01"
  maturity_date: "2030-01-01"
  coupon: 0.01
  base_index_value: 200
  settlement_date: "2024-03-12"
  ytm: 0.015
  reference_index: 220
  last_coupon_index: 218
- task_id: b
  issue_date: "2020-01-01"
  maturity_date: "2030-01-01"
  coupon: 0.01
  base_index_value: 0
  settlement_date: "2024-03-12"
  ytm: 0.015
  reference_index: 220
  last_coupon_index: 218
`

func TestDecode(t *testing.T) {
	t.Parallel()

	inputs, isArray, err := Decode([]byte(tipsJSON), "")
	require.NoError(t, err)
	assert.False(t, isArray)
	require.Len(t, inputs, 1)
	assert.Equal(t, "tips-2020", inputs[0].TaskID)
	require.NotNil(t, inputs[0].CleanPrice)
	assert.Nil(t, inputs[0].YTM)

	inputs, isArray, err = Decode([]byte(listYAML), "yaml")
	require.NoError(t, err)
	assert.True(t, isArray)
	require.Len(t, inputs, 2)
	assert.Equal(t, "2024-03-12", inputs[0].SettlementDate)
	require.NotNil(t, inputs[0].YTM)
	assert.Equal(t, 0.015, *inputs[0].YTM)

	_, _, err = Decode([]byte("  "), "")
	assert.Error(t, err)
	_, _, err = Decode([]byte("[]"), "json")
	assert.Error(t, err)
	_, _, err = Decode([]byte("{}"), "xml")
	assert.Error(t, err)
}

func TestInputTerms_Defaults(t *testing.T) {
	t.Parallel()

	in := Input{IssueDate: "2020-01-01", MaturityDate: "2030-01-01", Coupon: 0.01, BaseIndexValue: 200}
	terms, err := in.Terms()
	require.NoError(t, err)
	assert.Equal(t, "SEMI_ANNUAL", terms.Frequency.String())
	assert.Equal(t, "ACT/ACT ICMA", string(terms.DayCount))

	in.IssueDate = "01/01/2020"
	_, err = in.Terms()
	assert.Error(t, err)
}

func TestValue_FromCleanPrice(t *testing.T) {
	t.Parallel()

	inputs, _, err := Decode([]byte(tipsJSON), "json")
	require.NoError(t, err)

	got, err := Value(inputs[0], zerolog.Nop(), 6)
	require.NoError(t, err)
	assert.Equal(t, "2017-07-21", got.SettlementDate)
	assert.Equal(t, 104.03502, got.CleanPrice)
	assert.Equal(t, 0.020380, got.NominalAccrued)
	assert.Equal(t, 0.022864, got.InflationAccrued)
	assert.Equal(t, 1.121849, got.IndexRatio)
	assert.Less(t, got.RealYield, 0.0)
	assert.Empty(t, got.Error)
}

func TestValue_RejectsAmbiguousPricing(t *testing.T) {
	t.Parallel()

	y, p := 0.01, 100.0
	in := Input{
		IssueDate: "2020-01-01", MaturityDate: "2030-01-01", Coupon: 0.01,
		BaseIndexValue: 200, SettlementDate: "2024-03-12",
		ReferenceIndex: 210, LastCouponIndex: 205,
	}
	_, err := Value(in, zerolog.Nop(), 6)
	assert.Error(t, err)

	in.YTM, in.CleanPrice = &y, &p
	_, err = Value(in, zerolog.Nop(), 6)
	assert.Error(t, err)

	in.CleanPrice = nil
	got, err := Value(in, zerolog.Nop(), 6)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Face)
}

func TestRun_KeepsOrderAndInlinesErrors(t *testing.T) {
	t.Parallel()

	inputs, _, err := Decode([]byte(listYAML), "")
	require.NoError(t, err)
	inputs = append(inputs, inputs[0], inputs[1], inputs[0])
	inputs[2].TaskID, inputs[3].TaskID, inputs[4].TaskID = "c", "d", "e"

	out, err := Run(context.Background(), inputs, 2, zerolog.Nop(), 6)
	require.NoError(t, err)
	require.Len(t, out, len(inputs))

	for i, want := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, want, out[i].TaskID)
	}
	assert.Empty(t, out[0].Error)
	assert.NotEmpty(t, out[1].Error)
	assert.NotEmpty(t, out[3].Error)
	assert.Equal(t, 1.1, out[0].IndexRatio)
	assert.Equal(t, out[0].Principal, out[2].Principal)
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()

	inputs, _, err := Decode([]byte(listYAML), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, inputs, 1, zerolog.Nop(), 6)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValue_ExplicitFaceIsKept(t *testing.T) {
	t.Parallel()

	inputs, _, err := Decode([]byte(listYAML), "")
	require.NoError(t, err)
	in := inputs[0]

	zero := 0.0
	in.Face = &zero
	got, err := Value(in, zerolog.Nop(), 6)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Face)
	assert.Equal(t, 0.0, got.Principal)
	assert.Equal(t, 0.0, got.InflationAccrued)

	million := 1_000_000.0
	in.Face = &million
	got, err = Value(in, zerolog.Nop(), 6)
	require.NoError(t, err)
	assert.Equal(t, million, got.Face)
}

func TestValue_NonFiniteFaceIsAnError(t *testing.T) {
	t.Parallel()

	raw := strings.Replace(listYAML, "  ytm: 0.015\n", "  ytm: 0.015\n  face: .inf\n", 1)
	inputs, _, err := Decode([]byte(raw), "yaml")
	require.NoError(t, err)
	require.NotNil(t, inputs[0].Face)

	assert.NotPanics(t, func() {
		_, err = Value(inputs[0], zerolog.Nop(), 6)
	})
	assert.ErrorIs(t, err, inflation.ErrDomain)

	out, err := Run(context.Background(), inputs[:1], 1, zerolog.Nop(), 6)
	require.NoError(t, err)
	assert.NotEmpty(t, out[0].Error)
}

func TestRun_RejectsNonPositiveWorkers(t *testing.T) {
	t.Parallel()

	inputs, _, err := Decode([]byte(listYAML), "")
	require.NoError(t, err)

	for _, workers := range []int{0, -1} {
		_, err := Run(context.Background(), inputs, workers, zerolog.Nop(), 6)
		assert.Error(t, err, "workers=%d", workers)
	}
}
