// Package report shapes valuation results for output, rounding every figure
// to a fixed number of decimals.
package report

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/meenmo/ilbond/bond"
	"github.com/meenmo/ilbond/inflation"
	"github.com/meenmo/ilbond/utils"
)

// Round rounds x half away from zero to the given decimals. NaN and
// infinities are returned unchanged.
func Round(x float64, decimals int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(decimals).Float64()
	return f
}

// Valuation is the flat output record for one inflation bond valuation.
type Valuation struct {
	TaskID           string  `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	SettlementDate   string  `json:"settlement_date" yaml:"settlement_date"`
	Face             float64 `json:"face" yaml:"face"`
	RealYield        float64 `json:"real_yield" yaml:"real_yield"`
	IndexRatio       float64 `json:"index_ratio" yaml:"index_ratio"`
	LastCouponRatio  float64 `json:"last_coupon_index_ratio" yaml:"last_coupon_index_ratio"`
	DirtyPrice       float64 `json:"dirty_price" yaml:"dirty_price"`
	CleanPrice       float64 `json:"clean_price" yaml:"clean_price"`
	FlatPrice        float64 `json:"flat_price" yaml:"flat_price"`
	NominalAccrued   float64 `json:"nominal_accrued" yaml:"nominal_accrued"`
	InflationAccrued float64 `json:"inflation_accrued" yaml:"inflation_accrued"`
	NominalPrincipal float64 `json:"nominal_principal" yaml:"nominal_principal"`
	Principal        float64 `json:"principal" yaml:"principal"`
	Error            string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// FromValuation rounds v into an output record.
func FromValuation(taskID string, ytm float64, v inflation.Valuation, decimals int32) Valuation {
	r := func(x float64) float64 { return Round(x, decimals) }
	return Valuation{
		TaskID:           taskID,
		SettlementDate:   v.Principal.SettlementDate.Format(utils.DateLayout),
		Face:             v.Principal.Face,
		RealYield:        r(ytm),
		IndexRatio:       r(v.Principal.IndexRatio),
		LastCouponRatio:  r(v.FlatPrice.IndexRatio),
		DirtyPrice:       r(v.Principal.DirtyPrice),
		CleanPrice:       r(v.FlatPrice.CleanPrice),
		FlatPrice:        r(v.FlatPrice.FlatPrice),
		NominalAccrued:   r(v.Accrued.NominalAccrued),
		InflationAccrued: r(v.Accrued.InflationAccrued),
		NominalPrincipal: r(v.Principal.NominalPrincipal),
		Principal:        r(v.Principal.Principal),
	}
}

// Failed builds an output record carrying only an error.
func Failed(taskID string, err error) Valuation {
	return Valuation{TaskID: taskID, Error: err.Error()}
}

// Cashflow is one scheduled real flow scaled to a face amount.
type Cashflow struct {
	Date      string  `json:"date" yaml:"date"`
	Coupon    float64 `json:"coupon" yaml:"coupon"`
	Principal float64 `json:"principal" yaml:"principal"`
	Amount    float64 `json:"amount" yaml:"amount"`
}

// Cashflows scales per-unit flows to face and rounds them.
func Cashflows(flows []bond.Cashflow, face float64, decimals int32) []Cashflow {
	out := make([]Cashflow, len(flows))
	for i, cf := range flows {
		out[i] = Cashflow{
			Date:      cf.Date.Format(utils.DateLayout),
			Coupon:    Round(cf.Coupon*face, decimals),
			Principal: Round(cf.Principal*face, decimals),
			Amount:    Round(cf.Amount()*face, decimals),
		}
	}
	return out
}
