// Package batch decodes inflation bond valuation requests and values them
// concurrently.
package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/ilbond/bond"
	"github.com/meenmo/ilbond/calendar"
	"github.com/meenmo/ilbond/inflation"
	"github.com/meenmo/ilbond/report"
	"github.com/meenmo/ilbond/utils"
)

// Input is one bond and the market inputs to value it with.
// Exactly one of YTM and CleanPrice must be set; a clean price is first
// converted to a real yield. Face defaults to par only when absent.
type Input struct {
	TaskID            string   `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	IssueDate         string   `json:"issue_date" yaml:"issue_date"`
	MaturityDate      string   `json:"maturity_date" yaml:"maturity_date"`
	Coupon            float64  `json:"coupon" yaml:"coupon"`
	Frequency         string   `json:"frequency" yaml:"frequency"`
	DayCount          string   `json:"day_count" yaml:"day_count"`
	ExDivDays         int      `json:"ex_div_days" yaml:"ex_div_days"`
	NumExDividendDays int      `json:"num_ex_dividend_days" yaml:"num_ex_dividend_days"`
	Calendar          string   `json:"calendar" yaml:"calendar"`
	BaseIndexValue    float64  `json:"base_index_value" yaml:"base_index_value"`
	SettlementDate    string   `json:"settlement_date" yaml:"settlement_date"`
	Face              *float64 `json:"face,omitempty" yaml:"face,omitempty"`
	YTM               *float64 `json:"ytm,omitempty" yaml:"ytm,omitempty"`
	CleanPrice        *float64 `json:"clean_price,omitempty" yaml:"clean_price,omitempty"`
	ReferenceIndex    float64  `json:"reference_index" yaml:"reference_index"`
	LastCouponIndex   float64  `json:"last_coupon_index" yaml:"last_coupon_index"`
	Convention        string   `json:"convention" yaml:"convention"`
}

// Decode parses a single request or a list of requests. format is "json"
// or "yaml"; an empty format is inferred from the content.
func Decode(raw []byte, format string) ([]Input, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if format == "" {
		format = "yaml"
		if trimmed[0] == '{' || trimmed[0] == '[' {
			format = "json"
		}
	}

	var unmarshal func([]byte, any) error
	isArray := false
	switch strings.ToLower(format) {
	case "json":
		unmarshal = json.Unmarshal
		isArray = trimmed[0] == '['
	case "yaml", "yml":
		unmarshal = yaml.Unmarshal
		isArray = trimmed[0] == '-' || trimmed[0] == '['
	default:
		return nil, false, fmt.Errorf("unsupported input format %q", format)
	}

	if isArray {
		var inputs []Input
		if err := unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var input Input
	if err := unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []Input{input}, false, nil
}

// Terms converts the bond fields of in into inflation bond terms.
func (in Input) Terms() (inflation.Terms, error) {
	issue, err := utils.ParseDate(in.IssueDate)
	if err != nil {
		return inflation.Terms{}, fmt.Errorf("invalid issue_date: %w", err)
	}
	maturity, err := utils.ParseDate(in.MaturityDate)
	if err != nil {
		return inflation.Terms{}, fmt.Errorf("invalid maturity_date: %w", err)
	}
	freq, err := bond.ParseFrequency(defaultString(in.Frequency, "SEMI_ANNUAL"))
	if err != nil {
		return inflation.Terms{}, err
	}
	dc, err := utils.ParseDayCount(defaultString(in.DayCount, string(utils.ActActICMA)))
	if err != nil {
		return inflation.Terms{}, err
	}
	cal, err := calendar.Parse(in.Calendar)
	if err != nil {
		return inflation.Terms{}, err
	}
	return inflation.Terms{
		IssueDate:         issue,
		MaturityDate:      maturity,
		Coupon:            in.Coupon,
		Frequency:         freq,
		DayCount:          dc,
		ExDivDays:         in.ExDivDays,
		NumExDividendDays: in.NumExDividendDays,
		Calendar:          cal,
		BaseIndexValue:    in.BaseIndexValue,
	}, nil
}

type yieldSolver interface {
	YieldToMaturity(settle time.Time, cleanPrice float64, conv bond.YTMConvention) (bond.YieldResult, error)
}

// Value builds the bond described by in and values it.
func Value(in Input, log zerolog.Logger, decimals int32) (report.Valuation, error) {
	terms, err := in.Terms()
	if err != nil {
		return report.Valuation{}, err
	}
	settle, err := utils.ParseDate(in.SettlementDate)
	if err != nil {
		return report.Valuation{}, fmt.Errorf("invalid settlement_date: %w", err)
	}
	conv, err := bond.ParseYTMConvention(defaultString(in.Convention, string(bond.UKDMO)))
	if err != nil {
		return report.Valuation{}, err
	}
	face := bond.Par
	if in.Face != nil {
		face = *in.Face
	}

	b, err := inflation.New(terms, log)
	if err != nil {
		return report.Valuation{}, err
	}

	var ytm float64
	switch {
	case in.YTM != nil && in.CleanPrice != nil:
		return report.Valuation{}, fmt.Errorf("set only one of ytm and clean_price")
	case in.YTM != nil:
		ytm = *in.YTM
	case in.CleanPrice != nil:
		solver, ok := b.Nominal().(yieldSolver)
		if !ok {
			return report.Valuation{}, fmt.Errorf("nominal engine cannot solve yields")
		}
		res, err := solver.YieldToMaturity(settle, *in.CleanPrice, conv)
		if err != nil {
			return report.Valuation{}, err
		}
		ytm = res.Yield
	default:
		return report.Valuation{}, fmt.Errorf("one of ytm and clean_price is required")
	}

	v, err := b.Valuation(settle, face, ytm, in.ReferenceIndex, in.LastCouponIndex, conv)
	if err != nil {
		return report.Valuation{}, err
	}
	return report.FromValuation(in.TaskID, ytm, v, decimals), nil
}

// Run values every input with at most workers concurrent valuations.
// Results keep input order; a failed input yields a record with Error set.
func Run(ctx context.Context, inputs []Input, workers int, log zerolog.Logger, decimals int32) ([]report.Valuation, error) {
	if workers < 1 {
		return nil, fmt.Errorf("Run: workers must be at least 1, got %d", workers)
	}
	out := make([]report.Valuation, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Value(in, log, decimals)
			if err != nil {
				log.Warn().Err(err).Str("task_id", in.TaskID).Msg("valuation failed")
				out[i] = report.Failed(in.TaskID, err)
				return nil
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
