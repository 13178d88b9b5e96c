package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/meenmo/ilbond/bond"
	"github.com/meenmo/ilbond/cmd/ilbprice/internal/batch"
	"github.com/meenmo/ilbond/inflation"
	"github.com/meenmo/ilbond/report"
	"github.com/meenmo/ilbond/utils"
)

// bondFlags registers the flags describing one bond.
func bondFlags(fs *pflag.FlagSet) {
	fs.String("issue", "", "issue date (YYYY-MM-DD)")
	fs.String("maturity", "", "maturity date (YYYY-MM-DD)")
	fs.Float64("coupon", 0, "real annual coupon as a fraction, e.g. 0.0125")
	fs.String("frequency", "SEMI_ANNUAL", "ANNUAL, SEMI_ANNUAL, QUARTERLY or MONTHLY")
	fs.String("day-count", string(utils.ActActICMA), "accrual day count")
	fs.Int("ex-div-days", 0, "ex-dividend business days")
	fs.Int("num-ex-dividend-days", 0, "ex-dividend window override")
	fs.String("calendar", "NONE", "holiday calendar")
	fs.Float64("base-index", 0, "reference index level at issue")
}

func settlementFlags(fs *pflag.FlagSet) {
	fs.String("settle", "", "settlement date (YYYY-MM-DD)")
	fs.Float64("ytm", 0, "real yield to maturity as a fraction")
	fs.String("convention", string(bond.UKDMO), "UK_DMO, US_STREET or US_TREASURY")
}

func inputFromFlags(fs *pflag.FlagSet) batch.Input {
	str := func(name string) string { v, _ := fs.GetString(name); return v }
	num := func(name string) float64 { v, _ := fs.GetFloat64(name); return v }
	integer := func(name string) int { v, _ := fs.GetInt(name); return v }
	return batch.Input{
		IssueDate:         str("issue"),
		MaturityDate:      str("maturity"),
		Coupon:            num("coupon"),
		Frequency:         str("frequency"),
		DayCount:          str("day-count"),
		ExDivDays:         integer("ex-div-days"),
		NumExDividendDays: integer("num-ex-dividend-days"),
		Calendar:          str("calendar"),
		BaseIndexValue:    num("base-index"),
	}
}

func bondFromFlags(fs *pflag.FlagSet) (*inflation.Bond, error) {
	terms, err := inputFromFlags(fs).Terms()
	if err != nil {
		return nil, err
	}
	return inflation.New(terms, log)
}

func settlementFromFlags(fs *pflag.FlagSet) (time.Time, float64, bond.YTMConvention, error) {
	s, _ := fs.GetString("settle")
	settle, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, 0, "", fmt.Errorf("invalid --settle: %w", err)
	}
	ytm, _ := fs.GetFloat64("ytm")
	c, _ := fs.GetString("convention")
	conv, err := bond.ParseYTMConvention(c)
	if err != nil {
		return time.Time{}, 0, "", err
	}
	return settle, ytm, conv, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the bond's construction terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bondFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		return b.Print(cmd.OutOrStdout())
	},
}

var principalCmd = &cobra.Command{
	Use:   "principal",
	Short: "Inflation-adjusted principal for a face amount",
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := cmd.Flags()
		b, err := bondFromFlags(fs)
		if err != nil {
			return err
		}
		settle, ytm, conv, err := settlementFromFlags(fs)
		if err != nil {
			return err
		}
		face, _ := fs.GetFloat64("face")
		ref, _ := fs.GetFloat64("reference-index")
		res, err := b.InflationPrincipal(settle, face, ytm, ref, conv)
		if err != nil {
			return err
		}
		d := cfg.OutputDecimals
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"settlement_date":   settle.Format(utils.DateLayout),
			"index_ratio":       report.Round(res.IndexRatio, d),
			"dirty_price":       report.Round(res.DirtyPrice, d),
			"nominal_accrued":   report.Round(res.NominalAccrued, d),
			"nominal_principal": report.Round(res.NominalPrincipal, d),
			"principal":         report.Round(res.Principal, d),
		})
	},
}

var flatCmd = &cobra.Command{
	Use:   "flat",
	Short: "Flat price indexed to the last coupon fixing",
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := cmd.Flags()
		b, err := bondFromFlags(fs)
		if err != nil {
			return err
		}
		settle, ytm, conv, err := settlementFromFlags(fs)
		if err != nil {
			return err
		}
		last, _ := fs.GetFloat64("last-coupon-index")
		res, err := b.FlatPriceFromYTM(settle, ytm, last, conv)
		if err != nil {
			return err
		}
		d := cfg.OutputDecimals
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"settlement_date": settle.Format(utils.DateLayout),
			"index_ratio":     report.Round(res.IndexRatio, d),
			"clean_price":     report.Round(res.CleanPrice, d),
			"flat_price":      report.Round(res.FlatPrice, d),
		})
	},
}

var accruedCmd = &cobra.Command{
	Use:   "accrued",
	Short: "Inflation-adjusted accrued interest for a face amount",
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := cmd.Flags()
		b, err := bondFromFlags(fs)
		if err != nil {
			return err
		}
		s, _ := fs.GetString("settle")
		settle, err := utils.ParseDate(s)
		if err != nil {
			return fmt.Errorf("invalid --settle: %w", err)
		}
		face, _ := fs.GetFloat64("face")
		ref, _ := fs.GetFloat64("reference-index")
		res, err := b.InflationAccruedInterest(settle, face, ref)
		if err != nil {
			return err
		}
		d := cfg.OutputDecimals
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"settlement_date":   settle.Format(utils.DateLayout),
			"index_ratio":       report.Round(res.IndexRatio, d),
			"nominal_accrued":   report.Round(res.NominalAccrued, d),
			"inflation_accrued": report.Round(res.InflationAccrued, d),
		})
	},
}

type cashflowSource interface {
	Cashflows() []bond.Cashflow
}

var cashflowsCmd = &cobra.Command{
	Use:   "cashflows",
	Short: "List the real coupon and redemption flows for a face amount",
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := cmd.Flags()
		b, err := bondFromFlags(fs)
		if err != nil {
			return err
		}
		src, ok := b.Nominal().(cashflowSource)
		if !ok {
			return fmt.Errorf("nominal engine does not expose cashflows")
		}
		face, _ := fs.GetFloat64("face")
		return printJSON(cmd.OutOrStdout(), report.Cashflows(src.Cashflows(), face, cfg.OutputDecimals))
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Value bonds from a JSON or YAML file (stdin if --input is omitted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("input")
		raw, format, err := readInput(strings.TrimSpace(path), cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		inputs, isArray, err := batch.Decode(raw, format)
		if err != nil {
			return fmt.Errorf("parse input: %w", err)
		}

		log.Info().Int("bonds", len(inputs)).Int("workers", cfg.BatchWorkers).Msg("batch valuation")
		outputs, err := batch.Run(cmd.Context(), inputs, cfg.BatchWorkers, log, cfg.OutputDecimals)
		if err != nil {
			return err
		}

		hadError := false
		for _, o := range outputs {
			if o.Error != "" {
				hadError = true
			}
		}
		if isArray {
			err = printJSON(cmd.OutOrStdout(), outputs)
		} else {
			err = printJSON(cmd.OutOrStdout(), outputs[0])
		}
		if err != nil {
			return err
		}
		if hadError {
			return fmt.Errorf("one or more valuations failed")
		}
		return nil
	},
}

func readInput(path string, stdin io.Reader) ([]byte, string, error) {
	if path == "" {
		raw, err := io.ReadAll(stdin)
		return raw, "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return raw, "yaml", nil
	case ".json":
		return raw, "json", nil
	}
	return raw, "", nil
}

func init() {
	for _, c := range []*cobra.Command{describeCmd, principalCmd, flatCmd, accruedCmd, cashflowsCmd} {
		bondFlags(c.Flags())
	}
	for _, c := range []*cobra.Command{principalCmd, flatCmd} {
		settlementFlags(c.Flags())
	}
	principalCmd.Flags().Float64("face", bond.Par, "face amount")
	principalCmd.Flags().Float64("reference-index", 0, "index fixing for the settlement date")
	flatCmd.Flags().Float64("last-coupon-index", 0, "index fixing at the last coupon date")
	accruedCmd.Flags().String("settle", "", "settlement date (YYYY-MM-DD)")
	accruedCmd.Flags().Float64("face", bond.Par, "face amount")
	accruedCmd.Flags().Float64("reference-index", 0, "index fixing for the settlement date")
	cashflowsCmd.Flags().Float64("face", bond.Par, "face amount")
	batchCmd.Flags().String("input", "", "JSON or YAML input path")
}
