package inflation

import (
	"fmt"
	"io"
	"strings"

	"github.com/meenmo/ilbond/utils"
)

func (b *Bond) String() string {
	t := b.terms
	var s strings.Builder
	label := func(name string, value any) {
		fmt.Fprintf(&s, "%-14s: %v\n", name, value)
	}
	label("OBJECT TYPE", "InflationBond")
	label("ISSUE DATE", t.IssueDate.Format(utils.DateLayout))
	label("MATURITY DATE", t.MaturityDate.Format(utils.DateLayout))
	label("COUPON", t.Coupon)
	label("FREQUENCY", t.Frequency)
	label("ACCRUAL TYPE", t.DayCount)
	label("EX-DIV DAYS", t.ExDivDays)
	label("BASE CPI VALUE", t.BaseIndexValue)
	return s.String()
}

// Print writes the summary to w.
func (b *Bond) Print(w io.Writer) error {
	_, err := io.WriteString(w, b.String())
	return err
}
