// Package render prints a plain-text summary of a report run.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/pipeline"
	"github.com/cleared-dev/shopbooks/internal/statements"
)

// Formatter renders amounts in a currency's display style.
type Formatter struct {
	cur *money.Currency
}

// NewFormatter returns a formatter for an ISO 4217 currency code.
func NewFormatter(code string) (Formatter, error) {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return Formatter{}, fmt.Errorf("unknown currency %q", code)
	}
	return Formatter{cur: cur}, nil
}

// Format rounds d to the currency's minor unit and renders it.
func (f Formatter) Format(d decimal.Decimal) string {
	minor := d.Shift(int32(f.cur.Fraction)).Round(0).IntPart()
	return money.New(minor, f.cur.Code).Display()
}

// Summary writes the headline figures of rep: the current year's P&L, the
// balance sheet totals, the stock check and any faults.
func Summary(w io.Writer, business string, rep *pipeline.Report, f Formatter) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s, as of %s\n", business, rep.AsOf.Format(model.DateFormat))
	fmt.Fprintf(tw, "run %s\n", rep.RunID)

	section(tw, "Profit & Loss YTD")
	if err := rep.Errors[pipeline.StatementPLYTD]; err != nil {
		fmt.Fprintf(tw, "  %s\n", err)
	} else {
		last := len(rep.PLYTD.Columns) - 1
		if last >= 0 {
			fmt.Fprintf(tw, "  \t%s\n", rep.PLYTD.Columns[last])
		}
		for _, r := range rep.PLYTD.Rows {
			if r.Kind == statements.RowHeading || last < 0 || last >= len(r.Values) {
				continue
			}
			fmt.Fprintf(tw, "  %s\t%s\n", r.Label, f.Format(r.Values[last]))
		}
	}

	section(tw, "Balance Sheet")
	if err := rep.Errors[pipeline.StatementBalanceSheet]; err != nil {
		fmt.Fprintf(tw, "  %s\n", err)
	} else {
		bs := rep.BalanceSheet
		last := len(bs.Columns) - 1
		for _, r := range bs.Rows {
			if r.Kind != statements.RowTotal || last < 0 || last >= len(r.Values) {
				continue
			}
			fmt.Fprintf(tw, "  %s\t%s\n", r.Label, f.Format(r.Values[last]))
		}
		if last >= 0 && last < len(bs.Balanced) && !bs.Balanced[last] {
			fmt.Fprintf(tw, "  NOT BALANCED\n")
		}
	}

	section(tw, "Stock Check")
	if len(rep.Alerts) == 0 {
		fmt.Fprintf(tw, "  no shop stock\n")
	}
	for _, a := range rep.Alerts {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", a.Item, a.Shop, a.Quantity.String(), a.Level, a.Status())
	}

	if len(rep.Faults) > 0 {
		section(tw, "Faults")
		for _, line := range faultCounts(rep.Faults) {
			fmt.Fprintf(tw, "  %s\n", line)
		}
		for _, name := range sortedKeys(rep.Errors) {
			if name == pipeline.StatementPLYTD || name == pipeline.StatementBalanceSheet {
				continue
			}
			fmt.Fprintf(tw, "  %s: %s\n", name, rep.Errors[name])
		}
	}

	return tw.Flush()
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", title)
}

// faultCounts groups faults by kind and period, e.g. "unmatched_sale 2024Q1: 2".
func faultCounts(faults []model.Fault) []string {
	counts := make(map[string]int)
	for _, f := range faults {
		counts[fmt.Sprintf("%s %s", f.Kind, f.PeriodLabel())]++
	}
	keys := sortedKeys(counts)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s:\t%d", k, counts[k]))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
