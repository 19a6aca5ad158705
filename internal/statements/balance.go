package statements

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// Balance sheet section headings, in presentation order.
const (
	SectionAsset       = "Asset"
	SectionEquity      = "Equity"
	SectionLiabilities = "Liabilities"

	LabelTotalEquityAndLiabilities = "Total Equity and Liabilities"
)

var sections = []string{SectionAsset, SectionEquity, SectionLiabilities}

// BalanceSheet is the position statement plus a per-column check that
// assets equal equity and liabilities.
type BalanceSheet struct {
	Statement
	Balanced []bool
}

// BalanceSheet reports positions at the report quarter of the prior and
// current year. Shop sub-ledgers fold into inventory and retained earnings
// absorb every flow account. Credit-normal sections are shown positive.
func (e *Engine) BalanceSheet() (BalanceSheet, error) {
	if err := e.halt("balance sheet", e.through(e.current)); err != nil {
		return BalanceSheet{}, err
	}
	cutoffs := []model.Period{{Year: e.current.Year - 1, Quarter: e.current.Quarter}, e.current}
	bs := BalanceSheet{Statement: Statement{
		Title: "Balance Sheet",
		Columns: []string{
			e.Calendar.QuarterEnd(cutoffs[0]).Format(model.DateFormat),
			e.AsOf.Format(model.DateFormat),
		},
	}}

	shown := e.presented(e.current)
	totals := make(map[string][]decimal.Decimal)
	for _, section := range sections {
		bs.heading(section)
		sectionTotal := make([]decimal.Decimal, len(cutoffs))
		for _, a := range e.Chart.All() {
			if a.IsFlow() || a.StatementSection() != section {
				continue
			}
			values := make([]decimal.Decimal, len(cutoffs))
			for i, c := range cutoffs {
				v := e.position(a, c)
				if a.Role == model.RoleRetainedEarnings {
					v = e.retained(c)
				}
				if section != SectionAsset {
					v = v.Neg()
				}
				values[i] = v
				sectionTotal[i] = sectionTotal[i].Add(v)
			}
			// Inventory and retained earnings also carry balances of other accounts.
			folded := a.Role == model.RoleInventory || a.Role == model.RoleRetainedEarnings
			if nonZero(values) && (shown[a.Name] || folded) {
				bs.add(RowLine, a.Name, values...)
			}
		}
		bs.add(RowTotal, "Total "+section, sectionTotal...)
		totals[section] = sectionTotal
	}

	claims := make([]decimal.Decimal, len(cutoffs))
	bs.Balanced = make([]bool, len(cutoffs))
	for i := range cutoffs {
		claims[i] = totals[SectionEquity][i].Add(totals[SectionLiabilities][i])
		bs.Balanced[i] = totals[SectionAsset][i].Sub(claims[i]).Abs().LessThan(presentable)
	}
	bs.add(RowTotal, LabelTotalEquityAndLiabilities, claims...)
	return bs, nil
}
