package statements

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// Computed P&L row labels.
const (
	LabelGrossProfit     = "Gross Profit"
	LabelOperatingProfit = "Operating Profit"
	LabelTax             = "Tax"
	LabelProfitAfterTax  = "Profit After Tax"
)

// profitAndLoss lays out one column per figures set: account lines in rank
// order, with subtotals after the gross and operating bands.
func (e *Engine) profitAndLoss(title string, columns []string, figs []figures) Statement {
	s := Statement{Title: title, Columns: columns}
	column := func(get func(figures) decimal.Decimal) []decimal.Decimal {
		values := make([]decimal.Decimal, len(figs))
		for i, f := range figs {
			values[i] = get(f)
		}
		return values
	}

	band := func(lo, hi int) {
		for _, a := range e.Chart.FlowAccounts() {
			if a.Role == model.RoleTaxExpense || a.Rank <= lo || a.Rank > hi {
				continue
			}
			values := column(func(f figures) decimal.Decimal { return f.lines[a.Name] })
			if nonZero(values) {
				s.add(RowLine, a.Name, values...)
			}
		}
	}

	band(math.MinInt, e.Ranks.GrossProfit)
	s.add(RowSubtotal, LabelGrossProfit, column(func(f figures) decimal.Decimal { return f.gross })...)
	band(e.Ranks.GrossProfit, e.Ranks.OperatingProfit)
	s.add(RowSubtotal, LabelOperatingProfit, column(func(f figures) decimal.Decimal { return f.operating })...)
	s.add(RowLine, LabelTax, column(func(f figures) decimal.Decimal { return f.taxExpense.Neg() })...)
	s.add(RowTotal, LabelProfitAfterTax, column(func(f figures) decimal.Decimal { return f.pat })...)
	return s
}

// QuarterlyPL returns one P&L per period with activity. Halted periods are
// left out and reported through a HaltError alongside the rest.
func (e *Engine) QuarterlyPL() ([]Statement, error) {
	var out []Statement
	for _, p := range e.Balances.Periods() {
		if _, halted := e.Halted[p]; halted {
			continue
		}
		out = append(out, e.profitAndLoss("Profit & Loss "+p.String(), []string{p.String()},
			[]figures{e.figures([]model.Period{p})}))
	}
	return out, e.halt("quarterly profit & loss", func(model.Period) bool { return true })
}

// PLYTD compares the year to date with the same quarters of the prior year.
func (e *Engine) PLYTD() (Statement, error) {
	prior, cur := e.current.Year-1, e.current.Year
	window := append(e.ytd(prior), e.ytd(cur)...)
	if err := e.halt("profit & loss YTD", inWindow(window)); err != nil {
		return Statement{}, err
	}
	return e.profitAndLoss("Profit & Loss YTD",
		[]string{strconv.Itoa(prior), strconv.Itoa(cur)},
		[]figures{e.figures(e.ytd(prior)), e.figures(e.ytd(cur))}), nil
}
