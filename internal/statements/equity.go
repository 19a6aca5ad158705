package statements

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// Equity statement labels.
const (
	ColumnCommonStock      = "Common Stock"
	ColumnRetainedEarnings = "Retained Earnings"
	ColumnTotal            = "Total"

	LabelProceeds     = "Proceeds from issuance of Share Capital"
	LabelDividends    = "Dividends"
	LabelProfitOrLoss = "Profit/(Loss)"
)

// EquityStatement rolls common stock and retained earnings forward from the
// end of the year before last through the prior year to the report date.
func (e *Engine) EquityStatement() (Statement, error) {
	if err := e.halt("statement of changes in equity", e.through(e.current)); err != nil {
		return Statement{}, err
	}
	shareCapital := e.Chart.Role(model.RoleShareCapital).Name
	dividendPayable := e.Chart.Role(model.RoleDividendPayable).Name

	s := Statement{
		Title:   "Statement of Changes in Equity",
		Columns: []string{ColumnCommonStock, ColumnRetainedEarnings, ColumnTotal},
	}
	row := func(kind RowKind, label string, stock, retained decimal.Decimal) {
		s.add(kind, label, stock, retained, stock.Add(retained))
	}

	first := e.current.Year - 2
	end := model.Period{Year: first, Quarter: 4}
	stock := e.Balances.Cumulative(shareCapital, end).Neg()
	retained := e.retained(end).Neg()
	row(RowSubtotal, fmt.Sprintf("Balance as of end of %d", first), stock, retained)

	for _, year := range []int{e.current.Year - 1, e.current.Year} {
		window := e.fullYearOrYTD(year)
		proceeds := e.flows(window, func(en model.Entry) bool { return en.Credit == shareCapital })
		dividends := e.flows(window, func(en model.Entry) bool { return en.Credit == dividendPayable }).Neg()
		profit := e.figures(window).pat

		row(RowLine, LabelProceeds, proceeds, decimal.Zero)
		row(RowLine, LabelDividends, decimal.Zero, dividends)
		row(RowLine, LabelProfitOrLoss, decimal.Zero, profit)

		stock = stock.Add(proceeds)
		retained = retained.Add(dividends).Add(profit)
		label := fmt.Sprintf("Balance as of end of %d", year)
		if year == e.current.Year {
			label = "Balance as of " + e.AsOf.Format(model.DateFormat)
		}
		row(RowSubtotal, label, stock, retained)
	}
	return s, nil
}
