package statements

import (
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// Cash flow statement labels.
const (
	HeadingOperating = "Cash flows from operating activities"
	HeadingInvesting = "Cash flows from investing activities"
	HeadingFinancing = "Cash flows from financing activities"

	LabelDepreciation     = "Depreciation"
	LabelNetOperating     = "Net cash from operating activities"
	LabelNetInvesting     = "Net cash from investing activities"
	LabelNetFinancing     = "Net cash from financing activities"
	LabelDividendsPaid    = "Dividends paid"
	LabelNetChange        = "Net change in cash"
	LabelBeginningCash    = "Cash at beginning of period"
	LabelEndingCash       = "Cash at end of period"
	LabelUnreconciled     = "Unreconciled difference"
	labelChangePrefix     = "Change in "
	labelInvestmentPrefix = "Investment in "
)

// workingCapitalRoles are the positions whose movement adjusts profit to
// operating cash.
var workingCapitalRoles = []model.Role{model.RoleWorkingCapital, model.RoleInventory, model.RoleTaxPayable}

// CashFlow derives the indirect-method cash flow for the prior fiscal year
// and the current year to date, each reconciled against the cash account.
func (e *Engine) CashFlow() (Statement, error) {
	if err := e.halt("cash flow statement", e.through(e.current)); err != nil {
		return Statement{}, err
	}
	cash := e.Chart.Role(model.RoleCash).Name
	shareCapital := e.Chart.Role(model.RoleShareCapital).Name
	dividendPayable := e.Chart.Role(model.RoleDividendPayable).Name

	years := []int{e.current.Year - 1, e.current.Year}
	s := Statement{Title: "Cash Flow Statement"}
	windows := make([][]model.Period, len(years))
	for i, y := range years {
		s.Columns = append(s.Columns, strconv.Itoa(y))
		windows[i] = e.fullYearOrYTD(y)
	}
	perYear := func(f func(window []model.Period, opening, closing model.Period) decimal.Decimal) []decimal.Decimal {
		values := make([]decimal.Decimal, len(years))
		for i, y := range years {
			w := windows[i]
			values[i] = f(w, model.Period{Year: y - 1, Quarter: 4}, w[len(w)-1])
		}
		return values
	}
	addAll := func(dst []decimal.Decimal, src []decimal.Decimal) {
		for i := range dst {
			dst[i] = dst[i].Add(src[i])
		}
	}

	// Operating.
	s.heading(HeadingOperating)
	operating := perYear(func(w []model.Period, _, _ model.Period) decimal.Decimal { return e.figures(w).pat })
	s.add(RowLine, LabelProfitAfterTax, slices.Clone(operating)...)

	depreciation := perYear(func(w []model.Period, _, _ model.Period) decimal.Decimal {
		total := decimal.Zero
		for _, a := range e.Chart.ByRole(model.RoleDepreciation) {
			total = total.Add(e.Balances.Movements(a.Name, w[0], w[len(w)-1]))
		}
		return total
	})
	if nonZero(depreciation) {
		s.add(RowLine, LabelDepreciation, depreciation...)
	}
	addAll(operating, depreciation)

	for _, a := range e.Chart.All() {
		if !slices.Contains(workingCapitalRoles, a.Role) {
			continue
		}
		change := perYear(func(_ []model.Period, opening, closing model.Period) decimal.Decimal {
			return e.position(a, closing).Sub(e.position(a, opening)).Neg()
		})
		if nonZero(change) {
			s.add(RowLine, labelChangePrefix+a.Name, change...)
		}
		addAll(operating, change)
	}
	s.add(RowSubtotal, LabelNetOperating, operating...)

	// Investing.
	s.heading(HeadingInvesting)
	investing := make([]decimal.Decimal, len(years))
	for _, a := range e.Chart.ByRole(model.RoleInvesting) {
		net := perYear(func(w []model.Period, _, _ model.Period) decimal.Decimal {
			out := e.flows(w, func(en model.Entry) bool { return en.Debit == a.Name && en.Credit == cash })
			in := e.flows(w, func(en model.Entry) bool { return en.Debit == cash && en.Credit == a.Name })
			return in.Sub(out)
		})
		if nonZero(net) {
			s.add(RowLine, labelInvestmentPrefix+a.Name, net...)
		}
		addAll(investing, net)
	}
	s.add(RowSubtotal, LabelNetInvesting, investing...)

	// Financing.
	s.heading(HeadingFinancing)
	proceeds := perYear(func(w []model.Period, _, _ model.Period) decimal.Decimal {
		return e.flows(w, func(en model.Entry) bool { return en.Debit == cash && en.Credit == shareCapital })
	})
	dividends := perYear(func(w []model.Period, _, _ model.Period) decimal.Decimal {
		return e.flows(w, func(en model.Entry) bool { return en.Debit == dividendPayable && en.Credit == cash }).Neg()
	})
	s.add(RowLine, LabelProceeds, proceeds...)
	s.add(RowLine, LabelDividendsPaid, dividends...)
	financing := slices.Clone(proceeds)
	addAll(financing, dividends)
	s.add(RowSubtotal, LabelNetFinancing, financing...)

	// Reconciliation.
	change := slices.Clone(operating)
	addAll(change, investing)
	addAll(change, financing)
	s.add(RowTotal, LabelNetChange, change...)

	beginning := perYear(func(_ []model.Period, opening, _ model.Period) decimal.Decimal {
		return e.Balances.Cumulative(cash, opening)
	})
	ending := perYear(func(_ []model.Period, _, closing model.Period) decimal.Decimal {
		return e.Balances.Cumulative(cash, closing)
	})
	s.add(RowLine, LabelBeginningCash, beginning...)
	s.add(RowTotal, LabelEndingCash, ending...)

	diff := make([]decimal.Decimal, len(years))
	for i := range years {
		diff[i] = ending[i].Sub(beginning[i]).Sub(change[i])
	}
	if nonZero(diff) {
		s.add(RowLine, LabelUnreconciled, diff...)
	}
	return s, nil
}
