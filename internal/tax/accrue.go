package tax

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/id"
	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/period"
)

// Chart is the part of the chart of accounts the accrual needs.
type Chart interface {
	FlowAccounts() []model.Account
	Role(r model.Role) model.Account
}

// Accrual records one quarter's tax computation.
type Accrual struct {
	Period    model.Period
	Date      time.Time
	Profit    decimal.Decimal // quarter operating profit
	YTDProfit decimal.Decimal
	Due       decimal.Decimal // tax due on YTDProfit
	Expense   decimal.Decimal // Due less what earlier quarters accrued
	Reference string
}

// Engine accrues tax quarter by quarter.
type Engine struct {
	Policy        Policy
	OperatingRank int
}

// Accrue walks each fiscal year's quarters up to asOf, accruing the change
// in year-to-date tax due. Each non-zero change becomes a synthetic entry
// dated at the quarter end, or asOf for the current quarter: a charge
// debits tax expense, a release reverses the sides.
func (e Engine) Accrue(b *period.Balances, chart Chart, cal period.Calendar, asOf time.Time) ([]Accrual, []model.Entry, error) {
	asOf = model.Day(asOf)
	taxExpense := chart.Role(model.RoleTaxExpense).Name
	taxPayable := chart.Role(model.RoleTaxPayable).Name

	var operating []string
	for _, a := range chart.FlowAccounts() {
		if a.Rank <= e.OperatingRank && a.Role != model.RoleTaxExpense {
			operating = append(operating, a.Name)
		}
	}

	var accruals []Accrual
	var entries []model.Entry
	for _, year := range b.Years() {
		ytdProfit := decimal.Zero
		accrued := decimal.Zero
		for _, p := range period.Quarters(year, 4) {
			if cal.QuarterStart(p).After(asOf) {
				break
			}
			profit := decimal.Zero
			for _, name := range operating {
				profit = profit.Sub(b.Get(name, p))
			}
			ytdProfit = ytdProfit.Add(profit)

			due, err := e.Policy.TaxDue(year, ytdProfit)
			if err != nil {
				return nil, nil, err
			}
			due = due.Round(2)
			expense := due.Sub(accrued)
			accrued = due

			date := cal.QuarterEnd(p)
			if date.After(asOf) {
				date = asOf
			}
			a := Accrual{
				Period:    p,
				Date:      date,
				Profit:    profit,
				YTDProfit: ytdProfit,
				Due:       due,
				Expense:   expense,
				Reference: id.FormatTaxRef(p.Year, p.Quarter),
			}
			accruals = append(accruals, a)

			if expense.IsZero() {
				continue
			}
			entry := model.Entry{
				Date:         date,
				Debit:        taxExpense,
				Credit:       taxPayable,
				DebitAmount:  expense.Abs(),
				CreditAmount: expense.Abs(),
				Comments:     "Tax accrual " + p.String(),
				Reference:    a.Reference,
				Status:       model.StatusSynthetic,
			}
			if expense.IsNegative() {
				entry.Debit, entry.Credit = taxPayable, taxExpense
			}
			entries = append(entries, entry)
		}
	}
	return accruals, entries, nil
}
