package statements

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/period"
)

// Chart is the part of the chart of accounts statements need.
type Chart interface {
	All() []model.Account
	FlowAccounts() []model.Account
	Role(r model.Role) model.Account
	ByRole(r model.Role) []model.Account
	ShopOf(name string) (string, bool)
}

// Ranks are the P&L thresholds for the gross and operating subtotals.
type Ranks struct {
	GrossProfit     int
	OperatingProfit int
}

// Params are the inputs of every statement.
type Params struct {
	Balances *period.Balances
	Entries  []model.Entry
	Chart    Chart
	Calendar period.Calendar
	Ranks    Ranks
	AsOf     time.Time
	Halted   map[model.Period][]model.Fault
}

// Engine renders statements for one report date.
type Engine struct {
	Params
	current model.Period
}

// New checks the chart against the rank thresholds and returns an Engine.
func New(p Params) (*Engine, error) {
	if err := ValidateChart(p.Chart, p.Ranks); err != nil {
		return nil, err
	}
	p.AsOf = model.Day(p.AsOf)
	return &Engine{Params: p, current: p.Calendar.PeriodOf(p.AsOf)}, nil
}

// ValidateChart rejects flow accounts ranked past the operating subtotal:
// only tax may sit below operating profit.
func ValidateChart(chart Chart, ranks Ranks) error {
	var errs []error
	for _, a := range chart.FlowAccounts() {
		if a.Role != model.RoleTaxExpense && a.Rank > ranks.OperatingProfit {
			errs = append(errs, fmt.Errorf("account %q rank %d is below operating profit (rank %d)",
				a.Name, a.Rank, ranks.OperatingProfit))
		}
	}
	return errors.Join(errs...)
}

// Current returns the fiscal quarter of the report date.
func (e *Engine) Current() model.Period { return e.current }

// halt returns a HaltError when any halted period satisfies within.
func (e *Engine) halt(statement string, within func(model.Period) bool) error {
	herr := &HaltError{Statement: statement}
	for p, faults := range e.Halted {
		if within(p) {
			herr.Periods = append(herr.Periods, p)
			herr.Faults = append(herr.Faults, faults...)
		}
	}
	if len(herr.Periods) == 0 {
		return nil
	}
	slices.SortFunc(herr.Periods, model.Period.Compare)
	slices.SortFunc(herr.Faults, func(a, b model.Fault) int { return a.Seq - b.Seq })
	return herr
}

func (e *Engine) through(last model.Period) func(model.Period) bool {
	return func(p model.Period) bool { return !p.After(last) }
}

func inWindow(window []model.Period) func(model.Period) bool {
	return func(p model.Period) bool { return slices.Contains(window, p) }
}

// figures are the P&L amounts over a set of periods, sign-flipped so
// revenue is positive.
type figures struct {
	lines      map[string]decimal.Decimal
	gross      decimal.Decimal
	operating  decimal.Decimal
	taxExpense decimal.Decimal
	pat        decimal.Decimal
}

func (e *Engine) figures(window []model.Period) figures {
	f := figures{lines: make(map[string]decimal.Decimal)}
	flow := make(map[string]model.Account)
	for _, a := range e.Chart.FlowAccounts() {
		flow[a.Name] = a
	}
	for _, p := range window {
		for _, bal := range e.Balances.Presentation(p, e.Chart) {
			a, ok := flow[bal.Account]
			if !ok {
				continue
			}
			if a.Role == model.RoleTaxExpense {
				f.taxExpense = f.taxExpense.Add(bal.Amount)
				continue
			}
			amount := bal.Amount.Neg()
			f.lines[a.Name] = f.lines[a.Name].Add(amount)
			if a.Rank <= e.Ranks.GrossProfit {
				f.gross = f.gross.Add(amount)
			}
			if a.Rank <= e.Ranks.OperatingProfit {
				f.operating = f.operating.Add(amount)
			}
		}
	}
	f.pat = f.operating.Sub(f.taxExpense)
	return f
}

// presented names the accounts with a statement line in any period through
// last.
func (e *Engine) presented(last model.Period) map[string]bool {
	names := make(map[string]bool)
	for _, p := range e.Balances.Periods() {
		if p.After(last) {
			break
		}
		for _, bal := range e.Balances.Presentation(p, e.Chart) {
			names[bal.Account] = true
		}
	}
	return names
}

// position is an account's cumulative balance through p, debit-positive.
// The inventory account includes every shop sub-ledger.
func (e *Engine) position(a model.Account, through model.Period) decimal.Decimal {
	amount := e.Balances.Cumulative(a.Name, through)
	if a.Role == model.RoleInventory {
		for _, name := range e.Balances.Accounts() {
			if _, sub := e.Chart.ShopOf(name); sub {
				amount = amount.Add(e.Balances.Cumulative(name, through))
			}
		}
	}
	return amount
}

// retained is retained earnings through p, debit-positive: the account's own
// balance plus every flow account closed into it.
func (e *Engine) retained(through model.Period) decimal.Decimal {
	amount := e.Balances.Cumulative(e.Chart.Role(model.RoleRetainedEarnings).Name, through)
	for _, a := range e.Chart.FlowAccounts() {
		amount = amount.Add(e.Balances.Cumulative(a.Name, through))
	}
	return amount
}

// flows sums the amount of entries dated within window that match.
func (e *Engine) flows(window []model.Period, match func(model.Entry) bool) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range e.Entries {
		if match(entry) && slices.Contains(window, e.Calendar.PeriodOf(entry.Date)) {
			total = total.Add(entry.CreditAmount)
		}
	}
	return total
}

// ytd is the window of year's quarters through the report quarter.
func (e *Engine) ytd(year int) []model.Period {
	return period.Quarters(year, e.current.Quarter)
}

func (e *Engine) fullYearOrYTD(year int) []model.Period {
	if year == e.current.Year {
		return e.ytd(year)
	}
	return period.Quarters(year, 4)
}
