package period

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// closureTolerance bounds the rounding noise tolerated when checking that a
// period's balances sum to zero.
var closureTolerance = decimal.New(1, -6)

type key struct {
	account string
	period  model.Period
}

// Balances holds per-account, per-quarter net movements, debit-positive.
type Balances struct {
	cal      Calendar
	amounts  map[key]decimal.Decimal
	periods  []model.Period
	accounts []string
}

// Aggregate walks entries (already in date order) day by day, summing
// debits as positive and credits as negative per account, then rolls the
// daily sums up into fiscal quarters.
func Aggregate(entries []model.Entry, cal Calendar) *Balances {
	b := &Balances{
		cal:     cal,
		amounts: make(map[key]decimal.Decimal),
	}

	for i := 0; i < len(entries); {
		day := model.Day(entries[i].Date)
		sums := make(map[string]decimal.Decimal)
		var order []string
		add := func(account string, amount decimal.Decimal) {
			if _, ok := sums[account]; !ok {
				order = append(order, account)
			}
			sums[account] = sums[account].Add(amount)
		}
		for ; i < len(entries) && model.Day(entries[i].Date).Equal(day); i++ {
			e := entries[i]
			add(e.Debit, e.DebitAmount)
			add(e.Credit, e.CreditAmount.Neg())
		}

		p := cal.PeriodOf(day)
		for _, account := range order {
			k := key{account: account, period: p}
			b.amounts[k] = b.amounts[k].Add(sums[account])
		}
	}

	seenPeriod := make(map[model.Period]bool)
	seenAccount := make(map[string]bool)
	for k := range b.amounts {
		if !seenPeriod[k.period] {
			seenPeriod[k.period] = true
			b.periods = append(b.periods, k.period)
		}
		if !seenAccount[k.account] {
			seenAccount[k.account] = true
			b.accounts = append(b.accounts, k.account)
		}
	}
	slices.SortFunc(b.periods, model.Period.Compare)
	slices.Sort(b.accounts)
	return b
}

// Calendar returns the calendar the balances were rolled up with.
func (b *Balances) Calendar() Calendar { return b.cal }

// Get returns the net movement of account in p.
func (b *Balances) Get(account string, p model.Period) decimal.Decimal {
	return b.amounts[key{account: account, period: p}]
}

// Periods returns every period with activity, in order.
func (b *Balances) Periods() []model.Period {
	return slices.Clone(b.periods)
}

// Years returns every fiscal year with activity, in order.
func (b *Balances) Years() []int {
	var years []int
	for _, p := range b.periods {
		if len(years) == 0 || years[len(years)-1] != p.Year {
			years = append(years, p.Year)
		}
	}
	return years
}

// Accounts returns every account with activity, sorted by name.
func (b *Balances) Accounts() []string {
	return slices.Clone(b.accounts)
}

// InPeriod returns every account's balance in p, sorted by account.
func (b *Balances) InPeriod(p model.Period) []model.Balance {
	var out []model.Balance
	for _, account := range b.accounts {
		if amt, ok := b.amounts[key{account: account, period: p}]; ok {
			out = append(out, model.Balance{Account: account, Period: p, Amount: amt})
		}
	}
	return out
}

// Cumulative sums account over every period up to and including through.
func (b *Balances) Cumulative(account string, through model.Period) decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.periods {
		if p.After(through) {
			break
		}
		total = total.Add(b.Get(account, p))
	}
	return total
}

// Movements sums account over the periods from..to inclusive.
func (b *Balances) Movements(account string, from, to model.Period) decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.periods {
		if from.After(p) {
			continue
		}
		if p.After(to) {
			break
		}
		total = total.Add(b.Get(account, p))
	}
	return total
}

// Closure sums every account's balance in p. Double entry keeps it at zero.
func (b *Balances) Closure(p model.Period) decimal.Decimal {
	total := decimal.Zero
	for _, bal := range b.InPeriod(p) {
		total = total.Add(bal.Amount)
	}
	return total
}

// Verify returns an error naming every period whose balances do not close.
func (b *Balances) Verify() error {
	var open []string
	for _, p := range b.periods {
		if c := b.Closure(p); c.Abs().GreaterThan(closureTolerance) {
			open = append(open, fmt.Sprintf("%s (%s)", p, c.String()))
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("balances do not close in %s", strings.Join(open, ", "))
	}
	return nil
}

// Chart identifies shop sub-ledger accounts.
type Chart interface {
	ShopOf(name string) (string, bool)
}

// Presentation returns the non-zero balances of p that appear as statement
// lines. Shop sub-ledger accounts are excluded.
func (b *Balances) Presentation(p model.Period, chart Chart) []model.Balance {
	var out []model.Balance
	for _, bal := range b.InPeriod(p) {
		if bal.Amount.IsZero() {
			continue
		}
		if _, sub := chart.ShopOf(bal.Account); sub {
			continue
		}
		out = append(out, bal)
	}
	return out
}
