package pipeline

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/shopbooks/internal/accounts"
	"github.com/cleared-dev/shopbooks/internal/config"
	"github.com/cleared-dev/shopbooks/internal/inventory"
	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/statements"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(m time.Month, day int) time.Time {
	return time.Date(2024, m, day, 0, 0, 0, 0, time.UTC)
}

func entry(day time.Time, debit, credit, amount string) model.Entry {
	return model.Entry{Date: day, Debit: debit, Credit: credit, DebitAmount: d(amount), CreditAmount: d(amount), Status: model.StatusRaw}
}

func sampleInputs() model.Inputs {
	restock := entry(date(1, 3), "Inventory", "Cash", "1000")
	restock.Item, restock.Quantity = "Mug", d("100")
	sale := entry(date(1, 10), "Cash", "Revenue", "100")
	sale.Quantity, sale.Comments = d("5"), "Shop A"
	late := entry(date(5, 1), "Cash", "Revenue", "20")
	late.Comments = "Shop A"

	return model.Inputs{
		Entries: []model.Entry{
			entry(date(1, 2), "Cash", "Share Capital", "5000"),
			restock,
			{Date: date(1, 5), Debit: "Inventory_Shop A", Credit: "Inventory", Item: "Mug", Quantity: d("40"), Status: model.StatusRaw},
			sale,
			entry(date(2, 1), "Rent Expense", "Cash", "20"),
			late,
		},
		Prices: []model.PricePoint{{Item: "Mug", SalePrice: d("100"), EffectiveFrom: date(1, 1)}},
		Slots:  []model.SlotAllocation{{Item: "Mug", Shop: "Shop A", Slots: 50, EffectiveFrom: date(1, 1)}},
	}
}

func testOptions(t *testing.T) Options {
	t.Helper()
	chart, err := accounts.NewService(accounts.DefaultChart(), accounts.DefaultShopPrefix)
	require.NoError(t, err)
	opts, err := OptionsFromConfig(config.Default("Test"), chart, date(3, 31), nil)
	require.NoError(t, err)
	return opts
}

func value(t *testing.T, s statements.Statement, label string, col int) decimal.Decimal {
	t.Helper()
	v, ok := s.Value(label, col)
	require.True(t, ok, "no row %q", label)
	return v
}

func TestRun(t *testing.T) {
	rep, err := Run(context.Background(), sampleInputs(), testOptions(t))
	require.NoError(t, err)
	assert.Empty(t, rep.Faults)
	assert.Empty(t, rep.Errors)
	assert.NotEmpty(t, rep.RunID)

	// Five feed entries up to the report date, one COGS, one tax accrual.
	require.Len(t, rep.Ledger, 7)
	var cogs, taxes []model.Entry
	for _, e := range rep.Ledger {
		switch e.Debit {
		case "COGS Expense":
			cogs = append(cogs, e)
		case "Tax Expense":
			taxes = append(taxes, e)
		}
	}
	require.Len(t, cogs, 1)
	assert.True(t, d("50").Equal(cogs[0].DebitAmount))
	require.Len(t, taxes, 1)
	// 30 of operating profit at 17% with 75% exempt.
	assert.True(t, d("1.28").Equal(taxes[0].DebitAmount), taxes[0].DebitAmount.String())
	assert.Equal(t, date(3, 31), taxes[0].Date)

	require.Len(t, rep.Warehouse, 1)
	assert.True(t, d("600").Equal(rep.Warehouse[0].Value))
	require.Len(t, rep.Shops, 1)
	assert.True(t, d("35").Equal(rep.Shops[0].Quantity))

	require.Len(t, rep.Alerts, 1)
	assert.Equal(t, inventory.StatusNotUpdated, rep.Alerts[0].Status())
	assert.Equal(t, model.LevelMedium, rep.Alerts[0].Level)

	assert.True(t, d("28.72").Equal(value(t, rep.PLYTD, statements.LabelProfitAfterTax, 1)))

	assert.Equal(t, []bool{true, true}, rep.BalanceSheet.Balanced)
	assert.True(t, d("4080").Equal(value(t, rep.BalanceSheet.Statement, "Cash", 1)))
	assert.True(t, d("950").Equal(value(t, rep.BalanceSheet.Statement, "Inventory", 1)))
	assert.True(t, d("1.28").Equal(value(t, rep.BalanceSheet.Statement, "Tax Payable", 1)))

	assert.True(t, d("4080").Equal(value(t, rep.CashFlow, statements.LabelNetChange, 1)))
	_, unreconciled := rep.CashFlow.Row(statements.LabelUnreconciled)
	assert.False(t, unreconciled)

	for _, p := range rep.Balances.Periods() {
		assert.True(t, rep.Balances.Closure(p).IsZero(), "period %s", p)
	}
}

func TestRun_RegeneratesSyntheticEntries(t *testing.T) {
	opts := testOptions(t)
	first, err := Run(context.Background(), sampleInputs(), opts)
	require.NoError(t, err)

	again, err := Run(context.Background(), model.Inputs{
		Entries: first.Ledger,
		Prices:  sampleInputs().Prices,
		Slots:   sampleInputs().Slots,
	}, opts)
	require.NoError(t, err)

	assert.Len(t, again.Ledger, len(first.Ledger))
	require.Len(t, again.BalanceSheet.Rows, len(first.BalanceSheet.Rows))
	for i, row := range first.BalanceSheet.Rows {
		other := again.BalanceSheet.Rows[i]
		assert.Equal(t, row.Label, other.Label)
		for j, v := range row.Values {
			assert.True(t, v.Equal(other.Values[j]), "%s[%d]", row.Label, j)
		}
	}
}

func TestRun_RegeneratesEngineRefsWithoutStatus(t *testing.T) {
	opts := testOptions(t)
	first, err := Run(context.Background(), sampleInputs(), opts)
	require.NoError(t, err)

	refed := slices.Clone(first.Ledger)
	for i := range refed {
		refed[i].Status = ""
	}
	again, err := Run(context.Background(), model.Inputs{
		Entries: refed,
		Prices:  sampleInputs().Prices,
		Slots:   sampleInputs().Slots,
	}, opts)
	require.NoError(t, err)

	assert.Len(t, again.Ledger, len(first.Ledger))
	assert.True(t, d("28.72").Equal(value(t, again.PLYTD, statements.LabelProfitAfterTax, 1)))
}

func TestRun_FaultsHaltTheirPeriod(t *testing.T) {
	in := sampleInputs()
	unmatched := entry(date(1, 11), "Cash", "Revenue", "17")
	unmatched.Comments = "Shop A"
	unbalanced := entry(date(2, 2), "Cash", "Revenue", "10")
	unbalanced.CreditAmount = d("9")
	in.Entries = append(in.Entries, unmatched, unbalanced)

	rep, err := Run(context.Background(), in, testOptions(t))
	require.NoError(t, err)

	require.Len(t, rep.Faults, 2)
	kinds := []model.FaultKind{rep.Faults[0].Kind, rep.Faults[1].Kind}
	assert.ElementsMatch(t, []model.FaultKind{model.FaultUnmatchedSale, model.FaultUnbalanced}, kinds)
	assert.Len(t, rep.Halted[model.Period{Year: 2024, Quarter: 1}], 2)

	assert.ErrorIs(t, rep.Errors[StatementBalanceSheet], statements.ErrPeriodHalted)
	assert.ErrorIs(t, rep.Errors[StatementCashFlow], statements.ErrPeriodHalted)
	assert.ErrorIs(t, rep.Errors[StatementPLYTD], statements.ErrPeriodHalted)

	// Inventory outputs are still produced.
	assert.Len(t, rep.Shops, 1)
	// The unbalanced entry is excluded from the ledger.
	for _, e := range rep.Ledger {
		assert.False(t, e.DebitAmount.Equal(d("10")) && e.CreditAmount.Equal(d("9")))
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, sampleInputs(), testOptions(t))
	assert.ErrorIs(t, err, context.Canceled)
}
