package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/period"
)

// mockAccounts implements AccountChecker for testing.
type mockAccounts map[string]bool

func (m mockAccounts) Exists(name string) bool { return m[name] }

var defaultAccounts = mockAccounts{"Cash": true, "Revenue": true, "Inventory": true, "Inventory_Shop A": true}

func TestValidate_Clean(t *testing.T) {
	entries := []model.Entry{
		{Seq: 1, Date: date(2024, 1, 2), Debit: "Cash", Credit: "Revenue", DebitAmount: d("10"), CreditAmount: d("10")},
		{Seq: 2, Date: date(2024, 1, 2), Debit: "Inventory_Shop A", Credit: "Inventory", Quantity: d("4")},
	}
	assert.Empty(t, Validate(entries, defaultAccounts, period.Calendar{}))
}

func TestValidate_Faults(t *testing.T) {
	tests := []struct {
		name  string
		entry model.Entry
		kinds []model.FaultKind
	}{
		{
			name:  "unbalanced",
			entry: model.Entry{Debit: "Cash", Credit: "Revenue", DebitAmount: d("10"), CreditAmount: d("9")},
			kinds: []model.FaultKind{model.FaultUnbalanced},
		},
		{
			name:  "one side missing",
			entry: model.Entry{Debit: "Cash", Credit: "Revenue", DebitAmount: d("10")},
			kinds: []model.FaultKind{model.FaultUnbalanced},
		},
		{
			name:  "negative",
			entry: model.Entry{Debit: "Cash", Credit: "Revenue", DebitAmount: d("-10"), CreditAmount: d("-10")},
			kinds: []model.FaultKind{model.FaultNegativeAmount},
		},
		{
			name:  "unknown account",
			entry: model.Entry{Debit: "Petty Cash", Credit: "Revenue", DebitAmount: d("10"), CreditAmount: d("10")},
			kinds: []model.FaultKind{model.FaultUnknownAccount},
		},
		{
			name:  "unknown and unbalanced",
			entry: model.Entry{Debit: "Cash", Credit: "Sales", DebitAmount: d("10"), CreditAmount: d("1")},
			kinds: []model.FaultKind{model.FaultUnknownAccount, model.FaultUnbalanced},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.entry.Seq = 7
			tt.entry.Date = date(2024, 5, 2)
			faults := Validate([]model.Entry{tt.entry}, defaultAccounts, period.Calendar{})

			require.Len(t, faults, len(tt.kinds))
			for i, k := range tt.kinds {
				assert.Equal(t, k, faults[i].Kind)
				assert.Equal(t, 7, faults[i].Seq)
				assert.Equal(t, "2024Q2", faults[i].PeriodLabel())
			}
		})
	}
}

func TestValidate_SyntheticSkipsBalanceCheck(t *testing.T) {
	e := model.Entry{Date: date(2024, 1, 2), Debit: "Cash", Credit: "Revenue", DebitAmount: d("10"), CreditAmount: d("9"), Status: model.StatusSynthetic}
	assert.Empty(t, Validate([]model.Entry{e}, defaultAccounts, period.Calendar{}))
}
