package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/shopbooks/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{Name: "Cash", Type: model.AccountTypeAsset, Role: model.RoleCash, Description: "Bank account"},
		{Name: "Rent Expense", Type: model.AccountTypeExpense, Rank: 3, Description: "Shop rent"},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, accounts[0], got[0])
	assert.Equal(t, accounts[1], got[1])
}

func TestMarshalAccount_RankOnlyForFlow(t *testing.T) {
	row := MarshalAccount(model.Account{Name: "Cash", Type: model.AccountTypeAsset, Rank: 9})
	assert.Equal(t, "", row[colRank])

	row = MarshalAccount(model.Account{Name: "Revenue", Type: model.AccountTypeRevenue, Rank: 0})
	assert.Equal(t, "0", row[colRank])
}

func TestUnmarshalAccount_BadRank(t *testing.T) {
	_, err := UnmarshalAccount([]string{"Rent Expense", "expense", "three", "", ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing rank")
}

func TestReadAccounts_WrongFieldCount(t *testing.T) {
	in := "account_name,account_type,rank,role,description\nCash,asset\n"
	_, err := ReadAccounts(strings.NewReader(in))
	require.Error(t, err)
}

func TestDefaultChartRoundTrip(t *testing.T) {
	chart := DefaultChart()

	var buf bytes.Buffer
	err := WriteAccounts(&buf, chart)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(chart))

	for i := range chart {
		assert.Equal(t, chart[i].Name, got[i].Name)
		assert.Equal(t, chart[i].Type, got[i].Type)
		assert.Equal(t, chart[i].Role, got[i].Role)
		if chart[i].IsFlow() {
			assert.Equal(t, chart[i].Rank, got[i].Rank)
		}
	}
}
