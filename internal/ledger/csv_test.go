package ledger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/shopbooks/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	e := model.Entry{
		Date:         date(2024, 3, 1),
		Debit:        "Cash",
		Credit:       "Revenue",
		DebitAmount:  d("30.00"),
		CreditAmount: d("30.00"),
		Item:         "Mug",
		Quantity:     d("3"),
		Comments:     "Shop A",
		Reference:    "S-001",
		Status:       model.StatusRaw,
	}

	got, err := UnmarshalEntry(MarshalEntry(e))
	require.NoError(t, err)

	assert.Equal(t, e.Date, got.Date)
	assert.Equal(t, e.Debit, got.Debit)
	assert.Equal(t, e.Credit, got.Credit)
	assert.True(t, e.DebitAmount.Equal(got.DebitAmount))
	assert.True(t, e.CreditAmount.Equal(got.CreditAmount))
	assert.Equal(t, e.Item, got.Item)
	assert.True(t, e.Quantity.Equal(got.Quantity))
	assert.Equal(t, e.Comments, got.Comments)
	assert.Equal(t, e.Reference, got.Reference)
	assert.Equal(t, e.Status, got.Status)
}

func TestMarshalEntry_TransferLeavesAmountsEmpty(t *testing.T) {
	row := MarshalEntry(model.Entry{
		Date:     date(2024, 3, 1),
		Debit:    "Inventory_Shop A",
		Credit:   "Inventory",
		Item:     "Mug",
		Quantity: d("40"),
	})
	assert.Equal(t, "", row[colDebitAmt])
	assert.Equal(t, "", row[colCreditAmt])
	assert.Equal(t, "40", row[colQuantity])
}

func TestUnmarshalEntry_WrongFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"2024-01-01", "Cash"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 10 fields")
}

func TestUnmarshalEntry_BadAmount(t *testing.T) {
	row := MarshalEntry(model.Entry{Date: date(2024, 1, 1), Debit: "Cash", Credit: "Revenue"})
	row[colDebitAmt] = "ten"
	_, err := UnmarshalEntry(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Debit_Amount")
}

func TestReadEntries_SourceLayout(t *testing.T) {
	// Feed order differs from the canonical one and omits Status.
	input := "Ref_Number,Date,Debit,Credit,Debit_Amount,Credit_Amount,Item_Name,Quantity,Comments\n" +
		"R1,2024-01-02,Inventory,Cash,1000,1000,Mug,100,\n" +
		",2024-01-05,Inventory_Shop A,Inventory,,,Mug,40,\n" +
		",,,,,,,,\n" +
		"R3,2024-01-06 00:00:00,Cash,Revenue,\"1,010.00\",1010,,,Shop A\n"

	entries, err := ReadEntries(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "R1", entries[0].Reference)
	assert.True(t, d("1000").Equal(entries[0].CreditAmount))
	assert.Equal(t, model.StatusRaw, entries[0].Status)

	assert.True(t, entries[1].Unvalued())
	assert.True(t, d("40").Equal(entries[1].Quantity))

	assert.Equal(t, date(2024, 1, 6), entries[2].Date)
	assert.True(t, d("1010").Equal(entries[2].DebitAmount))
	assert.Equal(t, "Shop A", entries[2].Comments)
	assert.True(t, entries[2].Quantity.IsZero())
}

func TestReadEntries_MissingRequiredColumn(t *testing.T) {
	_, err := ReadEntries(strings.NewReader("Date,Debit,Debit_Amount\n2024-01-01,Cash,10\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Credit")
}

func TestReadEntries_Empty(t *testing.T) {
	entries, err := ReadEntries(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestWriteReadRoundTrip(t *testing.T) {
	entries := []model.Entry{
		{Date: date(2024, 1, 2), Debit: "Inventory", Credit: "Cash", DebitAmount: d("1000"), CreditAmount: d("1000"), Item: "Mug", Quantity: d("100"), Status: model.StatusRaw},
		{Date: date(2024, 1, 5), Debit: "COGS Expense", Credit: "Inventory", DebitAmount: d("50"), CreditAmount: d("50"), Reference: "COGS-20240105-001", Status: model.StatusSynthetic},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, entries))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadEntries(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.StatusSynthetic, got[1].Status)
	assert.Equal(t, "COGS-20240105-001", got[1].Reference)
}
