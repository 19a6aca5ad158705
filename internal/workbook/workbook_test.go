package workbook

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/shopbooks/internal/accounts"
	"github.com/cleared-dev/shopbooks/internal/config"
	"github.com/cleared-dev/shopbooks/internal/pipeline"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(m time.Month, day int) time.Time {
	return time.Date(2024, m, day, 0, 0, 0, 0, time.UTC)
}

// inputWorkbook mimics a spreadsheet export: real date cells, a text date,
// and columns in feed order.
func inputWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetName("Sheet1", SheetTransaction))
	rows := [][]any{
		{"Date", "Debit", "Credit", "Debit_Amount", "Credit_Amount", "Item_Name", "Quantity", "Comments", "Ref_Number"},
		{date(1, 2), "Cash", "Share Capital", 5000, 5000},
		{date(1, 3), "Inventory", "Cash", 1000, 1000, "Mug", 100},
		{"2024-01-05", "Inventory_Shop A", "Inventory", nil, nil, "Mug", 40},
		{date(1, 10), "Cash", "Revenue", 100, 100, nil, 5, "Shop A", "S-1"},
	}
	writeRows(t, f, SheetTransaction, rows)

	_, err := f.NewSheet(SheetPriceList)
	require.NoError(t, err)
	writeRows(t, f, SheetPriceList, [][]any{
		{"Item_Name", "Sale_Price", "Effective_From"},
		{"Mug", 100, date(1, 1)},
	})

	_, err = f.NewSheet(SheetShopSpace)
	require.NoError(t, err)
	writeRows(t, f, SheetShopSpace, [][]any{
		{"Item_Name", "Shop_Name", "Slots", "Effective_From"},
		{"Mug", "Shop A", 50, date(1, 1)},
	})

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func writeRows(t *testing.T, f *excelize.File, sheet string, rows [][]any) {
	t.Helper()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
}

func TestReadInputs(t *testing.T) {
	in, err := ReadInputs(bytes.NewReader(inputWorkbook(t)))
	require.NoError(t, err)

	require.Len(t, in.Entries, 4)
	assert.Equal(t, date(1, 2), in.Entries[0].Date)
	assert.True(t, d("5000").Equal(in.Entries[0].DebitAmount))
	assert.Equal(t, date(1, 5), in.Entries[2].Date)
	assert.True(t, in.Entries[2].Unvalued())
	assert.Equal(t, "Shop A", in.Entries[3].Comments)
	assert.Equal(t, "S-1", in.Entries[3].Reference)

	require.Len(t, in.Prices, 1)
	assert.Equal(t, date(1, 1), in.Prices[0].EffectiveFrom)
	assert.True(t, d("100").Equal(in.Prices[0].SalePrice))

	require.Len(t, in.Slots, 1)
	assert.Equal(t, 50, in.Slots[0].Slots)
}

func TestReadInputs_MissingSheet(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ReadInputs(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), SheetTransaction)
}

func runReport(t *testing.T) *pipeline.Report {
	t.Helper()
	in, err := ReadInputs(bytes.NewReader(inputWorkbook(t)))
	require.NoError(t, err)
	chart, err := accounts.NewService(accounts.DefaultChart(), accounts.DefaultShopPrefix)
	require.NoError(t, err)
	opts, err := pipeline.OptionsFromConfig(config.Default("Test"), chart, date(3, 31), nil)
	require.NoError(t, err)
	rep, err := pipeline.Run(context.Background(), in, opts)
	require.NoError(t, err)
	return rep
}

func TestSaveReport(t *testing.T) {
	rep := runReport(t)
	path, err := Save(t.TempDir(), rep)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-31 FS_BS.xlsx", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{
		SheetPLYTD, SheetPLQuarterly, SheetBalanceSheet, SheetEquity, SheetCashFlow, SheetTaxAccruals,
		SheetWarehouse, SheetShop, SheetLedger, SheetStockCheck, SheetFaults,
	}, f.GetSheetList())

	title, err := f.GetCellValue(SheetPLQuarterly, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Profit & Loss 2024Q1", title)

	rows, err := f.GetRows(SheetTaxAccruals)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024Q1", rows[1][0])
	assert.Equal(t, "1.28", rows[1][5])
	assert.Equal(t, "TAX-2024Q1", rows[1][6])

	title, err = f.GetCellValue(SheetBalanceSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Balance Sheet", title)

	rows, err = f.GetRows(SheetShop)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Mug", "Shop A", "35", "10", "350"}, rows[1])

	rows, err = f.GetRows(SheetLedger, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Len(t, rows, len(rep.Ledger)+1)

	rows, err = f.GetRows(SheetStockCheck)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "NOT UPDATED", rows[1][8])
}

func TestWriteReport_HaltedStatement(t *testing.T) {
	rep := runReport(t)
	rep.Errors[pipeline.StatementCashFlow] = assert.AnError
	rep.Errors[pipeline.StatementQuarterlyPL] = assert.AnError

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	msg, err := f.GetCellValue(SheetCashFlow, "A2")
	require.NoError(t, err)
	assert.Equal(t, assert.AnError.Error(), msg)

	// Quarters that were produced stay on the sheet, the error follows them.
	require.Len(t, rep.QuarterlyPL, 1)
	rows, err := f.GetRows(SheetPLQuarterly)
	require.NoError(t, err)
	require.Len(t, rows, len(rep.QuarterlyPL[0].Rows)+4)
	assert.Equal(t, "Profit & Loss 2024Q1", rows[0][0])
	assert.Equal(t, assert.AnError.Error(), rows[len(rows)-1][0])
}

func TestExcelDate(t *testing.T) {
	assert.Equal(t, "2024-01-01", excelDate("45292"))
	assert.Equal(t, "2024-01-05", excelDate("2024-01-05"))
	assert.Equal(t, "", excelDate(""))
}
