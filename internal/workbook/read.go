// Package workbook reads input tables from and writes reports to .xlsx
// workbooks.
package workbook

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/shopbooks/internal/catalog"
	"github.com/cleared-dev/shopbooks/internal/ledger"
	"github.com/cleared-dev/shopbooks/internal/model"
)

// Input sheet names.
const (
	SheetTransaction = "Transaction"
	SheetPriceList   = "Price List"
	SheetShopSpace   = "Shop Space"
)

// ReadInputs loads the three input tables from a workbook. The shop space
// sheet is optional.
func ReadInputs(r io.Reader) (model.Inputs, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.Inputs{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var in model.Inputs

	rows, err := sheetRows(f, SheetTransaction, true)
	if err != nil {
		return in, err
	}
	if len(rows) > 0 {
		cols, err := ledger.ParseHeader(rows[0])
		if err != nil {
			return in, fmt.Errorf("%s: %w", SheetTransaction, err)
		}
		for i, row := range rows[1:] {
			if blank(row) {
				continue
			}
			if pos := cols.DateColumn(); pos >= 0 && pos < len(row) {
				row[pos] = excelDate(row[pos])
			}
			e, err := cols.Unmarshal(row)
			if err != nil {
				return in, fmt.Errorf("%s row %d: %w", SheetTransaction, i+2, err)
			}
			in.Entries = append(in.Entries, e)
		}
	}

	rows, err = sheetRows(f, SheetPriceList, true)
	if err != nil {
		return in, err
	}
	for i, row := range skipHeader(rows) {
		if blank(row) {
			continue
		}
		row = pad(row, 3)
		row[2] = excelDate(row[2])
		p, err := catalog.UnmarshalPrice(row[:3])
		if err != nil {
			return in, fmt.Errorf("%s row %d: %w", SheetPriceList, i+2, err)
		}
		in.Prices = append(in.Prices, p)
	}

	rows, err = sheetRows(f, SheetShopSpace, false)
	if err != nil {
		return in, err
	}
	for i, row := range skipHeader(rows) {
		if blank(row) {
			continue
		}
		row = pad(row, 4)
		row[3] = excelDate(row[3])
		a, err := catalog.UnmarshalSlot(row[:4])
		if err != nil {
			return in, fmt.Errorf("%s row %d: %w", SheetShopSpace, i+2, err)
		}
		in.Slots = append(in.Slots, a)
	}
	return in, nil
}

func sheetRows(f *excelize.File, sheet string, required bool) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		if required {
			return nil, fmt.Errorf("workbook has no %q sheet", sheet)
		}
		return nil, nil
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", sheet, err)
	}
	return rows, nil
}

// excelDate turns a raw date serial into an ISO date. Text cells pass
// through unchanged.
func excelDate(cell string) string {
	cell = strings.TrimSpace(cell)
	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return cell
	}
	return model.Day(t).Format(model.DateFormat)
}

func skipHeader(rows [][]string) [][]string {
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}

func pad(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
