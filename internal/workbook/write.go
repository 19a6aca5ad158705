package workbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/pipeline"
	"github.com/cleared-dev/shopbooks/internal/statements"
)

// Report sheet names, in workbook order.
const (
	SheetPLYTD        = "Profit & Loss YTD"
	SheetPLQuarterly  = "Profit & Loss Quarterly"
	SheetBalanceSheet = "Balance Sheet Today"
	SheetEquity       = "Stmt of Chng to Equity"
	SheetCashFlow     = "Cash Flow Statement"
	SheetTaxAccruals  = "Tax Accruals"
	SheetWarehouse    = "Inventory Warehouse"
	SheetShop         = "Inventory Shop"
	SheetLedger       = "Transactions Cleaned"
	SheetStockCheck   = "Inventory Stock Check"
	SheetFaults       = "Faults"
)

// numFmtAmount is the built-in "#,##0.00" format.
const numFmtAmount = 4

// FileName returns the report file name for a report date.
func FileName(rep *pipeline.Report) string {
	return rep.AsOf.Format(model.DateFormat) + " FS_BS.xlsx"
}

// Save writes the report workbook into dir and returns its path.
func Save(dir string, rep *pipeline.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}
	path := filepath.Join(dir, FileName(rep))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report: %w", err)
	}
	if err := WriteReport(file, rep); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing report: %w", err)
	}
	return path, nil
}

// WriteReport renders every statement and table as its own sheet.
func WriteReport(w io.Writer, rep *pipeline.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	amount, err := f.NewStyle(&excelize.Style{NumFmt: numFmtAmount})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	sw := &sheetWriter{f: f, amount: amount, bold: bold}

	if err := f.SetSheetName(f.GetSheetName(0), SheetPLYTD); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	sw.statement(SheetPLYTD, rep.PLYTD, rep.Errors[pipeline.StatementPLYTD])
	sw.stacked(SheetPLQuarterly, rep.QuarterlyPL, rep.Errors[pipeline.StatementQuarterlyPL])
	sw.statement(SheetBalanceSheet, rep.BalanceSheet.Statement, rep.Errors[pipeline.StatementBalanceSheet])
	sw.statement(SheetEquity, rep.Equity, rep.Errors[pipeline.StatementEquity])
	sw.statement(SheetCashFlow, rep.CashFlow, rep.Errors[pipeline.StatementCashFlow])
	sw.table(SheetTaxAccruals, []any{"Period", "Date", "Operating_Profit", "YTD_Profit", "Tax_Due", "Tax_Expense", "Ref_Number"},
		func(add func(...any)) {
			for _, a := range rep.Accruals {
				add(a.Period.String(), a.Date.Format(model.DateFormat), num(a.Profit), num(a.YTDProfit),
					num(a.Due), num(a.Expense), a.Reference)
			}
		})

	sw.table(SheetWarehouse, []any{"Item_Name", "Quantity", "Cost", "Value"}, func(add func(...any)) {
		for _, l := range rep.Warehouse {
			add(l.Item, num(l.Quantity), num(l.Cost), num(l.Value))
		}
	})
	sw.table(SheetShop, []any{"Item_Name", "Shop_Name", "Quantity", "Cost", "Value"}, func(add func(...any)) {
		for _, l := range rep.Shops {
			add(l.Item, l.Shop, num(l.Quantity), num(l.Cost), num(l.Value))
		}
	})
	sw.table(SheetLedger, []any{"Date", "Debit", "Credit", "Debit_Amount", "Credit_Amount", "Item_Name", "Quantity", "Comments", "Ref_Number", "Status"},
		func(add func(...any)) {
			for _, e := range rep.Ledger {
				add(e.Date.Format(model.DateFormat), e.Debit, e.Credit, num(e.DebitAmount), num(e.CreditAmount),
					e.Item, num(e.Quantity), e.Comments, e.Reference, string(e.Status))
			}
		})
	sw.table(SheetStockCheck, []any{"Date", "Item_Name", "Shop_Name", "Quantity", "Value", "Slots", "Empty_Ratio", "Stock_Level", "Status"},
		func(add func(...any)) {
			for _, a := range rep.Alerts {
				ratio := any(num(a.EmptyRatio))
				if !a.RatioDefined {
					ratio = ""
				}
				add(a.Date.Format(model.DateFormat), a.Item, a.Shop, num(a.Quantity), num(a.Value), a.Slots, ratio, string(a.Level), a.Status())
			}
		})
	sw.table(SheetFaults, []any{"Kind", "Period", "Seq", "Date", "Ref_Number", "Debit", "Credit", "Item_Name", "Message"},
		func(add func(...any)) {
			for _, ft := range rep.Faults {
				add(string(ft.Kind), ft.PeriodLabel(), ft.Seq, ft.Date.Format(model.DateFormat), ft.Reference,
					ft.Debit, ft.Credit, ft.Item, ft.Message)
			}
		})

	if sw.err != nil {
		return sw.err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// sheetWriter keeps the first error so each sheet can be written without
// checking every cell.
type sheetWriter struct {
	f      *excelize.File
	amount int
	bold   int
	err    error
}

func (sw *sheetWriter) sheet(name string) bool {
	if sw.err != nil {
		return false
	}
	if idx, err := sw.f.GetSheetIndex(name); err == nil && idx >= 0 {
		return true
	}
	if _, err := sw.f.NewSheet(name); err != nil {
		sw.err = fmt.Errorf("creating sheet %s: %w", name, err)
		return false
	}
	return true
}

func (sw *sheetWriter) row(sheet string, row int, values []any) {
	if sw.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		sw.err = err
		return
	}
	if err := sw.f.SetSheetRow(sheet, cell, &values); err != nil {
		sw.err = fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
}

func (sw *sheetWriter) style(sheet string, row, fromCol, toCol, style int) {
	if sw.err != nil || toCol < fromCol {
		return
	}
	from, _ := excelize.CoordinatesToCellName(fromCol, row)
	to, _ := excelize.CoordinatesToCellName(toCol, row)
	if err := sw.f.SetCellStyle(sheet, from, to, style); err != nil {
		sw.err = fmt.Errorf("styling %s: %w", sheet, err)
	}
}

// statement writes a title, a column header, then one row per line. A
// statement that could not be produced is replaced by its error.
func (sw *sheetWriter) statement(name string, s statements.Statement, stmtErr error) {
	if !sw.sheet(name) {
		return
	}
	if stmtErr != nil {
		sw.row(name, 1, []any{name})
		sw.row(name, 2, []any{stmtErr.Error()})
		return
	}
	sw.block(name, 1, s)
}

// stacked writes statements one below the other with a blank row between
// them. An error, such as halted periods, follows the last statement.
func (sw *sheetWriter) stacked(name string, list []statements.Statement, stmtErr error) {
	if !sw.sheet(name) {
		return
	}
	next := 1
	for _, s := range list {
		next = sw.block(name, next, s) + 1
	}
	if stmtErr != nil {
		sw.row(name, next, []any{stmtErr.Error()})
	}
}

// block writes s from row start and returns the row after it.
func (sw *sheetWriter) block(name string, start int, s statements.Statement) int {
	sw.row(name, start, []any{s.Title})
	sw.style(name, start, 1, 1, sw.bold)
	header := []any{""}
	for _, c := range s.Columns {
		header = append(header, c)
	}
	sw.row(name, start+1, header)
	sw.style(name, start+1, 1, len(header), sw.bold)

	row := start + 2
	for _, r := range s.Rows {
		values := []any{r.Label}
		for _, v := range r.Values {
			values = append(values, num(v))
		}
		sw.row(name, row, values)
		sw.style(name, row, 2, len(values), sw.amount)
		if r.Kind != statements.RowLine {
			sw.style(name, row, 1, 1, sw.bold)
		}
		row++
	}
	return row
}

func (sw *sheetWriter) table(name string, header []any, fill func(add func(...any))) {
	if !sw.sheet(name) {
		return
	}
	sw.row(name, 1, header)
	sw.style(name, 1, 1, len(header), sw.bold)
	next := 2
	fill(func(values ...any) {
		sw.row(name, next, values)
		next++
	})
}

func num(d decimal.Decimal) float64 {
	return d.Round(6).InexactFloat64()
}
