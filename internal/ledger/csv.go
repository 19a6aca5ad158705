package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// Header is the CSV header of the transaction table.
const Header = "Date,Debit,Credit,Debit_Amount,Credit_Amount,Item_Name,Quantity,Comments,Ref_Number,Status"

const (
	numFields    = 10
	colDate      = 0
	colDebit     = 1
	colCredit    = 2
	colDebitAmt  = 3
	colCreditAmt = 4
	colItem      = 5
	colQuantity  = 6
	colComments  = 7
	colRef       = 8
	colStatus    = 9
)

var required = []int{colDate, colDebit, colCredit}

// Columns maps each canonical field to its position in a record, or -1 when
// the source has no such column.
type Columns [numFields]int

// Canonical is the column layout WriteEntries produces.
var Canonical = func() Columns {
	var c Columns
	for i := range c {
		c[i] = i
	}
	return c
}()

// ParseHeader locates the canonical fields in a header row. Date, Debit and
// Credit are required; the rest default to empty.
func ParseHeader(header []string) (Columns, error) {
	names := strings.Split(Header, ",")
	var cols Columns
	for i := range cols {
		cols[i] = -1
	}
	for pos, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for i, name := range names {
			if strings.EqualFold(h, name) {
				cols[i] = pos
			}
		}
	}
	var missing []string
	for _, i := range required {
		if cols[i] < 0 {
			missing = append(missing, names[i])
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("transaction header missing %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// DateColumn returns the record position of the Date field.
func (c Columns) DateColumn() int { return c[colDate] }

// ReadEntries reads a transaction table with a header row.
func ReadEntries(r io.Reader) ([]model.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading transaction CSV: %w", err)
	}
	cols, err := ParseHeader(header)
	if err != nil {
		return nil, err
	}

	var entries []model.Entry
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading transaction CSV: %w", err)
		}
		if blank(rec) {
			continue
		}
		e, err := cols.Unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes entries in the canonical layout, header included.
func WriteEntries(w io.Writer, entries []model.Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts an Entry to a canonical CSV row. Zero amounts and
// quantities are written empty, matching how transfers arrive.
func MarshalEntry(e model.Entry) []string {
	row := make([]string, numFields)
	row[colDate] = e.Date.Format(model.DateFormat)
	row[colDebit] = e.Debit
	row[colCredit] = e.Credit
	if !e.DebitAmount.IsZero() {
		row[colDebitAmt] = e.DebitAmount.StringFixed(2)
	}
	if !e.CreditAmount.IsZero() {
		row[colCreditAmt] = e.CreditAmount.StringFixed(2)
	}
	row[colItem] = e.Item
	if !e.Quantity.IsZero() {
		row[colQuantity] = e.Quantity.String()
	}
	row[colComments] = e.Comments
	row[colRef] = e.Reference
	row[colStatus] = string(e.Status)
	return row
}

// UnmarshalEntry converts a canonical CSV row to an Entry.
func UnmarshalEntry(record []string) (model.Entry, error) {
	if len(record) != numFields {
		return model.Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	return Canonical.Unmarshal(record)
}

// Unmarshal converts a record laid out as c describes to an Entry.
func (c Columns) Unmarshal(record []string) (model.Entry, error) {
	field := func(col int) string {
		pos := c[col]
		if pos < 0 || pos >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[pos])
	}

	date, err := model.ParseDate(field(colDate))
	if err != nil {
		return model.Entry{}, fmt.Errorf("parsing date: %w", err)
	}
	debitAmt, err := parseDecimal("Debit_Amount", field(colDebitAmt))
	if err != nil {
		return model.Entry{}, err
	}
	creditAmt, err := parseDecimal("Credit_Amount", field(colCreditAmt))
	if err != nil {
		return model.Entry{}, err
	}
	qty, err := parseDecimal("Quantity", field(colQuantity))
	if err != nil {
		return model.Entry{}, err
	}

	status := model.EntryStatus(field(colStatus))
	if status == "" {
		status = model.StatusRaw
	}

	return model.Entry{
		Date:         date,
		Debit:        field(colDebit),
		Credit:       field(colCredit),
		DebitAmount:  debitAmt,
		CreditAmount: creditAmt,
		Item:         field(colItem),
		Quantity:     qty,
		Comments:     field(colComments),
		Reference:    field(colRef),
		Status:       status,
	}, nil
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", name, s, err)
	}
	return v, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
