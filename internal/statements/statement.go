// Package statements builds the financial statements from period balances.
package statements

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// ErrPeriodHalted is wrapped by HaltError.
var ErrPeriodHalted = errors.New("period halted by data faults")

// HaltError reports that a statement's window covers periods that could not
// be trusted.
type HaltError struct {
	Statement string
	Periods   []model.Period
	Faults    []model.Fault
}

func (e *HaltError) Error() string {
	labels := make([]string, len(e.Periods))
	for i, p := range e.Periods {
		labels[i] = p.String()
	}
	return fmt.Sprintf("%s: %s halted by %d fault(s)", e.Statement, strings.Join(labels, ", "), len(e.Faults))
}

func (e *HaltError) Unwrap() error { return ErrPeriodHalted }

// RowKind distinguishes account lines from computed rows.
type RowKind int

const (
	RowLine RowKind = iota
	RowHeading
	RowSubtotal
	RowTotal
)

// Row is one labelled line with a value per column. Headings carry no
// values.
type Row struct {
	Label  string
	Kind   RowKind
	Values []decimal.Decimal
}

// Statement is a rendered table.
type Statement struct {
	Title   string
	Columns []string
	Rows    []Row
}

// Row returns the first row labelled label.
func (s Statement) Row(label string) (Row, bool) {
	for _, r := range s.Rows {
		if r.Label == label {
			return r, true
		}
	}
	return Row{}, false
}

// Value returns column col of the first row labelled label.
func (s Statement) Value(label string, col int) (decimal.Decimal, bool) {
	r, ok := s.Row(label)
	if !ok || col < 0 || col >= len(r.Values) {
		return decimal.Zero, false
	}
	return r.Values[col], true
}

func (s *Statement) heading(label string) {
	s.Rows = append(s.Rows, Row{Label: label, Kind: RowHeading})
}

func (s *Statement) add(kind RowKind, label string, values ...decimal.Decimal) {
	s.Rows = append(s.Rows, Row{Label: label, Kind: kind, Values: values})
}

// presentable is the threshold below which a line rounds to nothing.
var presentable = decimal.RequireFromString("0.005")

func nonZero(values []decimal.Decimal) bool {
	for _, v := range values {
		if v.Abs().GreaterThanOrEqual(presentable) {
			return true
		}
	}
	return false
}
