package model

import (
	"fmt"
	"time"
)

// FaultKind names a data problem found while processing the ledger.
type FaultKind string

const (
	FaultUnbalanced         FaultKind = "unbalanced"
	FaultNegativeAmount     FaultKind = "negative_amount"
	FaultUnknownAccount     FaultKind = "unknown_account"
	FaultUnmatchedSale      FaultKind = "unmatched_sale"
	FaultAmbiguousSale      FaultKind = "ambiguous_sale"
	FaultMissingShop        FaultKind = "missing_shop"
	FaultMissingCostBasis   FaultKind = "missing_cost_basis"
	FaultRestockWithoutItem FaultKind = "restock_without_item"
	FaultInsufficientStock  FaultKind = "insufficient_stock"
)

// Halting reports whether the fault stops statement generation for its
// period. Only stock shortfalls are informational.
func (k FaultKind) Halting() bool {
	return k != FaultInsufficientStock
}

// Fault describes a single offending entry.
type Fault struct {
	Kind      FaultKind
	Seq       int
	Date      time.Time
	Reference string
	Debit     string
	Credit    string
	Item      string
	Year      int
	Quarter   int
	Message   string
}

// NewFault captures the identity of e for a fault report.
func NewFault(kind FaultKind, e Entry, format string, args ...any) Fault {
	return Fault{
		Kind:      kind,
		Seq:       e.Seq,
		Date:      e.Date,
		Reference: e.Reference,
		Debit:     e.Debit,
		Credit:    e.Credit,
		Item:      e.Item,
		Message:   fmt.Sprintf(format, args...),
	}
}

// PeriodLabel renders the fault's fiscal period, e.g. "2024Q3".
func (f Fault) PeriodLabel() string {
	if f.Year == 0 {
		return ""
	}
	return fmt.Sprintf("%dQ%d", f.Year, f.Quarter)
}

func (f Fault) Error() string {
	ref := f.Reference
	if ref == "" {
		ref = fmt.Sprintf("#%d", f.Seq)
	}
	return fmt.Sprintf("%s [%s %s %s]: %s", f.Kind, f.PeriodLabel(), ref, f.Date.Format("2006-01-02"), f.Message)
}
