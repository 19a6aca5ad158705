package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus tracks whether the engine has touched an entry.
type EntryStatus string

const (
	// StatusRaw marks an entry as received from the transaction feed.
	StatusRaw EntryStatus = "raw"
	// StatusResolved marks a shop transfer the inventory engine has valued.
	StatusResolved EntryStatus = "resolved"
	// StatusSynthetic marks an entry created by the engine (COGS, tax).
	StatusSynthetic EntryStatus = "synthetic"
)

// Entry is one row of the transaction ledger: a single debit and a single
// credit of (normally) the same amount.
type Entry struct {
	Seq          int // insertion order, assigned by the ledger store
	Date         time.Time
	Debit        string
	Credit       string
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
	Item         string
	Quantity     decimal.Decimal
	Comments     string
	Reference    string
	Status       EntryStatus
}

// Balanced reports whether both sides carry the same amount.
func (e Entry) Balanced() bool {
	return e.DebitAmount.Equal(e.CreditAmount)
}

// Unvalued reports whether both amounts are unset, which is how shop
// transfers arrive from the feed.
func (e Entry) Unvalued() bool {
	return e.DebitAmount.IsZero() && e.CreditAmount.IsZero()
}

// IsRaw reports whether the entry came from the feed and has not been
// resolved. Entries read without a status are raw.
func (e Entry) IsRaw() bool {
	return e.Status == StatusRaw || e.Status == ""
}

// String identifies the entry in diagnostics.
func (e Entry) String() string {
	ref := e.Reference
	if ref == "" {
		ref = fmt.Sprintf("#%d", e.Seq)
	}
	return fmt.Sprintf("%s %s Dr %s / Cr %s", ref, e.Date.Format("2006-01-02"), e.Debit, e.Credit)
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
