package model

import (
	"cmp"
	"fmt"

	"github.com/shopspring/decimal"
)

// Period is a fiscal quarter. Year is the calendar year the fiscal year
// starts in.
type Period struct {
	Year    int
	Quarter int
}

func (p Period) String() string {
	return fmt.Sprintf("%dQ%d", p.Year, p.Quarter)
}

// Compare orders periods chronologically.
func (p Period) Compare(o Period) int {
	if c := cmp.Compare(p.Year, o.Year); c != 0 {
		return c
	}
	return cmp.Compare(p.Quarter, o.Quarter)
}

// After reports whether p falls after o.
func (p Period) After(o Period) bool { return p.Compare(o) > 0 }

// Next returns the following quarter.
func (p Period) Next() Period {
	if p.Quarter == 4 {
		return Period{Year: p.Year + 1, Quarter: 1}
	}
	return Period{Year: p.Year, Quarter: p.Quarter + 1}
}

// Balance is the net movement of an account within a period, debit-positive.
type Balance struct {
	Account string
	Period  Period
	Amount  decimal.Decimal
}
