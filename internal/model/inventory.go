package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryLine is the quantity and moving-average cost of one item at one
// location. Shop is empty for the central warehouse.
type InventoryLine struct {
	Item     string
	Shop     string
	Quantity decimal.Decimal
	Cost     decimal.Decimal
	Value    decimal.Decimal
}

// Revalue recomputes Value from Quantity and Cost. Cost is zeroed when no
// stock is left.
func (l InventoryLine) Revalue() InventoryLine {
	if l.Quantity.IsZero() {
		l.Cost = decimal.Zero
	}
	l.Value = l.Quantity.Mul(l.Cost)
	return l
}

// PricePoint is one version of an item's sale price.
type PricePoint struct {
	Item          string
	SalePrice     decimal.Decimal
	EffectiveFrom time.Time
}

// SlotAllocation is one version of the shelf space given to an item in a shop.
type SlotAllocation struct {
	Item          string
	Shop          string
	Slots         int
	EffectiveFrom time.Time
}

// StockLevel labels how full a shop's allocated slots are.
type StockLevel string

const (
	LevelEmpty  StockLevel = "Empty"
	LevelLow    StockLevel = "Low"
	LevelMedium StockLevel = "Medium"
	LevelHigh   StockLevel = "High"
)

var (
	ratioLow    = decimal.RequireFromString("0.6")
	ratioMedium = decimal.RequireFromString("0.3")
)

// LevelFor maps an empty-slot ratio to a stock level. The thresholds are
// applied to the share of slots that are empty, so a ratio of 1 means
// nothing is on the shelf.
func LevelFor(emptyRatio decimal.Decimal) StockLevel {
	switch {
	case emptyRatio.Equal(decimal.NewFromInt(1)):
		return LevelEmpty
	case emptyRatio.GreaterThanOrEqual(ratioLow):
		return LevelLow
	case emptyRatio.GreaterThanOrEqual(ratioMedium):
		return LevelMedium
	default:
		return LevelHigh
	}
}

// Snapshot is one (item, shop) row of a day's stock check.
type Snapshot struct {
	Date         time.Time
	Item         string
	Shop         string
	Quantity     decimal.Decimal
	Value        decimal.Decimal
	Slots        int
	EmptyRatio   decimal.Decimal
	RatioDefined bool // false when no slots are allocated
	Level        StockLevel
}

// NewSnapshot builds a snapshot row for a shop line and its slot allocation.
func NewSnapshot(date time.Time, line InventoryLine, slots int) Snapshot {
	s := Snapshot{
		Date:     date,
		Item:     line.Item,
		Shop:     line.Shop,
		Quantity: line.Quantity,
		Value:    line.Value,
		Slots:    slots,
	}
	if slots <= 0 {
		s.EmptyRatio = decimal.NewFromInt(1)
		s.Level = LevelEmpty
		return s
	}
	total := decimal.NewFromInt(int64(slots))
	s.EmptyRatio = total.Sub(line.Quantity).Div(total).Round(2)
	s.RatioDefined = true
	s.Level = LevelFor(s.EmptyRatio)
	return s
}

// Inputs are the three tables a run consumes.
type Inputs struct {
	Entries []Entry
	Prices  []PricePoint
	Slots   []SlotAllocation
}
