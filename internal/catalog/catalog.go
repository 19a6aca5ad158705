// Package catalog resolves the dated price list and shelf-slot tables.
package catalog

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// Catalog bundles the two reference tables the inventory engine consults.
type Catalog struct {
	Prices *PriceList
	Slots  *SlotTable
}

// New builds a Catalog from loaded inputs.
func New(prices []model.PricePoint, slots []model.SlotAllocation) *Catalog {
	return &Catalog{Prices: NewPriceList(prices), Slots: NewSlotTable(slots)}
}

// PriceList holds every version of every item's sale price.
type PriceList struct {
	points []model.PricePoint // sorted by item, then EffectiveFrom
}

// NewPriceList copies and orders points.
func NewPriceList(points []model.PricePoint) *PriceList {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b model.PricePoint) int {
		if c := strings.Compare(a.Item, b.Item); c != 0 {
			return c
		}
		return a.EffectiveFrom.Compare(b.EffectiveFrom)
	})
	return &PriceList{points: sorted}
}

// Applicable returns, per item, the price version with the latest
// EffectiveFrom not after date. Items not yet priced on date are absent.
func (l *PriceList) Applicable(date time.Time) map[string]model.PricePoint {
	out := make(map[string]model.PricePoint)
	for _, p := range l.points {
		if p.EffectiveFrom.After(date) {
			continue
		}
		// Later versions overwrite earlier ones thanks to the sort order.
		out[p.Item] = p
	}
	return out
}

// Match returns the items whose applicable price on date equals price,
// compared to the cent, sorted by name.
func (l *PriceList) Match(date time.Time, price decimal.Decimal) []string {
	want := price.Round(2)
	var items []string
	for item, p := range l.Applicable(date) {
		if p.SalePrice.Round(2).Equal(want) {
			items = append(items, item)
		}
	}
	slices.Sort(items)
	return items
}

// SlotTable holds every version of the shelf space per (item, shop).
type SlotTable struct {
	allocs []model.SlotAllocation
}

// NewSlotTable copies and orders allocations.
func NewSlotTable(allocs []model.SlotAllocation) *SlotTable {
	sorted := slices.Clone(allocs)
	slices.SortStableFunc(sorted, func(a, b model.SlotAllocation) int {
		return cmp.Or(
			strings.Compare(a.Item, b.Item),
			strings.Compare(a.Shop, b.Shop),
			a.EffectiveFrom.Compare(b.EffectiveFrom),
		)
	})
	return &SlotTable{allocs: sorted}
}

// Slots returns the slot count applicable to (item, shop) on date and
// whether any allocation applies.
func (t *SlotTable) Slots(item, shop string, date time.Time) (int, bool) {
	slots, found := 0, false
	for _, a := range t.allocs {
		if a.Item != item || a.Shop != shop || a.EffectiveFrom.After(date) {
			continue
		}
		slots, found = a.Slots, true
	}
	return slots, found
}
