package inventory

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// ShopKey identifies one item at one shop.
type ShopKey struct {
	Item string
	Shop string
}

// State is the stock position between two days.
type State struct {
	Warehouse map[string]model.InventoryLine
	Shops     map[ShopKey]model.InventoryLine
}

// NewState returns an empty stock position.
func NewState() State {
	return State{
		Warehouse: make(map[string]model.InventoryLine),
		Shops:     make(map[ShopKey]model.InventoryLine),
	}
}

// Clone returns an independent copy.
func (s State) Clone() State {
	c := State{Warehouse: maps.Clone(s.Warehouse), Shops: maps.Clone(s.Shops)}
	if c.Warehouse == nil {
		c.Warehouse = make(map[string]model.InventoryLine)
	}
	if c.Shops == nil {
		c.Shops = make(map[ShopKey]model.InventoryLine)
	}
	return c
}

// WarehouseLines returns the warehouse table sorted by item.
func (s State) WarehouseLines() []model.InventoryLine {
	lines := slices.Collect(maps.Values(s.Warehouse))
	slices.SortFunc(lines, compareLines)
	return lines
}

// ShopLines returns the shop table sorted by item, then shop.
func (s State) ShopLines() []model.InventoryLine {
	lines := slices.Collect(maps.Values(s.Shops))
	slices.SortFunc(lines, compareLines)
	return lines
}

// TotalValue sums the value of every line.
func (s State) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Warehouse {
		total = total.Add(l.Value)
	}
	for _, l := range s.Shops {
		total = total.Add(l.Value)
	}
	return total
}

func compareLines(a, b model.InventoryLine) int {
	return cmp.Or(strings.Compare(a.Item, b.Item), strings.Compare(a.Shop, b.Shop))
}
