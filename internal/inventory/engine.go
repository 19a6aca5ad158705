package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/catalog"
	"github.com/cleared-dev/shopbooks/internal/id"
	"github.com/cleared-dev/shopbooks/internal/ledger"
	"github.com/cleared-dev/shopbooks/internal/model"
)

// Chart is the part of the chart of accounts the engine needs.
type Chart interface {
	Role(r model.Role) model.Account
	ShopOf(name string) (string, bool)
}

// Resolution values one shop transfer.
type Resolution struct {
	Seq    int
	Amount decimal.Decimal
}

// DayResult is everything one day of activity produced.
type DayResult struct {
	Date        time.Time
	State       State
	COGS        []model.Entry
	Resolutions []Resolution
	Snapshots   []model.Snapshot
	Faults      []model.Fault

	Restocks  int
	Transfers int
	Sales     int
}

// Engine replays the ledger day by day against the warehouse and shop stock.
type Engine struct {
	chart   Chart
	catalog *catalog.Catalog

	// OnDay, when set, is called after each day is processed.
	OnDay func(DayResult)
}

// NewEngine creates an Engine.
func NewEngine(chart Chart, cat *catalog.Catalog) *Engine {
	return &Engine{chart: chart, catalog: cat}
}

type batch struct {
	qty    decimal.Decimal
	amount decimal.Decimal
}

// ProcessDay applies one day's entries to state and returns the next state.
// The input state is not modified. Within the day restocks are applied
// first, then shop transfers, then sales.
func (e *Engine) ProcessDay(state State, day ledger.Day) DayResult {
	res := DayResult{Date: day.Date, State: state.Clone()}
	inventory := e.chart.Role(model.RoleInventory).Name
	sales := e.chart.Role(model.RoleSales).Name

	// Warehouse restock.
	batches := make(map[string]*batch)
	var items []string
	for _, entry := range day.Entries {
		if !entry.IsRaw() || entry.Debit != inventory {
			continue
		}
		if entry.Item == "" {
			res.Faults = append(res.Faults, model.NewFault(model.FaultRestockWithoutItem, entry,
				"restock of %s has no item", entry.DebitAmount.StringFixed(2)))
			continue
		}
		b, ok := batches[entry.Item]
		if !ok {
			b = &batch{}
			batches[entry.Item] = b
			items = append(items, entry.Item)
		}
		b.qty = b.qty.Add(entry.Quantity)
		b.amount = b.amount.Add(entry.CreditAmount)
		res.Restocks++
	}
	for _, item := range items {
		b := batches[item]
		batchCost := decimal.Zero
		if !b.qty.IsZero() {
			batchCost = b.amount.Div(b.qty)
		}
		line := res.State.Warehouse[item]
		line.Item = item
		line.Cost = MovingAverage(line.Quantity, line.Cost, b.qty, batchCost)
		line.Quantity = line.Quantity.Add(b.qty)
		res.State.Warehouse[item] = line.Revalue()
	}

	// Shop transfers.
	for _, entry := range day.Entries {
		if entry.Status == model.StatusSynthetic {
			continue
		}
		shop, ok := e.chart.ShopOf(entry.Debit)
		if !ok {
			continue
		}
		res.Transfers++
		if entry.Item == "" {
			res.Faults = append(res.Faults, model.NewFault(model.FaultRestockWithoutItem, entry,
				"transfer to %s has no item", shop))
			continue
		}
		wh, ok := res.State.Warehouse[entry.Item]
		if !ok || wh.Cost.IsZero() {
			res.Faults = append(res.Faults, model.NewFault(model.FaultMissingCostBasis, entry,
				"no warehouse cost for %s", entry.Item))
			continue
		}
		qty := entry.Quantity
		if qty.GreaterThan(wh.Quantity) {
			res.Faults = append(res.Faults, model.NewFault(model.FaultInsufficientStock, entry,
				"transfer of %s %s exceeds warehouse stock %s", qty, entry.Item, wh.Quantity))
		}
		unitCost := wh.Cost

		key := ShopKey{Item: entry.Item, Shop: shop}
		line := res.State.Shops[key]
		line.Item, line.Shop = entry.Item, shop
		line.Cost = MovingAverage(line.Quantity, line.Cost, qty, unitCost)
		line.Quantity = line.Quantity.Add(qty)
		res.State.Shops[key] = line.Revalue()

		wh.Quantity = wh.Quantity.Sub(qty)
		res.State.Warehouse[entry.Item] = wh.Revalue()

		res.Resolutions = append(res.Resolutions, Resolution{Seq: entry.Seq, Amount: qty.Mul(unitCost)})
	}

	// Sales and cost of goods sold.
	for _, entry := range day.Entries {
		if !entry.IsRaw() || entry.Credit != sales {
			continue
		}
		res.Sales++
		if cogs, fault, ok := e.sell(&res, entry); ok {
			res.COGS = append(res.COGS, cogs)
		} else {
			res.Faults = append(res.Faults, fault)
		}
	}

	// Stock check.
	for _, line := range res.State.ShopLines() {
		slots, _ := e.catalog.Slots.Slots(line.Item, line.Shop, day.Date)
		res.Snapshots = append(res.Snapshots, model.NewSnapshot(day.Date, line, slots))
	}
	return res
}

// sell matches a sale to an item and books its cost. The debit amount is the
// item's list price; the quantity, one when absent, only scales the cost.
// Stock shortfalls are recorded as warnings and the sale still proceeds.
func (e *Engine) sell(res *DayResult, entry model.Entry) (model.Entry, model.Fault, bool) {
	qty := entry.Quantity
	if !qty.IsPositive() {
		qty = decimal.NewFromInt(1)
	}
	price := entry.DebitAmount

	matches := e.catalog.Prices.Match(entry.Date, price)
	switch len(matches) {
	case 0:
		return model.Entry{}, model.NewFault(model.FaultUnmatchedSale, entry,
			"no item priced at %s on %s", price.StringFixed(2), entry.Date.Format(model.DateFormat)), false
	case 1:
	default:
		return model.Entry{}, model.NewFault(model.FaultAmbiguousSale, entry,
			"items %s all priced at %s", strings.Join(matches, ", "), price.StringFixed(2)), false
	}
	item := matches[0]

	shop := strings.TrimSpace(entry.Comments)
	if shop == "" {
		return model.Entry{}, model.NewFault(model.FaultMissingShop, entry, "sale of %s names no shop", item), false
	}

	key := ShopKey{Item: item, Shop: shop}
	line, ok := res.State.Shops[key]
	if !ok || line.Cost.IsZero() {
		return model.Entry{}, model.NewFault(model.FaultMissingCostBasis, entry,
			"no cost for %s at %s", item, shop), false
	}
	if qty.GreaterThan(line.Quantity) {
		res.Faults = append(res.Faults, model.NewFault(model.FaultInsufficientStock, entry,
			"sale of %s %s exceeds %s stock %s", qty, item, shop, line.Quantity))
	}

	amount := qty.Mul(line.Cost)
	line.Quantity = line.Quantity.Sub(qty)
	res.State.Shops[key] = line.Revalue()

	return model.Entry{
		Date:         entry.Date,
		Debit:        e.chart.Role(model.RoleCOGS).Name,
		Credit:       e.chart.Role(model.RoleInventory).Name,
		DebitAmount:  amount,
		CreditAmount: amount,
		Item:         item,
		Quantity:     qty,
		Comments:     shop,
		Reference:    id.FormatCOGSRef(entry.Date, len(res.COGS)+1),
		Status:       model.StatusSynthetic,
	}, model.Fault{}, true
}

// Result is the outcome of replaying a whole ledger.
type Result struct {
	State     State
	Warehouse []model.InventoryLine
	Shops     []model.InventoryLine
	Snapshots []model.Snapshot
	Faults    []model.Fault
	COGS      []model.Entry
	LastDay   time.Time
}

// Run folds ProcessDay over every day in store, appending COGS entries and
// valuing transfers in place. It stops between days when ctx is done.
func (e *Engine) Run(ctx context.Context, store *ledger.Store) (Result, error) {
	var out Result
	state := NewState()

	for _, day := range store.Days() {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("inventory run stopped at %s: %w", day.Date.Format(model.DateFormat), err)
		}

		res := e.ProcessDay(state, day)
		state = res.State

		out.COGS = append(out.COGS, store.Append(res.COGS...)...)
		for _, r := range res.Resolutions {
			if err := store.Resolve(r.Seq, r.Amount); err != nil {
				return out, fmt.Errorf("applying transfer valuation: %w", err)
			}
		}
		out.Snapshots = append(out.Snapshots, res.Snapshots...)
		out.Faults = append(out.Faults, res.Faults...)
		out.LastDay = day.Date

		if e.OnDay != nil {
			e.OnDay(res)
		}
	}

	out.State = state
	out.Warehouse = state.WarehouseLines()
	out.Shops = state.ShopLines()
	return out, nil
}
