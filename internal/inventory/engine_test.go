package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/shopbooks/internal/accounts"
	"github.com/cleared-dev/shopbooks/internal/catalog"
	"github.com/cleared-dev/shopbooks/internal/ledger"
	"github.com/cleared-dev/shopbooks/internal/model"
)

func date(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func testChart(t *testing.T) *accounts.Service {
	t.Helper()
	chart, err := accounts.NewService(accounts.DefaultChart(), accounts.DefaultShopPrefix)
	require.NoError(t, err)
	return chart
}

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]model.PricePoint{
			{Item: "Mug", SalePrice: d("20"), EffectiveFrom: date(1)},
			{Item: "Cap", SalePrice: d("15"), EffectiveFrom: date(1)},
			{Item: "Hat", SalePrice: d("15"), EffectiveFrom: date(1)},
		},
		[]model.SlotAllocation{{Item: "Mug", Shop: "Shop A", Slots: 50, EffectiveFrom: date(1)}},
	)
}

func restock(day int, item, qty, amount string) model.Entry {
	return model.Entry{Date: date(day), Debit: "Inventory", Credit: "Cash", DebitAmount: d(amount), CreditAmount: d(amount), Item: item, Quantity: d(qty), Status: model.StatusRaw}
}

func transfer(seq, day int, shop, item, qty string) model.Entry {
	return model.Entry{Seq: seq, Date: date(day), Debit: "Inventory_" + shop, Credit: "Inventory", Item: item, Quantity: d(qty), Status: model.StatusRaw}
}

func sale(day int, amount, qty, shop string) model.Entry {
	e := model.Entry{Date: date(day), Debit: "Cash", Credit: "Revenue", DebitAmount: d(amount), CreditAmount: d(amount), Comments: shop, Status: model.StatusRaw}
	if qty != "" {
		e.Quantity = d(qty)
	}
	return e
}

func TestProcessDay_RestockAndTransfer(t *testing.T) {
	eng := NewEngine(testChart(t), testCatalog())

	res := eng.ProcessDay(NewState(), ledger.Day{Date: date(2), Entries: []model.Entry{
		restock(2, "Mug", "100", "1000"),
		transfer(2, 2, "Shop A", "Mug", "40"),
	}})
	require.Empty(t, res.Faults)

	wh := res.State.Warehouse["Mug"]
	assert.True(t, d("60").Equal(wh.Quantity))
	assert.True(t, d("10").Equal(wh.Cost))
	assert.True(t, d("600").Equal(wh.Value))

	shop := res.State.Shops[ShopKey{Item: "Mug", Shop: "Shop A"}]
	assert.True(t, d("40").Equal(shop.Quantity))
	assert.True(t, d("10").Equal(shop.Cost))
	assert.True(t, d("400").Equal(shop.Value))

	require.Len(t, res.Resolutions, 1)
	assert.Equal(t, 2, res.Resolutions[0].Seq)
	assert.True(t, d("400").Equal(res.Resolutions[0].Amount))

	require.Len(t, res.Snapshots, 1)
	assert.Equal(t, 50, res.Snapshots[0].Slots)
	assert.True(t, d("0.2").Equal(res.Snapshots[0].EmptyRatio))
	assert.Equal(t, model.LevelHigh, res.Snapshots[0].Level)
}

func TestProcessDay_BatchCostGroupsSameDayRestocks(t *testing.T) {
	eng := NewEngine(testChart(t), testCatalog())
	state := NewState()
	state.Warehouse["Mug"] = model.InventoryLine{Item: "Mug", Quantity: d("50"), Cost: d("10")}.Revalue()

	res := eng.ProcessDay(state, ledger.Day{Date: date(3), Entries: []model.Entry{
		restock(3, "Mug", "30", "390"),
		restock(3, "Mug", "20", "210"),
	}})

	wh := res.State.Warehouse["Mug"]
	assert.True(t, d("100").Equal(wh.Quantity))
	assert.True(t, d("11").Equal(wh.Cost), wh.Cost.String())
	assert.Equal(t, 2, res.Restocks)

	// The input state is untouched.
	assert.True(t, d("50").Equal(state.Warehouse["Mug"].Quantity))
}

func TestProcessDay_ZeroBatchIsIdempotent(t *testing.T) {
	eng := NewEngine(testChart(t), testCatalog())
	state := NewState()
	state.Warehouse["Mug"] = model.InventoryLine{Item: "Mug", Quantity: d("60"), Cost: d("10")}.Revalue()

	res := eng.ProcessDay(state, ledger.Day{Date: date(3), Entries: []model.Entry{restock(3, "Mug", "0", "0")}})
	assert.Equal(t, state.Warehouse["Mug"].Cost.String(), res.State.Warehouse["Mug"].Cost.String())
	assert.True(t, d("600").Equal(res.State.Warehouse["Mug"].Value))
}

func stockedState() State {
	state := NewState()
	state.Warehouse["Mug"] = model.InventoryLine{Item: "Mug", Quantity: d("60"), Cost: d("10")}.Revalue()
	state.Shops[ShopKey{Item: "Mug", Shop: "Shop A"}] = model.InventoryLine{Item: "Mug", Shop: "Shop A", Quantity: d("40"), Cost: d("10")}.Revalue()
	return state
}

func TestProcessDay_SaleBooksCOGS(t *testing.T) {
	eng := NewEngine(testChart(t), testCatalog())

	res := eng.ProcessDay(stockedState(), ledger.Day{Date: date(5), Entries: []model.Entry{sale(5, "20", "5", " Shop A ")}})
	require.Empty(t, res.Faults)
	require.Len(t, res.COGS, 1)

	cogs := res.COGS[0]
	assert.Equal(t, "COGS Expense", cogs.Debit)
	assert.Equal(t, "Inventory", cogs.Credit)
	assert.True(t, d("50").Equal(cogs.DebitAmount))
	assert.True(t, cogs.Balanced())
	assert.Equal(t, "Mug", cogs.Item)
	assert.Equal(t, "Shop A", cogs.Comments)
	assert.Equal(t, "COGS-20240105-001", cogs.Reference)
	assert.Equal(t, model.StatusSynthetic, cogs.Status)
	assert.Equal(t, date(5), cogs.Date)

	shop := res.State.Shops[ShopKey{Item: "Mug", Shop: "Shop A"}]
	assert.True(t, d("35").Equal(shop.Quantity))
	assert.True(t, d("350").Equal(shop.Value))

	// Stock is conserved: 100 in, 5 sold.
	assert.True(t, d("95").Equal(onHand(res.State, "Mug")))
}

func TestProcessDay_SaleWithoutQuantityIsOneUnit(t *testing.T) {
	eng := NewEngine(testChart(t), testCatalog())

	res := eng.ProcessDay(stockedState(), ledger.Day{Date: date(5), Entries: []model.Entry{
		sale(5, "20", "", "Shop A"),
		sale(5, "20", "", "Shop A"),
	}})
	require.Len(t, res.COGS, 2)
	assert.True(t, d("10").Equal(res.COGS[0].DebitAmount))
	assert.Equal(t, "COGS-20240105-002", res.COGS[1].Reference)
	assert.True(t, d("38").Equal(res.State.Shops[ShopKey{Item: "Mug", Shop: "Shop A"}].Quantity))
}

func TestProcessDay_Faults(t *testing.T) {
	tests := []struct {
		name  string
		entry model.Entry
		kind  model.FaultKind
	}{
		{"unmatched sale", sale(5, "17", "1", "Shop A"), model.FaultUnmatchedSale},
		{"ambiguous sale", sale(5, "15", "2", "Shop A"), model.FaultAmbiguousSale},
		{"amount is a line total", sale(5, "100", "5", "Shop A"), model.FaultUnmatchedSale},
		{"missing shop", sale(5, "20", "1", "  "), model.FaultMissingShop},
		{"no shop stock", sale(5, "20", "1", "Shop B"), model.FaultMissingCostBasis},
		{"restock without item", restock(5, "", "10", "100"), model.FaultRestockWithoutItem},
		{"transfer without warehouse cost", transfer(9, 5, "Shop A", "Pen", "3"), model.FaultMissingCostBasis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine(testChart(t), testCatalog())
			res := eng.ProcessDay(stockedState(), ledger.Day{Date: date(5), Entries: []model.Entry{tt.entry}})

			require.Len(t, res.Faults, 1)
			assert.Equal(t, tt.kind, res.Faults[0].Kind)
			assert.True(t, tt.kind.Halting())
			assert.Empty(t, res.COGS)
			assert.Empty(t, res.Resolutions)
			assert.True(t, d("100").Equal(onHand(res.State, "Mug")))
		})
	}
}

func TestProcessDay_InsufficientStockWarns(t *testing.T) {
	eng := NewEngine(testChart(t), testCatalog())

	res := eng.ProcessDay(stockedState(), ledger.Day{Date: date(5), Entries: []model.Entry{
		transfer(1, 5, "Shop A", "Mug", "70"),
		sale(5, "20", "120", "Shop A"),
	}})
	require.Len(t, res.Faults, 2)
	for _, f := range res.Faults {
		assert.Equal(t, model.FaultInsufficientStock, f.Kind)
		assert.False(t, f.Kind.Halting())
	}
	require.Len(t, res.COGS, 1)
	assert.True(t, d("-10").Equal(res.State.Warehouse["Mug"].Quantity))
	assert.True(t, d("-20").Equal(onHand(res.State, "Mug")))
}

func TestRun(t *testing.T) {
	store := ledger.NewStore([]model.Entry{
		restock(2, "Mug", "100", "1000"),
		{Date: date(3), Debit: "Inventory_Shop A", Credit: "Inventory", Item: "Mug", Quantity: d("40"), Status: model.StatusRaw},
		sale(5, "20", "5", "Shop A"),
	})
	eng := NewEngine(testChart(t), testCatalog())
	var days []time.Time
	eng.OnDay = func(r DayResult) { days = append(days, r.Date) }

	res, err := eng.Run(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{date(2), date(3), date(5)}, days)
	assert.Equal(t, date(5), res.LastDay)
	require.Len(t, res.COGS, 1)
	assert.Equal(t, 4, res.COGS[0].Seq)
	assert.Equal(t, 4, store.Len())

	transferred, err := store.Get(2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, transferred.Status)
	assert.True(t, d("400").Equal(transferred.DebitAmount))

	require.Len(t, res.Warehouse, 1)
	assert.True(t, d("600").Equal(res.Warehouse[0].Value))
	require.Len(t, res.Shops, 1)
	assert.True(t, d("350").Equal(res.Shops[0].Value))
	assert.Len(t, res.Snapshots, 2)
	assert.Empty(t, res.Faults)

	// Value is conserved: 1000 bought, 50 expensed.
	assert.True(t, d("950").Equal(res.State.TotalValue()))
}

func TestRun_Cancelled(t *testing.T) {
	store := ledger.NewStore([]model.Entry{restock(2, "Mug", "100", "1000")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(testChart(t), testCatalog()).Run(ctx, store)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAlerts(t *testing.T) {
	store := ledger.NewStore([]model.Entry{
		restock(2, "Mug", "100", "1000"),
		{Date: date(3), Debit: "Inventory_Shop A", Credit: "Inventory", Item: "Mug", Quantity: d("40"), Status: model.StatusRaw},
	})
	res, err := NewEngine(testChart(t), testCatalog()).Run(context.Background(), store)
	require.NoError(t, err)

	alerts := Alerts(res, date(3))
	require.Len(t, alerts, 1)
	assert.Equal(t, StatusUpdated, alerts[0].Status())
	assert.Equal(t, "Shop A", alerts[0].Shop)

	alerts = Alerts(res, date(10))
	require.Len(t, alerts, 1)
	assert.Equal(t, StatusNotUpdated, alerts[0].Status())

	assert.Nil(t, Alerts(Result{}, date(3)))
}

func onHand(s State, item string) decimal.Decimal {
	total := s.Warehouse[item].Quantity
	for k, l := range s.Shops {
		if k.Item == item {
			total = total.Add(l.Quantity)
		}
	}
	return total
}
