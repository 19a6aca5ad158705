package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// Headers of the two reference tables.
const (
	PriceHeader = "Item_Name,Sale_Price,Effective_From"
	SlotHeader  = "Item_Name,Shop_Name,Slots,Effective_From"
)

const (
	numPriceFields = 3
	colPriceItem   = 0
	colPrice       = 1
	colPriceFrom   = 2

	numSlotFields = 4
	colSlotItem   = 0
	colSlotShop   = 1
	colSlots      = 2
	colSlotFrom   = 3
)

// ReadPrices reads a price list CSV (with header).
func ReadPrices(r io.Reader) ([]model.PricePoint, error) {
	records, err := readTable(r, numPriceFields, "price list")
	if err != nil {
		return nil, err
	}
	var points []model.PricePoint
	for i, rec := range records {
		p, err := UnmarshalPrice(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		points = append(points, p)
	}
	return points, nil
}

// WritePrices writes a price list CSV (with header).
func WritePrices(w io.Writer, points []model.PricePoint) error {
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = MarshalPrice(p)
	}
	return writeTable(w, PriceHeader, rows)
}

// MarshalPrice converts a PricePoint to a CSV row.
func MarshalPrice(p model.PricePoint) []string {
	row := make([]string, numPriceFields)
	row[colPriceItem] = p.Item
	row[colPrice] = p.SalePrice.StringFixed(2)
	row[colPriceFrom] = p.EffectiveFrom.Format(model.DateFormat)
	return row
}

// UnmarshalPrice converts a CSV row to a PricePoint.
func UnmarshalPrice(record []string) (model.PricePoint, error) {
	if len(record) != numPriceFields {
		return model.PricePoint{}, fmt.Errorf("expected %d fields, got %d", numPriceFields, len(record))
	}
	item := strings.TrimSpace(record[colPriceItem])
	if item == "" {
		return model.PricePoint{}, fmt.Errorf("empty Item_Name")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(record[colPrice]))
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("parsing Sale_Price %q: %w", record[colPrice], err)
	}
	from, err := model.ParseDate(record[colPriceFrom])
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("parsing Effective_From: %w", err)
	}
	return model.PricePoint{Item: item, SalePrice: price, EffectiveFrom: from}, nil
}

// ReadSlots reads a shop space CSV (with header).
func ReadSlots(r io.Reader) ([]model.SlotAllocation, error) {
	records, err := readTable(r, numSlotFields, "shop space")
	if err != nil {
		return nil, err
	}
	var allocs []model.SlotAllocation
	for i, rec := range records {
		a, err := UnmarshalSlot(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		allocs = append(allocs, a)
	}
	return allocs, nil
}

// WriteSlots writes a shop space CSV (with header).
func WriteSlots(w io.Writer, allocs []model.SlotAllocation) error {
	rows := make([][]string, len(allocs))
	for i, a := range allocs {
		rows[i] = MarshalSlot(a)
	}
	return writeTable(w, SlotHeader, rows)
}

// MarshalSlot converts a SlotAllocation to a CSV row.
func MarshalSlot(a model.SlotAllocation) []string {
	row := make([]string, numSlotFields)
	row[colSlotItem] = a.Item
	row[colSlotShop] = a.Shop
	row[colSlots] = strconv.Itoa(a.Slots)
	row[colSlotFrom] = a.EffectiveFrom.Format(model.DateFormat)
	return row
}

// UnmarshalSlot converts a CSV row to a SlotAllocation.
func UnmarshalSlot(record []string) (model.SlotAllocation, error) {
	if len(record) != numSlotFields {
		return model.SlotAllocation{}, fmt.Errorf("expected %d fields, got %d", numSlotFields, len(record))
	}
	slotStr := strings.TrimSpace(record[colSlots])
	slots, err := strconv.Atoi(slotStr)
	if err != nil {
		// Spreadsheet exports write whole numbers as "12.0".
		f, ferr := strconv.ParseFloat(slotStr, 64)
		if ferr != nil || f != float64(int(f)) {
			return model.SlotAllocation{}, fmt.Errorf("parsing Slots %q: %w", record[colSlots], err)
		}
		slots = int(f)
	}
	from, err := model.ParseDate(record[colSlotFrom])
	if err != nil {
		return model.SlotAllocation{}, fmt.Errorf("parsing Effective_From: %w", err)
	}
	return model.SlotAllocation{
		Item:          strings.TrimSpace(record[colSlotItem]),
		Shop:          strings.TrimSpace(record[colSlotShop]),
		Slots:         slots,
		EffectiveFrom: from,
	}, nil
}

func readTable(r io.Reader, fields int, name string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	// Skip header row.
	return records[1:], nil
}

func writeTable(w io.Writer, header string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
