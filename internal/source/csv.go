package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cleared-dev/shopbooks/internal/catalog"
	"github.com/cleared-dev/shopbooks/internal/ledger"
	"github.com/cleared-dev/shopbooks/internal/model"
)

// Formats understood by the default registry.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// File names read by CSVLoader.
const (
	TransactionsFile = "transactions.csv"
	PriceListFile    = "price_list.csv"
	ShopSpaceFile    = "shop_space.csv"
)

// CSVLoader reads a directory holding one csv file per table. The shop
// space table is optional.
type CSVLoader struct{}

func (l *CSVLoader) Format() string { return FormatCSV }

func (l *CSVLoader) Load(dir string) (model.Inputs, error) {
	var in model.Inputs
	var err error

	if in.Entries, err = readFile(dir, TransactionsFile, true, ledger.ReadEntries); err != nil {
		return in, err
	}
	if in.Prices, err = readFile(dir, PriceListFile, true, catalog.ReadPrices); err != nil {
		return in, err
	}
	if in.Slots, err = readFile(dir, ShopSpaceFile, false, catalog.ReadSlots); err != nil {
		return in, err
	}
	return in, nil
}

func readFile[T any](dir, name string, required bool, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return out, nil
}
