package source

import (
	"fmt"
	"os"

	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/workbook"
)

// XLSXLoader reads a workbook with Transaction, Price List and Shop Space
// sheets.
type XLSXLoader struct{}

func (l *XLSXLoader) Format() string { return FormatXLSX }

func (l *XLSXLoader) Load(path string) (model.Inputs, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Inputs{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return workbook.ReadInputs(f)
}
