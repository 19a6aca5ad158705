package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// PrefixCOGS tags cost-of-goods-sold entries.
	PrefixCOGS = "COGS"
	// PrefixTax tags quarterly tax accruals.
	PrefixTax = "TAX"
)

// FormatCOGSRef returns a reference like "COGS-20250103-002".
func FormatCOGSRef(date time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", PrefixCOGS, date.Format("20060102"), seq)
}

// FormatTaxRef returns a reference like "TAX-2025Q1".
func FormatTaxRef(year, quarter int) string {
	return fmt.Sprintf("%s-%04dQ%d", PrefixTax, year, quarter)
}

// ParseCOGSRef parses "COGS-20250103-002" into its date and sequence.
func ParseCOGSRef(ref string) (time.Time, int, error) {
	parts := strings.SplitN(ref, "-", 3)
	if len(parts) != 3 || parts[0] != PrefixCOGS {
		return time.Time{}, 0, fmt.Errorf("invalid COGS reference: %q", ref)
	}

	date, err := time.Parse("20060102", parts[1])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid date in reference %q: %w", ref, err)
	}

	seq, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid sequence in reference %q: %w", ref, err)
	}
	return date, seq, nil
}

// ParseTaxRef parses "TAX-2025Q1" into year and quarter.
func ParseTaxRef(ref string) (year, quarter int, err error) {
	rest, ok := strings.CutPrefix(ref, PrefixTax+"-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid tax reference: %q", ref)
	}

	ys, qs, ok := strings.Cut(rest, "Q")
	if !ok {
		return 0, 0, fmt.Errorf("invalid tax reference: %q", ref)
	}

	year, err = strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in reference %q: %w", ref, err)
	}

	quarter, err = strconv.Atoi(qs)
	if err != nil || quarter < 1 || quarter > 4 {
		return 0, 0, fmt.Errorf("invalid quarter in reference %q", ref)
	}
	return year, quarter, nil
}

// IsSynthetic reports whether ref is a well-formed engine reference.
func IsSynthetic(ref string) bool {
	if _, _, err := ParseCOGSRef(ref); err == nil {
		return true
	}
	_, _, err := ParseTaxRef(ref)
	return err == nil
}
