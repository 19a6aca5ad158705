package period

import (
	"time"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// Calendar maps dates to fiscal quarters. A fiscal year starting in April
// 2024 is labelled 2024.
type Calendar struct {
	StartMonth int // 1..12; zero means January
}

func (c Calendar) start() int {
	if c.StartMonth < 1 || c.StartMonth > 12 {
		return 1
	}
	return c.StartMonth
}

// PeriodOf returns the fiscal quarter containing date.
func (c Calendar) PeriodOf(date time.Time) model.Period {
	start := c.start()
	month := int(date.Month())
	offset := (month - start + 12) % 12
	year := date.Year()
	if month < start {
		year--
	}
	return model.Period{Year: year, Quarter: offset/3 + 1}
}

// QuarterStart returns the first day of p.
func (c Calendar) QuarterStart(p model.Period) time.Time {
	month := c.start() + 3*(p.Quarter-1)
	return time.Date(p.Year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// QuarterEnd returns the last day of p.
func (c Calendar) QuarterEnd(p model.Period) time.Time {
	return c.QuarterStart(p).AddDate(0, 3, -1)
}

// YearEnd returns the last day of fiscal year y.
func (c Calendar) YearEnd(year int) time.Time {
	return c.QuarterEnd(model.Period{Year: year, Quarter: 4})
}

// Quarters returns the quarters of year from Q1 through last.
func Quarters(year, last int) []model.Period {
	ps := make([]model.Period, 0, last)
	for q := 1; q <= last; q++ {
		ps = append(ps, model.Period{Year: year, Quarter: q})
	}
	return ps
}

// Stamp fills in the fiscal period of each fault from its date.
func (c Calendar) Stamp(faults []model.Fault) {
	for i := range faults {
		p := c.PeriodOf(faults[i].Date)
		faults[i].Year, faults[i].Quarter = p.Year, p.Quarter
	}
}
