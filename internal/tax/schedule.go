// Package tax computes quarterly income-tax accruals under tiered
// exemption schedules.
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/config"
)

// Tier exempts a share of the profit slice ending at UpTo.
type Tier struct {
	UpTo      decimal.Decimal
	Exemption decimal.Decimal
}

// Schedule is a flat rate softened by exemption tiers.
type Schedule struct {
	Name  string
	Rate  decimal.Decimal
	Tiers []Tier
}

var one = decimal.NewFromInt(1)

// TaxDue applies the tiers cumulatively: each tier taxes the slice between
// the previous bound and its own at Rate*(1-Exemption); profit above the
// last bound is taxed at the full rate. Non-positive profit owes nothing.
func (s Schedule) TaxDue(profit decimal.Decimal) decimal.Decimal {
	if !profit.IsPositive() {
		return decimal.Zero
	}
	due := decimal.Zero
	lower := decimal.Zero
	for _, tier := range s.Tiers {
		if !profit.GreaterThan(lower) {
			return due
		}
		slice := decimal.Min(profit, tier.UpTo).Sub(lower)
		due = due.Add(slice.Mul(s.Rate).Mul(one.Sub(tier.Exemption)))
		lower = tier.UpTo
	}
	if profit.GreaterThan(lower) {
		due = due.Add(profit.Sub(lower).Mul(s.Rate))
	}
	return due
}

// firstTierRate is the effective rate of the lowest slice.
func (s Schedule) firstTierRate() decimal.Decimal {
	if len(s.Tiers) == 0 {
		return s.Rate
	}
	return s.Rate.Mul(one.Sub(s.Tiers[0].Exemption))
}

// Policy chooses the schedule for each fiscal year.
type Policy struct {
	Mode          string
	Schedules     map[string]Schedule
	FirstYear     int
	StartUpYears  int
	AllowNegative bool
}

// ScheduleFor returns the schedule applying to fiscal year. In auto mode the
// start-up schedule covers the first StartUpYears years from FirstYear.
func (p Policy) ScheduleFor(year int) (Schedule, error) {
	name := p.Mode
	if p.Mode == config.TaxModeAuto {
		name = config.TaxModePartial
		if year < p.FirstYear+p.StartUpYears {
			name = config.TaxModeStartUp
		}
	}
	s, ok := p.Schedules[name]
	if !ok {
		return Schedule{}, fmt.Errorf("no %q tax schedule for %d", name, year)
	}
	return s, nil
}

// TaxDue returns the tax owed on year-to-date profit. A loss owes nothing
// unless AllowNegative is set, in which case it is credited at the first
// tier's effective rate.
func (p Policy) TaxDue(year int, profit decimal.Decimal) (decimal.Decimal, error) {
	s, err := p.ScheduleFor(year)
	if err != nil {
		return decimal.Zero, err
	}
	if profit.IsNegative() && p.AllowNegative {
		return profit.Mul(s.firstTierRate()), nil
	}
	return s.TaxDue(profit), nil
}

// PolicyFromConfig converts the YAML tax section.
func PolicyFromConfig(c config.TaxConfig) Policy {
	p := Policy{
		Mode:          c.Mode,
		Schedules:     make(map[string]Schedule, len(c.Schedules)),
		FirstYear:     c.FirstYear,
		StartUpYears:  c.StartUpYears,
		AllowNegative: c.AllowNegative,
	}
	for name, sc := range c.Schedules {
		s := Schedule{Name: name, Rate: decimal.NewFromFloat(sc.Rate)}
		for _, t := range sc.Tiers {
			s.Tiers = append(s.Tiers, Tier{
				UpTo:      decimal.NewFromFloat(t.UpTo),
				Exemption: decimal.NewFromFloat(t.Exemption),
			})
		}
		p.Schedules[name] = s
	}
	return p
}
