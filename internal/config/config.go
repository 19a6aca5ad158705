package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tax modes select which exemption schedule applies to a fiscal year.
const (
	TaxModeStartUp = "start_up"
	TaxModePartial = "partial"
	TaxModeAuto    = "auto"
)

// Config represents the top-level shopbooks.yaml configuration.
type Config struct {
	Business  BusinessConfig  `yaml:"business"`
	Fiscal    FiscalConfig    `yaml:"fiscal"`
	Inventory InventoryConfig `yaml:"inventory"`
	Ranks     RanksConfig     `yaml:"ranks"`
	Tax       TaxConfig       `yaml:"tax"`
	Log       LogConfig       `yaml:"log"`
	Git       GitConfig       `yaml:"git"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, day must be 01
}

// InventoryConfig controls how shop stock is recognised in the ledger.
type InventoryConfig struct {
	ShopPrefix string `yaml:"shop_prefix"`
}

// RanksConfig sets the P&L rank thresholds for subtotals.
type RanksConfig struct {
	GrossProfit     int `yaml:"gross_profit"`
	OperatingProfit int `yaml:"operating_profit"`
}

// TaxConfig selects and parameterises the tiered exemption schedules.
type TaxConfig struct {
	Mode          string                    `yaml:"mode"`
	FirstYear     int                       `yaml:"first_year,omitempty"`
	StartUpYears  int                       `yaml:"start_up_years"`
	AllowNegative bool                      `yaml:"allow_negative"`
	Schedules     map[string]ScheduleConfig `yaml:"schedules"`
}

// ScheduleConfig is one tiered schedule. Profit above the last tier is taxed
// at the full rate.
type ScheduleConfig struct {
	Rate  float64      `yaml:"rate"`
	Tiers []TierConfig `yaml:"tiers"`
}

// TierConfig exempts a share of the profit slice up to UpTo.
type TierConfig struct {
	UpTo      float64 `yaml:"up_to"`
	Exemption float64 `yaml:"exemption"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a shopbooks.yaml file from disk and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the Singapore corporate tax exemption
// schedules and a calendar fiscal year.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:     businessName,
			Currency: "SGD",
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Inventory: InventoryConfig{
			ShopPrefix: "Inventory_",
		},
		Ranks: RanksConfig{
			GrossProfit:     1,
			OperatingProfit: 3,
		},
		Tax: TaxConfig{
			Mode:         TaxModeStartUp,
			StartUpYears: 3,
			Schedules: map[string]ScheduleConfig{
				TaxModeStartUp: {
					Rate: 0.17,
					Tiers: []TierConfig{
						{UpTo: 100000, Exemption: 0.75},
						{UpTo: 200000, Exemption: 0.5},
					},
				},
				TaxModePartial: {
					Rate: 0.17,
					Tiers: []TierConfig{
						{UpTo: 10000, Exemption: 0.75},
						{UpTo: 200000, Exemption: 0.5},
					},
				},
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Shopbooks",
			AuthorEmail: "books@shopbooks.local",
		},
	}
}

// Validate checks the config for values the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Fiscal.StartMonth(); err != nil {
		errs = append(errs, err)
	}

	if c.Ranks.GrossProfit > c.Ranks.OperatingProfit {
		errs = append(errs, fmt.Errorf("ranks: gross_profit (%d) above operating_profit (%d)",
			c.Ranks.GrossProfit, c.Ranks.OperatingProfit))
	}

	switch c.Tax.Mode {
	case TaxModeStartUp, TaxModePartial:
		errs = append(errs, c.validateSchedule(c.Tax.Mode))
	case TaxModeAuto:
		errs = append(errs, c.validateSchedule(TaxModeStartUp), c.validateSchedule(TaxModePartial))
		if c.Tax.FirstYear == 0 {
			errs = append(errs, errors.New("tax: auto mode needs first_year"))
		}
		if c.Tax.StartUpYears < 0 {
			errs = append(errs, fmt.Errorf("tax: start_up_years %d is negative", c.Tax.StartUpYears))
		}
	default:
		errs = append(errs, fmt.Errorf("tax: unknown mode %q", c.Tax.Mode))
	}

	return errors.Join(errs...)
}

func (c *Config) validateSchedule(name string) error {
	s, ok := c.Tax.Schedules[name]
	if !ok {
		return fmt.Errorf("tax: schedule %q not configured", name)
	}
	if s.Rate < 0 || s.Rate > 1 {
		return fmt.Errorf("tax: schedule %q rate %v outside [0,1]", name, s.Rate)
	}
	bounds := make([]float64, 0, len(s.Tiers))
	for i, tier := range s.Tiers {
		if tier.Exemption < 0 || tier.Exemption > 1 {
			return fmt.Errorf("tax: schedule %q tier %d exemption %v outside [0,1]", name, i+1, tier.Exemption)
		}
		if tier.UpTo <= 0 || (len(bounds) > 0 && tier.UpTo <= bounds[len(bounds)-1]) {
			return fmt.Errorf("tax: schedule %q tier %d bound %v must be positive and increasing", name, i+1, tier.UpTo)
		}
		bounds = append(bounds, tier.UpTo)
	}
	if !slices.IsSorted(bounds) {
		return fmt.Errorf("tax: schedule %q tiers out of order", name)
	}
	return nil
}

// StartMonth parses YearStart. Fiscal years must begin on the first day of a
// month.
func (f FiscalConfig) StartMonth() (int, error) {
	if f.YearStart == "" {
		return 1, nil
	}
	mm, dd, ok := strings.Cut(f.YearStart, "-")
	if !ok {
		return 0, fmt.Errorf("fiscal: year_start %q is not MM-DD", f.YearStart)
	}
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return 0, fmt.Errorf("fiscal: year_start %q has invalid month", f.YearStart)
	}
	if dd != "01" {
		return 0, fmt.Errorf("fiscal: year_start %q must fall on the 1st", f.YearStart)
	}
	return month, nil
}
