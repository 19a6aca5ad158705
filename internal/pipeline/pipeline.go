// Package pipeline runs the books end to end for one report date.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cleared-dev/shopbooks/internal/accounts"
	"github.com/cleared-dev/shopbooks/internal/catalog"
	"github.com/cleared-dev/shopbooks/internal/config"
	"github.com/cleared-dev/shopbooks/internal/id"
	"github.com/cleared-dev/shopbooks/internal/inventory"
	"github.com/cleared-dev/shopbooks/internal/ledger"
	"github.com/cleared-dev/shopbooks/internal/logger"
	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/period"
	"github.com/cleared-dev/shopbooks/internal/statements"
	"github.com/cleared-dev/shopbooks/internal/tax"
)

// Statement names used as keys in Report.Errors.
const (
	StatementQuarterlyPL  = "quarterly_pl"
	StatementPLYTD        = "pl_ytd"
	StatementBalanceSheet = "balance_sheet"
	StatementEquity       = "equity"
	StatementCashFlow     = "cash_flow"
)

// Options configure a run.
type Options struct {
	AsOf     time.Time
	Chart    *accounts.Service
	Calendar period.Calendar
	Ranks    statements.Ranks
	Tax      tax.Policy
	Log      *logger.Logger
}

// OptionsFromConfig derives run options from the books config.
func OptionsFromConfig(cfg *config.Config, chart *accounts.Service, asOf time.Time, log *logger.Logger) (Options, error) {
	month, err := cfg.Fiscal.StartMonth()
	if err != nil {
		return Options{}, err
	}
	return Options{
		AsOf:     asOf,
		Chart:    chart,
		Calendar: period.Calendar{StartMonth: month},
		Ranks:    statements.Ranks{GrossProfit: cfg.Ranks.GrossProfit, OperatingProfit: cfg.Ranks.OperatingProfit},
		Tax:      tax.PolicyFromConfig(cfg.Tax),
		Log:      log,
	}, nil
}

// Report is everything a run produces.
type Report struct {
	AsOf  time.Time
	RunID string

	Ledger    []model.Entry // augmented with COGS and tax entries
	Warehouse []model.InventoryLine
	Shops     []model.InventoryLine
	Snapshots []model.Snapshot
	Alerts    []inventory.Alert

	Balances *period.Balances
	Accruals []tax.Accrual

	QuarterlyPL  []statements.Statement
	PLYTD        statements.Statement
	BalanceSheet statements.BalanceSheet
	Equity       statements.Statement
	CashFlow     statements.Statement

	// Errors holds the statements that could not be produced, keyed by the
	// Statement* names.
	Errors map[string]error
	Faults []model.Fault
	Halted map[model.Period][]model.Fault
}

// Run computes inventory, tax and statements from inputs. Data faults never
// abort the run: faulty entries are excluded, their periods halted, and the
// affected statements reported in Report.Errors. The returned error is
// reserved for cancellation and books that do not close.
func Run(ctx context.Context, in model.Inputs, opts Options) (*Report, error) {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	asOf := model.Day(opts.AsOf)
	chart, cal := opts.Chart, opts.Calendar
	rep := &Report{
		AsOf:   asOf,
		RunID:  log.RunID(),
		Errors: make(map[string]error),
		Halted: make(map[model.Period][]model.Fault),
	}
	halt := func(faults []model.Fault) {
		for _, f := range faults {
			log.Warn().Str("kind", string(f.Kind)).Str("period", f.PeriodLabel()).Int("seq", f.Seq).Msg(f.Message)
			rep.Faults = append(rep.Faults, f)
			if f.Kind.Halting() {
				p := model.Period{Year: f.Year, Quarter: f.Quarter}
				rep.Halted[p] = append(rep.Halted[p], f)
			}
		}
	}

	// Engine output from an earlier run is regenerated, not trusted.
	store := ledger.NewStore(in.Entries)
	store.Retain(func(e model.Entry) bool {
		synthetic := e.Status == model.StatusSynthetic || (e.IsRaw() && id.IsSynthetic(e.Reference))
		return !synthetic && !e.Date.After(asOf)
	})
	log.Info().Int("entries", store.Len()).Str("as_of", asOf.Format(model.DateFormat)).Msg("ledger loaded")

	integrity := ledger.Validate(store.Entries(), chart, cal)
	excluded := make(map[int]bool)
	for _, f := range integrity {
		excluded[f.Seq] = true
	}
	store.Retain(func(e model.Entry) bool { return !excluded[e.Seq] })
	halt(integrity)

	engine := inventory.NewEngine(chart, catalog.New(in.Prices, in.Slots))
	engine.OnDay = func(r inventory.DayResult) {
		log.Debug().
			Str("date", r.Date.Format(model.DateFormat)).
			Int("restocks", r.Restocks).
			Int("transfers", r.Transfers).
			Int("sales", r.Sales).
			Int("cogs", len(r.COGS)).
			Str("value", r.State.TotalValue().StringFixed(2)).
			Msg("inventory day")
	}
	inv, err := engine.Run(ctx, store)
	if err != nil {
		return nil, err
	}
	cal.Stamp(inv.Faults)
	halt(inv.Faults)
	rep.Warehouse, rep.Shops, rep.Snapshots = inv.Warehouse, inv.Shops, inv.Snapshots
	rep.Alerts = inventory.Alerts(inv, asOf)
	log.Info().
		Int("cogs", len(inv.COGS)).
		Int("faults", len(inv.Faults)).
		Str("value", inv.State.TotalValue().StringFixed(2)).
		Msg("inventory valued")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	accruer := tax.Engine{Policy: opts.Tax, OperatingRank: opts.Ranks.OperatingProfit}
	accruals, taxEntries, err := accruer.Accrue(period.Aggregate(store.Entries(), cal), chart, cal, asOf)
	if err != nil {
		return nil, fmt.Errorf("accruing tax: %w", err)
	}
	store.Append(taxEntries...)
	rep.Accruals = accruals
	log.Info().Int("quarters", len(accruals)).Int("entries", len(taxEntries)).Msg("tax accrued")

	rep.Ledger = store.Entries()
	rep.Balances = period.Aggregate(rep.Ledger, cal)
	if err := rep.Balances.Verify(); err != nil {
		return nil, err
	}

	stmts, err := statements.New(statements.Params{
		Balances: rep.Balances,
		Entries:  rep.Ledger,
		Chart:    chart,
		Calendar: cal,
		Ranks:    opts.Ranks,
		AsOf:     asOf,
		Halted:   rep.Halted,
	})
	if err != nil {
		return nil, fmt.Errorf("preparing statements: %w", err)
	}

	record := func(name string, err error) {
		if err != nil {
			log.Warn().Err(err).Str("statement", name).Msg("statement incomplete")
			rep.Errors[name] = err
		}
	}
	rep.QuarterlyPL, err = stmts.QuarterlyPL()
	record(StatementQuarterlyPL, err)
	rep.PLYTD, err = stmts.PLYTD()
	record(StatementPLYTD, err)
	rep.BalanceSheet, err = stmts.BalanceSheet()
	record(StatementBalanceSheet, err)
	rep.Equity, err = stmts.EquityStatement()
	record(StatementEquity, err)
	rep.CashFlow, err = stmts.CashFlow()
	record(StatementCashFlow, err)

	log.Info().Int("faults", len(rep.Faults)).Int("halted_periods", len(rep.Halted)).Msg("report complete")
	return rep, nil
}
