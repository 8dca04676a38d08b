// engine.go - Dependency wiring for consumers of the package.
//
// The transport layer owns process bootstrapping; it hands a store,
// a config, and a logger to NewEngine and gets back the fully wired
// component set.
package credit

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/credit-engine/config"
)

// Engine bundles the wired components over one store.
type Engine struct {
	Hierarchy  *Hierarchy
	Ledger     *Ledger
	Commission *CommissionEngine
	Stats      *StatsAggregator
	Reports    *ReportBuilder
}

// NewEngine wires the engine against a store using the given settings.
func NewEngine(store TxStore, cfg config.Config, log zerolog.Logger) *Engine {
	hierarchy := NewHierarchy(store)
	ledger := NewLedger(store).
		WithMaxAdjustment(decimal.NewFromFloat(cfg.Ledger.MaxAdjustment))
	return &Engine{
		Hierarchy:  hierarchy,
		Ledger:     ledger,
		Commission: NewCommissionEngine(store, ledger, log),
		Stats:      NewStatsAggregator(store, log),
		Reports: NewReportBuilder(store, hierarchy, log).
			WithFlatRate(decimal.NewFromFloat(cfg.Commission.FlatRate)),
	}
}
