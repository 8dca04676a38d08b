/*
stats.go - Idempotent per-agent rollup recomputation

PURPOSE:
  Recomputes an agent's member counters from the account hierarchy:
  total members, members holding credit, and the sum of member
  balances. The result is a full overwrite of those fields and only
  those fields; CommissionRate, TotalCommission, and
  CommissionHistory belong to the commission engine and report runs.

CONSISTENCY:
  Safe to call concurrently with ledger writes on member accounts.
  The counters are a best-effort snapshot, not a point-in-time view;
  a write landing mid-scan surfaces at the next recompute. No lock is
  held over the account set.
*/
package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StatsAggregator recomputes agent rollups on demand.
type StatsAggregator struct {
	store Store
	log   zerolog.Logger

	now func() time.Time
}

func NewStatsAggregator(store Store, log zerolog.Logger) *StatsAggregator {
	return &StatsAggregator{store: store, log: log, now: time.Now}
}

// Recompute rebuilds the member counters for one agent and returns the
// stored result. Calling it twice with no intervening writes yields
// identical stats. Unknown agents return ErrAccountNotFound.
func (a *StatsAggregator) Recompute(ctx context.Context, agentID AccountID) (*AgentStats, error) {
	agent, err := a.store.GetAccount(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("stats: load agent %s: %w", agentID, err)
	}
	if agent == nil || agent.Tier != TierAgent {
		return nil, ErrAccountNotFound
	}

	members, err := a.store.ListChildren(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("stats: list members of %s: %w", agentID, err)
	}

	total := 0
	active := 0
	credit := decimal.Zero
	for i := range members {
		total++
		if members[i].IsActive() {
			active++
		}
		credit = credit.Add(members[i].Balance)
	}

	stats, err := a.store.GetStats(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("stats: load rollup for %s: %w", agentID, err)
	}
	if stats == nil {
		// First recompute for an agent registered before its rollup row
		// existed. Commission fields start at their zero values.
		stats = &AgentStats{AgentID: agentID}
	}

	stats.TotalMembers = total
	stats.ActiveMembers = active
	stats.TotalCredit = Round2(credit)
	stats.LastUpdated = a.now().UTC()

	if err := a.store.SaveStats(ctx, *stats); err != nil {
		return nil, fmt.Errorf("stats: save rollup for %s: %w", agentID, err)
	}

	a.log.Debug().
		Str("agent_id", string(agentID)).
		Int("total_members", total).
		Int("active_members", active).
		Msg("recomputed agent rollup")

	return stats, nil
}

// RecomputeBestEffort wraps Recompute for callers in the derived-data
// domain: failures are logged and swallowed.
func (a *StatsAggregator) RecomputeBestEffort(ctx context.Context, agentID AccountID) {
	if _, err := a.Recompute(ctx, agentID); err != nil {
		be := &BestEffortError{Op: "stats.recompute", Err: err}
		a.log.Warn().Str("agent_id", string(agentID)).Err(be).Msg("rollup recompute failed, continuing")
	}
}
