/*
commission.go - Commission computation and crediting

PURPOSE:
  Pays an agent a commission derived from a member's credit flow. The
  engine applies a SINGLE rate: the agent's own CommissionRate from
  AgentStats, clamped to [0, 0.20], against whatever base the caller
  hands in. Callers that want a platform-wide cut first (e.g. the
  daily report's flat rate) compute that base themselves; the two
  rates are never stacked inside this engine.

FAILURE POLICY:
  Commission is derived data. Its absence or failure must never block
  or undo the member-level ledger operation that triggered it, so
  every error here is logged at the best-effort severity and the
  caller sees a zero amount. The agent credit is a second,
  independently committed ledger step.

SEE ALSO:
  - ledger.go: Performs the actual agent credit
  - stats.go: Owns the member-counting fields of AgentStats
*/
package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SystemActor marks engine-originated ledger entries.
const SystemActor = "system"

// CommissionEngine credits agents for member-driven credit flow.
type CommissionEngine struct {
	store  Store
	ledger *Ledger
	log    zerolog.Logger

	now func() time.Time
}

func NewCommissionEngine(store Store, ledger *Ledger, log zerolog.Logger) *CommissionEngine {
	return &CommissionEngine{store: store, ledger: ledger, log: log, now: time.Now}
}

// Apply computes and credits commission for an agent and returns the
// credited amount.
//
// Missing AgentStats is a soft no-op: zero is returned with no
// mutation and no error, because commission must never block the
// triggering operation. A computed commission of zero (rate 0, tiny
// base) is likewise a no-op. All failures are swallowed after
// logging; the returned amount reflects only what was actually
// credited to the agent's balance.
func (e *CommissionEngine) Apply(ctx context.Context, agentID AccountID, base decimal.Decimal, description string) decimal.Decimal {
	stats, err := e.store.GetStats(ctx, agentID)
	if err != nil {
		e.softFail("commission.apply", agentID, err)
		return decimal.Zero
	}
	if stats == nil {
		// No rollup record, nothing to pay. Not an error.
		return decimal.Zero
	}

	commission := Round2(base.Mul(stats.EffectiveRate()))
	if !commission.IsPositive() {
		return decimal.Zero
	}

	if _, err := e.ledger.Adjust(ctx, AdjustInput{
		AccountID:   agentID,
		Amount:      commission,
		Direction:   DirectionAdd,
		ActorID:     SystemActor,
		Description: description,
	}); err != nil {
		e.softFail("commission.credit", agentID, err)
		return decimal.Zero
	}

	// The credit above is committed. A failure from here on is logged
	// and the credited amount still reported to the caller.
	stats.TotalCommission = stats.TotalCommission.Add(commission)
	stats.CommissionHistory = append(stats.CommissionHistory, CommissionEntry{
		ID:          uuid.NewString(),
		Amount:      commission,
		Description: fmt.Sprintf("%s (base %s)", description, base.StringFixed(2)),
		CreatedAt:   e.now().UTC(),
	})
	stats.LastUpdated = e.now().UTC()

	if err := e.store.SaveStats(ctx, *stats); err != nil {
		e.softFail("commission.history", agentID, err)
	}

	return commission
}

func (e *CommissionEngine) softFail(op string, agentID AccountID, err error) {
	be := &BestEffortError{Op: op, Err: err}
	e.log.Warn().
		Str("agent_id", string(agentID)).
		Str("op", op).
		Err(be).
		Msg("commission step failed, continuing")
}
