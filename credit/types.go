/*
Package credit provides the core ledger, commission, and reporting engine.

PURPOSE:
  This package contains the domain types and algorithms for a three-tier
  credit hierarchy (root operator → agents → members): atomic balance
  mutation with transaction logging, best-effort commission crediting,
  per-agent statistics rollups, and daily report aggregation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money helpers: all monetary values use decimal.Decimal, rounded
    half-up to 2 places exactly once at the operation boundary
  - Account: a node in the hierarchy with a non-negative balance
  - Transaction: an immutable ledger entry recording one balance change
  - AgentStats: per-agent rollup counters and commission history
  - DailyReport: immutable-once-written aggregate for a calendar day

DESIGN PRINCIPLES:
  1. Immutability: Transactions are never modified after commit
  2. Precision: decimal.Decimal avoids floating-point rounding drift
  3. One rounding rule: Round2 (half-up, 2 places), applied once
  4. Auditability: every balance change carries before/after and actor

SEE ALSO:
  - ledger.go: Atomic balance mutation
  - commission.go: Commission computation and crediting
  - stats.go: Rollup recomputation
  - report.go: Daily/weekly report aggregation
*/
package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - decimal values with a single boundary rounding rule
// =============================================================================

// Round2 rounds a monetary value half-up to 2 decimal places.
// This is the ONLY rounding rule in the system, applied exactly once
// where a value crosses the operation boundary (ledger input, derived
// commission). Stored values always carry at most 2 decimal digits.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// HasCentPrecision reports whether d is expressible with at most
// 2 decimal digits. Ledger inputs with finer precision are rejected,
// never silently rounded.
func HasCentPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

// MustDecimal parses a decimal literal, returning zero on failure.
// Intended for constants and store deserialization.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// ACCOUNT - a node in the three-tier hierarchy
// =============================================================================

type AccountID string

type Tier string

const (
	TierRoot   Tier = "root"
	TierAgent  Tier = "agent"
	TierMember Tier = "member"
)

// Account is a balance-holding node. The parent reference forms a tree
// of depth at most two below root: root → agents → members.
//
// Accounts are created at registration (outside this package), mutated
// only through Ledger.Adjust, and never deleted. Balance is always
// non-negative with exactly 2 decimal digits.
type Account struct {
	ID        AccountID
	Tier      Tier
	ParentID  AccountID // empty for root
	Name      string
	Code      string // unique agent code; agents only
	Balance   decimal.Decimal
	CreatedAt time.Time
}

// IsActive reports whether the account currently holds credit.
func (a *Account) IsActive() bool { return a.Balance.IsPositive() }

// =============================================================================
// TRANSACTION - immutable record of one balance change
// =============================================================================

type Direction string

const (
	DirectionAdd    Direction = "add"
	DirectionDeduct Direction = "deduct"
)

// Transaction exists iff a matching balance change was committed; the
// two are written in the same atomic unit and the record is never
// modified afterwards.
type Transaction struct {
	ID            string
	AccountID     AccountID
	Direction     Direction
	Amount        decimal.Decimal // always > 0; sign carried by Direction
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	ActorID       string // who authorized the change; "system" for engine-originated credits
	Description   string
	CreatedAt     time.Time
}

// Signed returns the transaction's contribution to the account balance:
// +Amount for add, -Amount for deduct.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Direction == DirectionDeduct {
		return t.Amount.Neg()
	}
	return t.Amount
}

// =============================================================================
// AGENT STATS - per-agent rollup, owned partly by the commission engine
// =============================================================================

// CommissionEntry is one line of an agent's commission history.
type CommissionEntry struct {
	ID          string
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// AgentStats holds an agent's rollup counters.
//
// Ownership is split: TotalMembers/ActiveMembers/TotalCredit/LastUpdated
// are overwritten by the stats aggregator; CommissionRate is operator
// configuration; TotalCommission and CommissionHistory are appended to
// by the commission engine and daily report runs.
type AgentStats struct {
	AgentID           AccountID
	TotalMembers      int
	ActiveMembers     int // members with balance > 0
	TotalCredit       decimal.Decimal
	CommissionRate    decimal.Decimal // bounded to [0, 0.20] when applied
	TotalCommission   decimal.Decimal
	CommissionHistory []CommissionEntry
	LastUpdated       time.Time
}

// MaxCommissionRate caps the per-agent rate at application time.
var MaxCommissionRate = MustDecimal("0.20")

// EffectiveRate returns CommissionRate clamped to [0, MaxCommissionRate].
func (s *AgentStats) EffectiveRate() decimal.Decimal {
	if s.CommissionRate.IsNegative() {
		return decimal.Zero
	}
	if s.CommissionRate.GreaterThan(MaxCommissionRate) {
		return MaxCommissionRate
	}
	return s.CommissionRate
}

// =============================================================================
// DAILY REPORT - one aggregate snapshot per calendar day
// =============================================================================

// AgentReport is the per-agent slice of a daily report. AgentName is
// not persisted; range queries resolve it through the hierarchy.
type AgentReport struct {
	AgentID        AccountID
	AgentName      string `json:"-"`
	MemberCount    int
	CreditMovement decimal.Decimal // signed sum of the day's member transactions
	Commission     decimal.Decimal
}

// DailyReport is keyed by calendar date (UTC). Only the report run
// writes it, via upsert: a rerun for the same date with unchanged
// transactions produces identical aggregates.
type DailyReport struct {
	Date                time.Time // UTC midnight of the reported day
	TotalMembers        int
	ActiveMembers       int
	TotalCreditMovement decimal.Decimal
	TotalCommission     decimal.Decimal
	AgentReports        []AgentReport
	Notes               string
	GeneratedAt         time.Time
}

// WeeklySummary aggregates the daily reports of one ISO week.
// Monetary totals keep 2 decimals; member averages round to whole units.
type WeeklySummary struct {
	Start               time.Time
	End                 time.Time
	TotalCreditMovement decimal.Decimal
	TotalCommission     decimal.Decimal
	AvgTotalMembers     int
	AvgActiveMembers    int
}

// WeeklyResult wraps a summary with the number of daily reports found.
// A span with no reports yields {Count: 0, Summary: nil}.
type WeeklyResult struct {
	Count   int
	Summary *WeeklySummary
}
