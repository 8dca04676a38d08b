/*
store.go - Persistence interfaces for the credit engine

PURPOSE:
  Defines the boundary between domain logic and the database. The
  transaction log is APPEND-ONLY: there is no update or delete on
  transactions, ever. Corrections happen through compensating entries.

KEY INTERFACES:
  AccountStore:     Account records and bounded hierarchy queries
  TransactionStore: Append-only transaction log
  StatsStore:       Per-agent rollups (full-record upsert)
  ReportStore:      Daily reports (upsert keyed by date)
  Store:            All of the above
  TxStore:          Store plus WithTx for atomic multi-write units

ATOMICITY:
  Ledger.Adjust commits the balance write and the transaction append
  inside one WithTx unit. Everything else is single-record.

IMPLEMENTATIONS:
  - credit/store/memory.go: In-memory, for tests and development
  - store/sqlite/sqlite.go:  Production SQLite

SEE ALSO:
  - ledger.go: The only writer of balances and transactions
  - hierarchy.go: Read model built on AccountStore
*/
package credit

import (
	"context"
	"time"
)

// =============================================================================
// ACCOUNT STORE
// =============================================================================

// AccountStore persists accounts. Lookups return (nil, nil) when the
// record does not exist; callers translate that into ErrAccountNotFound
// where absence is an error.
type AccountStore interface {
	// GetAccount returns the account or (nil, nil) if unknown.
	GetAccount(ctx context.Context, id AccountID) (*Account, error)

	// GetAccountByCode resolves an agent by its unique code, or (nil, nil).
	GetAccountByCode(ctx context.Context, code string) (*Account, error)

	// SaveAccount upserts an account. Returns ErrDuplicateCode when the
	// agent code is already held by a different account.
	SaveAccount(ctx context.Context, a Account) error

	// ListChildren returns the direct children of an account
	// (agents of root, members of an agent). The hierarchy is bounded
	// at depth two, so this is the only traversal primitive.
	ListChildren(ctx context.Context, parentID AccountID) ([]Account, error)

	// ListByTier returns all accounts of one tier.
	ListByTier(ctx context.Context, tier Tier) ([]Account, error)
}

// =============================================================================
// TRANSACTION STORE (append-only)
// =============================================================================

// TransactionStore is the append-only ledger log. No Update, no Delete.
type TransactionStore interface {
	// AppendTransaction persists one immutable ledger entry.
	AppendTransaction(ctx context.Context, tx Transaction) error

	// TransactionsByAccount returns an account's entries, oldest first.
	TransactionsByAccount(ctx context.Context, id AccountID) ([]Transaction, error)

	// TransactionsInWindow returns all entries with CreatedAt in the
	// half-open window [from, to), oldest first. Used by report runs.
	TransactionsInWindow(ctx context.Context, from, to time.Time) ([]Transaction, error)
}

// =============================================================================
// STATS / REPORT STORES
// =============================================================================

// StatsStore persists agent rollups. Saves are full-record upserts,
// commission history included.
type StatsStore interface {
	// GetStats returns the agent's rollup or (nil, nil) if absent.
	GetStats(ctx context.Context, agentID AccountID) (*AgentStats, error)

	// SaveStats upserts the full rollup record.
	SaveStats(ctx context.Context, s AgentStats) error
}

// ReportStore persists daily reports keyed by calendar date (UTC).
type ReportStore interface {
	// SaveDailyReport upserts the report for its date, replacing any
	// prior report for the same day wholesale.
	SaveDailyReport(ctx context.Context, r DailyReport) error

	// GetDailyReport returns the report for a day or (nil, nil).
	GetDailyReport(ctx context.Context, day time.Time) (*DailyReport, error)

	// DailyReportsInRange returns reports with date in [start, end]
	// inclusive, ascending by date.
	DailyReportsInRange(ctx context.Context, start, end time.Time) ([]DailyReport, error)
}

// =============================================================================
// COMBINED STORE
// =============================================================================

// Store bundles every persistence concern of the engine.
type Store interface {
	AccountStore
	TransactionStore
	StatsStore
	ReportStore
}

// TxStore wraps Store with transaction support. The ledger requires it:
// balance write and transaction append commit as one unit.
type TxStore interface {
	Store

	// WithTx executes fn within a storage transaction. If fn returns an
	// error the unit is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
