/*
Package sqlite provides a SQLite-backed implementation of credit.TxStore.

PURPOSE:
  Production persistence for accounts, the append-only transaction
  log, agent rollups, and daily reports. The same patterns apply to
  PostgreSQL with minor dialect changes.

APPEND-ONLY ENFORCEMENT:
  There are no UPDATE or DELETE statements on the transactions table.
  A ledger entry, once committed, is permanent.

KEY TABLES:
  accounts:      Hierarchy nodes with current balance
  transactions:  Immutable ledger of all balance changes
  agent_stats:   Per-agent rollups (commission history as JSON)
  daily_reports: One row per calendar day (sub-reports as JSON)

ATOMICITY:
  WithTx wraps a database transaction; the ledger uses it to commit
  the balance write and the transaction append as one unit. SQLite is
  opened in WAL mode so readers don't block the single writer.

MONEY:
  Monetary columns are TEXT holding 2-decimal strings, parsed back
  through decimal.Decimal. No floating point touches storage.

SEE ALSO:
  - credit/store.go: Interface contracts
  - credit/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/credit-engine/credit"
)

// Store implements credit.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Hierarchy nodes. Balance is mutated only through the ledger.
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		tier TEXT NOT NULL,
		parent_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		code TEXT,
		balance TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_parent
		ON accounts(parent_id);
	CREATE INDEX IF NOT EXISTS idx_accounts_tier
		ON accounts(tier);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_code
		ON accounts(code) WHERE code IS NOT NULL;

	-- Transactions (append-only ledger)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		direction TEXT NOT NULL,
		amount TEXT NOT NULL,
		balance_before TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		actor_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_account
		ON transactions(account_id, created_at);
	-- Hot path for daily report windows
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at
		ON transactions(created_at);

	-- Agent rollups; commission history kept as JSON in-row
	CREATE TABLE IF NOT EXISTS agent_stats (
		agent_id TEXT PRIMARY KEY,
		total_members INTEGER NOT NULL DEFAULT 0,
		active_members INTEGER NOT NULL DEFAULT 0,
		total_credit TEXT NOT NULL,
		commission_rate TEXT NOT NULL,
		total_commission TEXT NOT NULL,
		history_json TEXT NOT NULL DEFAULT '[]',
		last_updated TEXT NOT NULL
	);

	-- Daily reports keyed by calendar date
	CREATE TABLE IF NOT EXISTS daily_reports (
		report_date TEXT PRIMARY KEY,
		total_members INTEGER NOT NULL DEFAULT 0,
		active_members INTEGER NOT NULL DEFAULT 0,
		total_credit_movement TEXT NOT NULL,
		total_commission TEXT NOT NULL,
		agent_reports_json TEXT NOT NULL DEFAULT '[]',
		notes TEXT NOT NULL DEFAULT '',
		generated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, so every query helper
// works inside and outside WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// ACCOUNT STORE (credit.AccountStore interface)
// =============================================================================

const accountColumns = "id, tier, parent_id, name, code, balance, created_at"

func (s *Store) GetAccount(ctx context.Context, id credit.AccountID) (*credit.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAccount(ctx, s.db, id)
}

func (s *Store) GetAccountByCode(ctx context.Context, code string) (*credit.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAccountByCode(ctx, s.db, code)
}

func (s *Store) SaveAccount(ctx context.Context, a credit.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveAccount(ctx, s.db, a)
}

func (s *Store) ListChildren(ctx context.Context, parentID credit.AccountID) ([]credit.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listChildren(ctx, s.db, parentID)
}

func (s *Store) ListByTier(ctx context.Context, tier credit.Tier) ([]credit.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listByTier(ctx, s.db, tier)
}

func getAccount(ctx context.Context, db dbtx, id credit.AccountID) (*credit.Account, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	return scanAccountRow(row)
}

func getAccountByCode(ctx context.Context, db dbtx, code string) (*credit.Account, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE code = ?", code)
	return scanAccountRow(row)
}

func saveAccount(ctx context.Context, db dbtx, a credit.Account) error {
	query := `
		INSERT INTO accounts (id, tier, parent_id, name, code, balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tier = excluded.tier,
			parent_id = excluded.parent_id,
			name = excluded.name,
			code = excluded.code,
			balance = excluded.balance
	`

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, query,
		a.ID, a.Tier, a.ParentID, a.Name,
		nullString(a.Code),
		a.Balance.StringFixed(2),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return credit.ErrDuplicateCode
		}
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func listChildren(ctx context.Context, db dbtx, parentID credit.AccountID) ([]credit.Account, error) {
	return queryAccounts(ctx, db,
		"SELECT "+accountColumns+" FROM accounts WHERE parent_id = ? ORDER BY id ASC", parentID)
}

func listByTier(ctx context.Context, db dbtx, tier credit.Tier) ([]credit.Account, error) {
	return queryAccounts(ctx, db,
		"SELECT "+accountColumns+" FROM accounts WHERE tier = ? ORDER BY id ASC", tier)
}

func queryAccounts(ctx context.Context, db dbtx, query string, args ...any) ([]credit.Account, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []credit.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func scanAccountRow(row *sql.Row) (*credit.Account, error) {
	var (
		a         credit.Account
		code      sql.NullString
		balance   string
		createdAt string
	)
	err := row.Scan(&a.ID, &a.Tier, &a.ParentID, &a.Name, &code, &balance, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	a.Code = code.String
	a.Balance = credit.MustDecimal(balance)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

func scanAccount(rows *sql.Rows) (credit.Account, error) {
	var (
		a         credit.Account
		code      sql.NullString
		balance   string
		createdAt string
	)
	if err := rows.Scan(&a.ID, &a.Tier, &a.ParentID, &a.Name, &code, &balance, &createdAt); err != nil {
		return a, fmt.Errorf("failed to scan account: %w", err)
	}
	a.Code = code.String
	a.Balance = credit.MustDecimal(balance)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return a, nil
}

// =============================================================================
// TRANSACTION STORE (credit.TransactionStore interface, append-only)
// =============================================================================

const transactionColumns = "id, account_id, direction, amount, balance_before, balance_after, actor_id, description, created_at"

func (s *Store) AppendTransaction(ctx context.Context, tx credit.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendTransaction(ctx, s.db, tx)
}

func (s *Store) TransactionsByAccount(ctx context.Context, id credit.AccountID) ([]credit.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionsByAccount(ctx, s.db, id)
}

func (s *Store) TransactionsInWindow(ctx context.Context, from, to time.Time) ([]credit.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionsInWindow(ctx, s.db, from, to)
}

func appendTransaction(ctx context.Context, db dbtx, tx credit.Transaction) error {
	query := `
		INSERT INTO transactions
		(id, account_id, direction, amount, balance_before, balance_after, actor_id, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		tx.ID,
		tx.AccountID,
		tx.Direction,
		tx.Amount.StringFixed(2),
		tx.BalanceBefore.StringFixed(2),
		tx.BalanceAfter.StringFixed(2),
		tx.ActorID,
		tx.Description,
		tx.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func transactionsByAccount(ctx context.Context, db dbtx, id credit.AccountID) ([]credit.Transaction, error) {
	return queryTransactions(ctx, db,
		"SELECT "+transactionColumns+" FROM transactions WHERE account_id = ? ORDER BY created_at ASC, id ASC", id)
}

func transactionsInWindow(ctx context.Context, db dbtx, from, to time.Time) ([]credit.Transaction, error) {
	return queryTransactions(ctx, db,
		"SELECT "+transactionColumns+" FROM transactions WHERE created_at >= ? AND created_at < ? ORDER BY created_at ASC, id ASC",
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

func queryTransactions(ctx context.Context, db dbtx, query string, args ...any) ([]credit.Transaction, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []credit.Transaction
	for rows.Next() {
		var (
			tx            credit.Transaction
			amount        string
			balanceBefore string
			balanceAfter  string
			createdAt     string
		)
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Direction, &amount,
			&balanceBefore, &balanceAfter, &tx.ActorID, &tx.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Amount = credit.MustDecimal(amount)
		tx.BalanceBefore = credit.MustDecimal(balanceBefore)
		tx.BalanceAfter = credit.MustDecimal(balanceAfter)
		tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// =============================================================================
// STATS STORE (credit.StatsStore interface)
// =============================================================================

type historyRecord struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func (s *Store) GetStats(ctx context.Context, agentID credit.AccountID) (*credit.AgentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getStats(ctx, s.db, agentID)
}

func (s *Store) SaveStats(ctx context.Context, st credit.AgentStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveStats(ctx, s.db, st)
}

func getStats(ctx context.Context, db dbtx, agentID credit.AccountID) (*credit.AgentStats, error) {
	var (
		st              credit.AgentStats
		totalCredit     string
		commissionRate  string
		totalCommission string
		historyJSON     string
		lastUpdated     string
	)
	err := db.QueryRowContext(ctx,
		`SELECT agent_id, total_members, active_members, total_credit, commission_rate,
		        total_commission, history_json, last_updated
		 FROM agent_stats WHERE agent_id = ?`, agentID,
	).Scan(&st.AgentID, &st.TotalMembers, &st.ActiveMembers, &totalCredit,
		&commissionRate, &totalCommission, &historyJSON, &lastUpdated)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load agent stats: %w", err)
	}

	st.TotalCredit = credit.MustDecimal(totalCredit)
	st.CommissionRate = credit.MustDecimal(commissionRate)
	st.TotalCommission = credit.MustDecimal(totalCommission)
	st.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)

	var records []historyRecord
	if historyJSON != "" {
		if err := json.Unmarshal([]byte(historyJSON), &records); err != nil {
			return nil, fmt.Errorf("failed to decode commission history: %w", err)
		}
	}
	for _, r := range records {
		at, _ := time.Parse(time.RFC3339, r.CreatedAt)
		st.CommissionHistory = append(st.CommissionHistory, credit.CommissionEntry{
			ID:          r.ID,
			Amount:      credit.MustDecimal(r.Amount),
			Description: r.Description,
			CreatedAt:   at,
		})
	}
	return &st, nil
}

func saveStats(ctx context.Context, db dbtx, st credit.AgentStats) error {
	records := make([]historyRecord, 0, len(st.CommissionHistory))
	for _, e := range st.CommissionHistory {
		records = append(records, historyRecord{
			ID:          e.ID,
			Amount:      e.Amount.StringFixed(2),
			Description: e.Description,
			CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	historyJSON, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode commission history: %w", err)
	}

	query := `
		INSERT INTO agent_stats
		(agent_id, total_members, active_members, total_credit, commission_rate,
		 total_commission, history_json, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(agent_id) DO UPDATE SET
			total_members = excluded.total_members,
			active_members = excluded.active_members,
			total_credit = excluded.total_credit,
			commission_rate = excluded.commission_rate,
			total_commission = excluded.total_commission,
			history_json = excluded.history_json,
			last_updated = excluded.last_updated
	`

	_, err = db.ExecContext(ctx, query,
		st.AgentID, st.TotalMembers, st.ActiveMembers,
		st.TotalCredit.StringFixed(2),
		st.CommissionRate.String(),
		st.TotalCommission.StringFixed(2),
		string(historyJSON),
		st.LastUpdated.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save agent stats: %w", err)
	}
	return nil
}

// =============================================================================
// REPORT STORE (credit.ReportStore interface)
// =============================================================================

type agentReportRecord struct {
	AgentID        string `json:"agent_id"`
	MemberCount    int    `json:"member_count"`
	CreditMovement string `json:"credit_movement"`
	Commission     string `json:"commission"`
}

func (s *Store) SaveDailyReport(ctx context.Context, r credit.DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveDailyReport(ctx, s.db, r)
}

func (s *Store) GetDailyReport(ctx context.Context, day time.Time) (*credit.DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports, err := queryReports(ctx, s.db,
		`SELECT report_date, total_members, active_members, total_credit_movement,
		        total_commission, agent_reports_json, notes, generated_at
		 FROM daily_reports WHERE report_date = ?`, credit.DateKey(day))
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return &reports[0], nil
}

func (s *Store) DailyReportsInRange(ctx context.Context, start, end time.Time) ([]credit.DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryReports(ctx, s.db,
		`SELECT report_date, total_members, active_members, total_credit_movement,
		        total_commission, agent_reports_json, notes, generated_at
		 FROM daily_reports
		 WHERE report_date >= ? AND report_date <= ?
		 ORDER BY report_date ASC`,
		credit.DateKey(start), credit.DateKey(end))
}

func saveDailyReport(ctx context.Context, db dbtx, r credit.DailyReport) error {
	records := make([]agentReportRecord, 0, len(r.AgentReports))
	for _, ar := range r.AgentReports {
		records = append(records, agentReportRecord{
			AgentID:        string(ar.AgentID),
			MemberCount:    ar.MemberCount,
			CreditMovement: ar.CreditMovement.StringFixed(2),
			Commission:     ar.Commission.StringFixed(2),
		})
	}
	reportsJSON, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode agent reports: %w", err)
	}

	query := `
		INSERT INTO daily_reports
		(report_date, total_members, active_members, total_credit_movement,
		 total_commission, agent_reports_json, notes, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(report_date) DO UPDATE SET
			total_members = excluded.total_members,
			active_members = excluded.active_members,
			total_credit_movement = excluded.total_credit_movement,
			total_commission = excluded.total_commission,
			agent_reports_json = excluded.agent_reports_json,
			notes = excluded.notes,
			generated_at = excluded.generated_at
	`

	_, err = db.ExecContext(ctx, query,
		credit.DateKey(r.Date),
		r.TotalMembers, r.ActiveMembers,
		r.TotalCreditMovement.StringFixed(2),
		r.TotalCommission.StringFixed(2),
		string(reportsJSON),
		r.Notes,
		r.GeneratedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save daily report: %w", err)
	}
	return nil
}

func queryReports(ctx context.Context, db dbtx, query string, args ...any) ([]credit.DailyReport, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily reports: %w", err)
	}
	defer rows.Close()

	var reports []credit.DailyReport
	for rows.Next() {
		var (
			r           credit.DailyReport
			date        string
			movement    string
			commission  string
			reportsJSON string
			generatedAt string
		)
		if err := rows.Scan(&date, &r.TotalMembers, &r.ActiveMembers, &movement,
			&commission, &reportsJSON, &r.Notes, &generatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily report: %w", err)
		}
		day, _ := time.Parse("2006-01-02", date)
		r.Date = day.UTC()
		r.TotalCreditMovement = credit.MustDecimal(movement)
		r.TotalCommission = credit.MustDecimal(commission)
		r.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)

		var records []agentReportRecord
		if reportsJSON != "" {
			if err := json.Unmarshal([]byte(reportsJSON), &records); err != nil {
				return nil, fmt.Errorf("failed to decode agent reports: %w", err)
			}
		}
		for _, rec := range records {
			r.AgentReports = append(r.AgentReports, credit.AgentReport{
				AgentID:        credit.AccountID(rec.AgentID),
				MemberCount:    rec.MemberCount,
				CreditMovement: credit.MustDecimal(rec.CreditMovement),
				Commission:     credit.MustDecimal(rec.Commission),
			})
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (credit.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. The store's write
// lock is held for the duration; fn must use only the provided view.
func (s *Store) WithTx(ctx context.Context, fn func(store credit.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes every operation through the open *sql.Tx without
// touching the parent's mutex (WithTx already holds it).
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) GetAccount(ctx context.Context, id credit.AccountID) (*credit.Account, error) {
	return getAccount(ctx, ts.tx, id)
}

func (ts *txStore) GetAccountByCode(ctx context.Context, code string) (*credit.Account, error) {
	return getAccountByCode(ctx, ts.tx, code)
}

func (ts *txStore) SaveAccount(ctx context.Context, a credit.Account) error {
	return saveAccount(ctx, ts.tx, a)
}

func (ts *txStore) ListChildren(ctx context.Context, parentID credit.AccountID) ([]credit.Account, error) {
	return listChildren(ctx, ts.tx, parentID)
}

func (ts *txStore) ListByTier(ctx context.Context, tier credit.Tier) ([]credit.Account, error) {
	return listByTier(ctx, ts.tx, tier)
}

func (ts *txStore) AppendTransaction(ctx context.Context, tx credit.Transaction) error {
	return appendTransaction(ctx, ts.tx, tx)
}

func (ts *txStore) TransactionsByAccount(ctx context.Context, id credit.AccountID) ([]credit.Transaction, error) {
	return transactionsByAccount(ctx, ts.tx, id)
}

func (ts *txStore) TransactionsInWindow(ctx context.Context, from, to time.Time) ([]credit.Transaction, error) {
	return transactionsInWindow(ctx, ts.tx, from, to)
}

func (ts *txStore) GetStats(ctx context.Context, agentID credit.AccountID) (*credit.AgentStats, error) {
	return getStats(ctx, ts.tx, agentID)
}

func (ts *txStore) SaveStats(ctx context.Context, st credit.AgentStats) error {
	return saveStats(ctx, ts.tx, st)
}

func (ts *txStore) SaveDailyReport(ctx context.Context, r credit.DailyReport) error {
	return saveDailyReport(ctx, ts.tx, r)
}

func (ts *txStore) GetDailyReport(ctx context.Context, day time.Time) (*credit.DailyReport, error) {
	reports, err := queryReports(ctx, ts.tx,
		`SELECT report_date, total_members, active_members, total_credit_movement,
		        total_commission, agent_reports_json, notes, generated_at
		 FROM daily_reports WHERE report_date = ?`, credit.DateKey(day))
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return &reports[0], nil
}

func (ts *txStore) DailyReportsInRange(ctx context.Context, start, end time.Time) ([]credit.DailyReport, error) {
	return queryReports(ctx, ts.tx,
		`SELECT report_date, total_members, active_members, total_credit_movement,
		        total_commission, agent_reports_json, notes, generated_at
		 FROM daily_reports
		 WHERE report_date >= ? AND report_date <= ?
		 ORDER BY report_date ASC`,
		credit.DateKey(start), credit.DateKey(end))
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"transactions", "daily_reports", "agent_stats", "accounts"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
