// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/credit-engine/credit"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements credit.TxStore with plain maps. All public methods
// are safe for concurrent use; WithTx simulates atomicity with a
// snapshot and rollback-on-error, matching the contract the ledger
// relies on.
type Memory struct {
	mu sync.RWMutex
	d  data
}

type data struct {
	accounts     map[credit.AccountID]credit.Account
	codes        map[string]credit.AccountID
	transactions []credit.Transaction
	stats        map[credit.AccountID]credit.AgentStats
	reports      map[string]credit.DailyReport
}

func NewMemory() *Memory {
	return &Memory{d: data{
		accounts: make(map[credit.AccountID]credit.Account),
		codes:    make(map[string]credit.AccountID),
		stats:    make(map[credit.AccountID]credit.AgentStats),
		reports:  make(map[string]credit.DailyReport),
	}}
}

// -----------------------------------------------------------------------------
// Accounts
// -----------------------------------------------------------------------------

func (m *Memory) GetAccount(_ context.Context, id credit.AccountID) (*credit.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.getAccount(id), nil
}

func (m *Memory) GetAccountByCode(_ context.Context, code string) (*credit.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.getAccountByCode(code), nil
}

func (m *Memory) SaveAccount(_ context.Context, a credit.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.saveAccount(a)
}

func (m *Memory) ListChildren(_ context.Context, parentID credit.AccountID) ([]credit.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.listChildren(parentID), nil
}

func (m *Memory) ListByTier(_ context.Context, tier credit.Tier) ([]credit.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.listByTier(tier), nil
}

// -----------------------------------------------------------------------------
// Transactions (append-only)
// -----------------------------------------------------------------------------

func (m *Memory) AppendTransaction(_ context.Context, tx credit.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.appendTransaction(tx)
}

func (m *Memory) TransactionsByAccount(_ context.Context, id credit.AccountID) ([]credit.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.transactionsByAccount(id), nil
}

func (m *Memory) TransactionsInWindow(_ context.Context, from, to time.Time) ([]credit.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.transactionsInWindow(from, to), nil
}

// -----------------------------------------------------------------------------
// Stats / Reports
// -----------------------------------------------------------------------------

func (m *Memory) GetStats(_ context.Context, agentID credit.AccountID) (*credit.AgentStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.getStats(agentID), nil
}

func (m *Memory) SaveStats(_ context.Context, s credit.AgentStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.saveStats(s)
}

func (m *Memory) SaveDailyReport(_ context.Context, r credit.DailyReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.saveDailyReport(r)
}

func (m *Memory) GetDailyReport(_ context.Context, day time.Time) (*credit.DailyReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.getDailyReport(day), nil
}

func (m *Memory) DailyReportsInRange(_ context.Context, start, end time.Time) ([]credit.DailyReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.dailyReportsInRange(start, end), nil
}

// -----------------------------------------------------------------------------
// WithTx - snapshot + rollback on error
// -----------------------------------------------------------------------------

func (m *Memory) WithTx(_ context.Context, fn func(credit.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.d.clone()
	if err := fn(&txView{d: &m.d}); err != nil {
		m.d = snapshot
		return err
	}
	return nil
}

// txView exposes the already-locked data as a credit.Store. Reads and
// writes inside WithTx bypass the outer mutex.
type txView struct {
	d *data
}

func (v *txView) GetAccount(_ context.Context, id credit.AccountID) (*credit.Account, error) {
	return v.d.getAccount(id), nil
}
func (v *txView) GetAccountByCode(_ context.Context, code string) (*credit.Account, error) {
	return v.d.getAccountByCode(code), nil
}
func (v *txView) SaveAccount(_ context.Context, a credit.Account) error { return v.d.saveAccount(a) }
func (v *txView) ListChildren(_ context.Context, parentID credit.AccountID) ([]credit.Account, error) {
	return v.d.listChildren(parentID), nil
}
func (v *txView) ListByTier(_ context.Context, tier credit.Tier) ([]credit.Account, error) {
	return v.d.listByTier(tier), nil
}
func (v *txView) AppendTransaction(_ context.Context, tx credit.Transaction) error {
	return v.d.appendTransaction(tx)
}
func (v *txView) TransactionsByAccount(_ context.Context, id credit.AccountID) ([]credit.Transaction, error) {
	return v.d.transactionsByAccount(id), nil
}
func (v *txView) TransactionsInWindow(_ context.Context, from, to time.Time) ([]credit.Transaction, error) {
	return v.d.transactionsInWindow(from, to), nil
}
func (v *txView) GetStats(_ context.Context, agentID credit.AccountID) (*credit.AgentStats, error) {
	return v.d.getStats(agentID), nil
}
func (v *txView) SaveStats(_ context.Context, s credit.AgentStats) error { return v.d.saveStats(s) }
func (v *txView) SaveDailyReport(_ context.Context, r credit.DailyReport) error {
	return v.d.saveDailyReport(r)
}
func (v *txView) GetDailyReport(_ context.Context, day time.Time) (*credit.DailyReport, error) {
	return v.d.getDailyReport(day), nil
}
func (v *txView) DailyReportsInRange(_ context.Context, start, end time.Time) ([]credit.DailyReport, error) {
	return v.d.dailyReportsInRange(start, end), nil
}

// -----------------------------------------------------------------------------
// Unlocked internals
// -----------------------------------------------------------------------------

func (d *data) getAccount(id credit.AccountID) *credit.Account {
	a, ok := d.accounts[id]
	if !ok {
		return nil
	}
	return &a
}

func (d *data) getAccountByCode(code string) *credit.Account {
	if code == "" {
		return nil
	}
	id, ok := d.codes[code]
	if !ok {
		return nil
	}
	return d.getAccount(id)
}

func (d *data) saveAccount(a credit.Account) error {
	if a.Code != "" {
		if owner, ok := d.codes[a.Code]; ok && owner != a.ID {
			return credit.ErrDuplicateCode
		}
	}
	if prev, ok := d.accounts[a.ID]; ok && prev.Code != "" && prev.Code != a.Code {
		delete(d.codes, prev.Code)
	}
	d.accounts[a.ID] = a
	if a.Code != "" {
		d.codes[a.Code] = a.ID
	}
	return nil
}

func (d *data) listChildren(parentID credit.AccountID) []credit.Account {
	var children []credit.Account
	for _, a := range d.accounts {
		if a.ParentID == parentID {
			children = append(children, a)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
	return children
}

func (d *data) listByTier(tier credit.Tier) []credit.Account {
	var accounts []credit.Account
	for _, a := range d.accounts {
		if a.Tier == tier {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts
}

func (d *data) appendTransaction(tx credit.Transaction) error {
	d.transactions = append(d.transactions, tx)
	return nil
}

func (d *data) transactionsByAccount(id credit.AccountID) []credit.Transaction {
	var txs []credit.Transaction
	for i := range d.transactions {
		if d.transactions[i].AccountID == id {
			txs = append(txs, d.transactions[i])
		}
	}
	return txs
}

func (d *data) transactionsInWindow(from, to time.Time) []credit.Transaction {
	var txs []credit.Transaction
	for i := range d.transactions {
		at := d.transactions[i].CreatedAt
		if !at.Before(from) && at.Before(to) {
			txs = append(txs, d.transactions[i])
		}
	}
	return txs
}

func (d *data) getStats(agentID credit.AccountID) *credit.AgentStats {
	s, ok := d.stats[agentID]
	if !ok {
		return nil
	}
	s.CommissionHistory = append([]credit.CommissionEntry(nil), s.CommissionHistory...)
	return &s
}

func (d *data) saveStats(s credit.AgentStats) error {
	s.CommissionHistory = append([]credit.CommissionEntry(nil), s.CommissionHistory...)
	d.stats[s.AgentID] = s
	return nil
}

func (d *data) saveDailyReport(r credit.DailyReport) error {
	r.AgentReports = append([]credit.AgentReport(nil), r.AgentReports...)
	d.reports[credit.DateKey(r.Date)] = r
	return nil
}

func (d *data) getDailyReport(day time.Time) *credit.DailyReport {
	r, ok := d.reports[credit.DateKey(day)]
	if !ok {
		return nil
	}
	r.AgentReports = append([]credit.AgentReport(nil), r.AgentReports...)
	return &r
}

func (d *data) dailyReportsInRange(start, end time.Time) []credit.DailyReport {
	s, e := credit.Day(start), credit.Day(end)
	var reports []credit.DailyReport
	for _, r := range d.reports {
		if !r.Date.Before(s) && !r.Date.After(e) {
			r.AgentReports = append([]credit.AgentReport(nil), r.AgentReports...)
			reports = append(reports, r)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Date.Before(reports[j].Date) })
	return reports
}

func (d *data) clone() data {
	c := data{
		accounts:     make(map[credit.AccountID]credit.Account, len(d.accounts)),
		codes:        make(map[string]credit.AccountID, len(d.codes)),
		transactions: append([]credit.Transaction(nil), d.transactions...),
		stats:        make(map[credit.AccountID]credit.AgentStats, len(d.stats)),
		reports:      make(map[string]credit.DailyReport, len(d.reports)),
	}
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.codes {
		c.codes[k] = v
	}
	for k, v := range d.stats {
		v.CommissionHistory = append([]credit.CommissionEntry(nil), v.CommissionHistory...)
		c.stats[k] = v
	}
	for k, v := range d.reports {
		v.AgentReports = append([]credit.AgentReport(nil), v.AgentReports...)
		c.reports[k] = v
	}
	return c
}
