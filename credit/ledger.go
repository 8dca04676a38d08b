/*
ledger.go - Atomic balance mutation with transaction logging

PURPOSE:
  The Ledger is the only writer of account balances. Every successful
  adjustment commits the balance change and exactly one Transaction
  record in the same storage transaction; on failure nothing is
  written.

CRITICAL INVARIANTS:
  1. balance-after = balance-before ± amount, exact to 2 decimals
  2. Balance never goes negative; a deduction past the balance is
     rejected with InsufficientCreditError and leaves no trace
  3. One Transaction per committed change, never modified afterwards
  4. Adjustments are serialized PER ACCOUNT: the insufficient-credit
     check always observes the latest committed balance

CONCURRENCY:
  A striped lock set keyed by account ID closes the check-then-act
  race. Concurrent adjustments on distinct accounts proceed
  independently; two adjustments on the same account queue on the same
  stripe. The store's WithTx provides the atomic commit underneath.

SEE ALSO:
  - store.go: TxStore contract
  - commission.go: Credits agents through this ledger
*/
package credit

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMaxAdjustment bounds a single adjustment when no limit is
// configured.
var DefaultMaxAdjustment = MustDecimal("100000.00")

// AdjustInput describes one balance adjustment. Identifiers arrive
// already authorized; the ledger validates only amount and existence.
type AdjustInput struct {
	AccountID   AccountID
	Amount      decimal.Decimal
	Direction   Direction
	ActorID     string
	Description string
}

// AdjustResult carries the mutated account and the transaction that
// recorded the change.
type AdjustResult struct {
	Account     Account
	Transaction Transaction
}

const lockStripes = 64

// Ledger owns balance mutation. One instance per store.
type Ledger struct {
	store TxStore
	max   decimal.Decimal

	locks [lockStripes]sync.Mutex

	// now is swappable for tests.
	now func() time.Time
}

func NewLedger(store TxStore) *Ledger {
	return &Ledger{store: store, max: DefaultMaxAdjustment, now: time.Now}
}

// WithMaxAdjustment sets the per-operation amount ceiling.
func (l *Ledger) WithMaxAdjustment(max decimal.Decimal) *Ledger {
	if max.IsPositive() {
		l.max = max
	}
	return l
}

// Adjust applies one balance change and logs it atomically.
//
// Errors: InvalidAmountError for non-positive, over-limit, or
// over-precision amounts; ErrAccountNotFound; InsufficientCreditError
// when a deduction exceeds the current balance. On any error the
// balance and the transaction log are unchanged.
func (l *Ledger) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if err := l.validate(in); err != nil {
		return nil, err
	}

	mu := l.lockFor(in.AccountID)
	mu.Lock()
	defer mu.Unlock()

	var result *AdjustResult
	err := l.store.WithTx(ctx, func(s Store) error {
		account, err := s.GetAccount(ctx, in.AccountID)
		if err != nil {
			return fmt.Errorf("ledger: load account %s: %w", in.AccountID, err)
		}
		if account == nil {
			return ErrAccountNotFound
		}

		before := account.Balance
		var after decimal.Decimal
		switch in.Direction {
		case DirectionAdd:
			after = before.Add(in.Amount)
		case DirectionDeduct:
			if in.Amount.GreaterThan(before) {
				return &InsufficientCreditError{
					AccountID: in.AccountID,
					Available: before,
					Requested: in.Amount,
				}
			}
			after = before.Sub(in.Amount)
		}

		account.Balance = after
		if err := s.SaveAccount(ctx, *account); err != nil {
			return fmt.Errorf("ledger: save account %s: %w", in.AccountID, err)
		}

		tx := Transaction{
			ID:            uuid.NewString(),
			AccountID:     in.AccountID,
			Direction:     in.Direction,
			Amount:        in.Amount,
			BalanceBefore: before,
			BalanceAfter:  after,
			ActorID:       in.ActorID,
			Description:   in.Description,
			CreatedAt:     l.now().UTC(),
		}
		if err := s.AppendTransaction(ctx, tx); err != nil {
			return fmt.Errorf("ledger: append transaction: %w", err)
		}

		result = &AdjustResult{Account: *account, Transaction: tx}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *Ledger) validate(in AdjustInput) error {
	if in.Direction != DirectionAdd && in.Direction != DirectionDeduct {
		return fmt.Errorf("ledger: unknown direction %q: %w", in.Direction, ErrInvalidAmount)
	}
	if !in.Amount.IsPositive() {
		return &InvalidAmountError{Amount: in.Amount, Reason: "non_positive"}
	}
	if in.Amount.GreaterThan(l.max) {
		return &InvalidAmountError{Amount: in.Amount, Reason: "exceeds_max"}
	}
	if !HasCentPrecision(in.Amount) {
		return &InvalidAmountError{Amount: in.Amount, Reason: "over_precision"}
	}
	return nil
}

func (l *Ledger) lockFor(id AccountID) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &l.locks[h.Sum32()%lockStripes]
}
