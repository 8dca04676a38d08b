/*
errors.go - Centralized error types for the credit engine

PURPOSE:
  All error kinds in one place so callers can branch on them with
  errors.Is/errors.As. The engine distinguishes two failure domains:

  1. Fatal/rejecting - ledger mutation errors. These abort the
     operation and leave balance and transaction log untouched
     (not-found, invalid amount, insufficient credit, storage fault).
  2. Best-effort - derived-data errors (commission crediting, stats
     rollups, report follow-up writes). These are logged and swallowed;
     they never undo the ledger mutation that triggered them.

USAGE:
  if errors.Is(err, credit.ErrInsufficientCredit) { ... }

  var ice *credit.InsufficientCreditError
  if errors.As(err, &ice) { ... ice.Shortfall ... }

SEE ALSO:
  - ledger.go: Produces the rejecting errors
  - commission.go, stats.go, report.go: Best-effort failure domain
*/
package credit

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrStatsNotFound is returned when an agent has no stats record.
	// The commission engine treats this as a soft no-op, not a failure.
	ErrStatsNotFound = errors.New("agent stats not found")

	// ErrReportNotFound is returned when no daily report exists for a date.
	ErrReportNotFound = errors.New("daily report not found")

	// ErrInvalidAmount is returned for non-positive, over-limit, or
	// over-precision ledger amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientCredit is returned when a deduction exceeds the
	// current balance. Expected business rejection, not a fault.
	ErrInsufficientCredit = errors.New("insufficient credit")

	// ErrDuplicateCode is returned when an agent code collides with an
	// existing one.
	ErrDuplicateCode = errors.New("duplicate agent code")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientCreditError details a balance shortage.
type InsufficientCreditError struct {
	AccountID AccountID
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("insufficient credit on %s: available %s, requested %s",
		e.AccountID, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientCreditError) Unwrap() error { return ErrInsufficientCredit }

// Shortfall is the amount missing to satisfy the request.
func (e *InsufficientCreditError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

// InvalidAmountError details why a ledger amount was rejected.
type InvalidAmountError struct {
	Amount decimal.Decimal
	Reason string // "non_positive", "exceeds_max", "over_precision"
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %s: %s", e.Amount.String(), e.Reason)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// BestEffortError marks a failure in the derived-data domain. Callers
// log these and continue; they must never abort or roll back the
// ledger mutation that triggered the derived work.
type BestEffortError struct {
	Op  string // e.g. "commission.apply", "stats.recompute"
	Err error
}

func (e *BestEffortError) Error() string {
	return fmt.Sprintf("%s (best-effort): %v", e.Op, e.Err)
}

func (e *BestEffortError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrStatsNotFound) ||
		errors.Is(err, ErrReportNotFound)
}

// IsClientError returns true if the error is an expected rejection of
// the caller's request rather than an infrastructure fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientCredit) ||
		errors.Is(err, ErrDuplicateCode)
}

// IsBestEffort returns true if the error belongs to the non-fatal
// derived-data domain.
func IsBestEffort(err error) bool {
	var be *BestEffortError
	return errors.As(err, &be)
}
