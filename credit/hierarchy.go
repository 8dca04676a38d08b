// hierarchy.go - Bounded two-level read model over accounts.
//
// The hierarchy is fixed at depth two below root (root → agents →
// members), so lookups are explicit bounded queries rather than a
// general recursive traversal.
package credit

import (
	"context"
	"fmt"
)

// Hierarchy exposes parent/child lookups over the account store.
// It never mutates anything.
type Hierarchy struct {
	store AccountStore
}

func NewHierarchy(store AccountStore) *Hierarchy {
	return &Hierarchy{store: store}
}

// ByID returns an account, or ErrAccountNotFound.
func (h *Hierarchy) ByID(ctx context.Context, id AccountID) (*Account, error) {
	a, err := h.store.GetAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: load account %s: %w", id, err)
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// ByCode resolves an agent by its unique code, or ErrAccountNotFound.
func (h *Hierarchy) ByCode(ctx context.Context, code string) (*Account, error) {
	a, err := h.store.GetAccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: load account by code %q: %w", code, err)
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// Agents returns all agent accounts.
func (h *Hierarchy) Agents(ctx context.Context) ([]Account, error) {
	return h.store.ListByTier(ctx, TierAgent)
}

// Members returns the direct member accounts of an agent.
func (h *Hierarchy) Members(ctx context.Context, agentID AccountID) ([]Account, error) {
	return h.store.ListChildren(ctx, agentID)
}

// DisplayName resolves an account name for report annotation. Unknown
// accounts fall back to the raw identifier so a stale report row never
// fails a read query.
func (h *Hierarchy) DisplayName(ctx context.Context, id AccountID) string {
	a, err := h.store.GetAccount(ctx, id)
	if err != nil || a == nil || a.Name == "" {
		return string(id)
	}
	return a.Name
}
