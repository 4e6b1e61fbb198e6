// Package simulator implements the single-session ATM engine.
//
// FILE: store.go
// PURPOSE: AccountStore owns every account for the process lifetime. Accounts
// live in a slice and are addressed by AccountRef so the engine never keeps a
// private copy of a balance.
//
// RELATED FILES:
// - session.go: Engine, the only writer of balances
// - history.go: bounded transaction history
package simulator

import (
	"fmt"
	"sort"

	"github.com/willfong/atmsim/internal/models"
)

// AccountRef is a stable handle to an account held by an AccountStore
type AccountRef int

// noAccount marks the logged-out state
const noAccount AccountRef = -1

// AccountStore holds the fixed set of accounts seeded at startup
type AccountStore struct {
	accounts []models.Account
	index    map[string]AccountRef
}

// NewAccountStore creates a store from seed accounts.
// Ids must be non-empty and unique.
func NewAccountStore(seed []models.Account) (*AccountStore, error) {
	s := &AccountStore{
		accounts: make([]models.Account, 0, len(seed)),
		index:    make(map[string]AccountRef, len(seed)),
	}

	for _, acc := range seed {
		if acc.ID == "" {
			return nil, fmt.Errorf("account with empty id")
		}
		if _, exists := s.index[acc.ID]; exists {
			return nil, fmt.Errorf("duplicate account id %q", acc.ID)
		}
		if acc.Kind == "" {
			acc.Kind = models.AccountKindStandard
		}
		s.index[acc.ID] = AccountRef(len(s.accounts))
		s.accounts = append(s.accounts, acc)
	}

	return s, nil
}

// Lookup finds an account by id. The boolean is false when no account matches.
func (s *AccountStore) Lookup(id string) (AccountRef, bool) {
	ref, ok := s.index[id]
	if !ok {
		return noAccount, false
	}
	return ref, true
}

// Get returns a snapshot of the referenced account
func (s *AccountStore) Get(ref AccountRef) (models.Account, bool) {
	if !s.valid(ref) {
		return models.Account{}, false
	}
	return s.accounts[ref], true
}

// Len returns the number of accounts
func (s *AccountStore) Len() int {
	return len(s.accounts)
}

// Snapshot returns copies of all accounts ordered by id
func (s *AccountStore) Snapshot() []models.Account {
	out := make([]models.Account, len(s.accounts))
	copy(out, s.accounts)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// account returns the live account for mutation by the engine
func (s *AccountStore) account(ref AccountRef) *models.Account {
	if !s.valid(ref) {
		return nil
	}
	return &s.accounts[ref]
}

func (s *AccountStore) valid(ref AccountRef) bool {
	return ref >= 0 && int(ref) < len(s.accounts)
}
