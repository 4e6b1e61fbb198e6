package simulator

import (
	"testing"

	"github.com/willfong/atmsim/internal/models"
)

func referenceAccounts() []models.Account {
	return []models.Account{
		{ID: "user1", PIN: "1234", Balance: 10000, Kind: models.AccountKindStandard},
		{ID: "user2", PIN: "5678", Balance: 50000, Kind: models.AccountKindSavings},
		{ID: "admin", PIN: "0000", Balance: 100000, Kind: models.AccountKindStandard},
	}
}

func TestNewAccountStore(t *testing.T) {
	store, err := NewAccountStore(referenceAccounts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 3 {
		t.Errorf("expected 3 accounts, got %d", store.Len())
	}

	ref, ok := store.Lookup("user2")
	if !ok {
		t.Fatal("expected user2 to be found")
	}
	acc, ok := store.Get(ref)
	if !ok {
		t.Fatal("expected Get to succeed for a looked-up ref")
	}
	if acc.Balance != 50000 || !acc.IsSavings() {
		t.Errorf("unexpected account %+v", acc)
	}
}

func TestNewAccountStore_Rejects(t *testing.T) {
	tests := []struct {
		name string
		seed []models.Account
	}{
		{"empty id", []models.Account{{ID: "", PIN: "1"}}},
		{"duplicate id", []models.Account{{ID: "a", PIN: "1"}, {ID: "a", PIN: "2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAccountStore(tt.seed); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestAccountStore_DefaultsKind(t *testing.T) {
	store, err := NewAccountStore([]models.Account{{ID: "a", PIN: "1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref, _ := store.Lookup("a")
	acc, _ := store.Get(ref)
	if acc.Kind != models.AccountKindStandard {
		t.Errorf("expected standard kind, got %q", acc.Kind)
	}
}

func TestAccountStore_LookupMissing(t *testing.T) {
	store, _ := NewAccountStore(referenceAccounts())

	ref, ok := store.Lookup("nobody")
	if ok {
		t.Error("expected lookup of unknown id to fail")
	}
	if _, ok := store.Get(ref); ok {
		t.Error("expected Get on a missing ref to fail")
	}
	if store.account(ref) != nil {
		t.Error("expected nil live account for a missing ref")
	}
}

func TestAccountStore_SnapshotIsCopy(t *testing.T) {
	store, _ := NewAccountStore(referenceAccounts())

	snap := store.Snapshot()
	if snap[0].ID != "admin" || snap[1].ID != "user1" || snap[2].ID != "user2" {
		t.Errorf("expected snapshot ordered by id, got %s, %s, %s", snap[0].ID, snap[1].ID, snap[2].ID)
	}

	snap[0].Balance = 0
	ref, _ := store.Lookup("admin")
	acc, _ := store.Get(ref)
	if acc.Balance != 100000 {
		t.Errorf("snapshot mutation leaked into store: balance %v", acc.Balance)
	}
}

func TestAccountStore_SeedNotAliased(t *testing.T) {
	seed := referenceAccounts()
	store, _ := NewAccountStore(seed)

	seed[0].Balance = 1
	ref, _ := store.Lookup("user1")
	acc, _ := store.Get(ref)
	if acc.Balance != 10000 {
		t.Errorf("seed mutation leaked into store: balance %v", acc.Balance)
	}
}
