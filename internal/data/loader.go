// Package data holds the embedded reference account set used when no
// accounts are configured.
package data

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/willfong/atmsim/internal/models"
)

//go:embed seed/*.json
var dataFiles embed.FS

// SeedData represents the structure of seed/accounts.json
type SeedData struct {
	Accounts []SeedAccount `json:"accounts"`
}

// SeedAccount is one reference account
type SeedAccount struct {
	ID      string  `json:"id"`
	PIN     string  `json:"pin"`
	Balance float64 `json:"balance"`
	Kind    string  `json:"kind"`
}

var (
	instance *SeedData
	once     sync.Once
	loadErr  error
)

// Load loads the seed data from embedded files
// This is thread-safe and will only load data once
func Load() (*SeedData, error) {
	once.Do(func() {
		instance = &SeedData{}
		loadErr = instance.loadAll()
	})

	if loadErr != nil {
		return nil, loadErr
	}
	return instance, nil
}

// loadAll loads all data files
func (s *SeedData) loadAll() error {
	data, err := dataFiles.ReadFile("seed/accounts.json")
	if err != nil {
		return fmt.Errorf("failed to read accounts.json: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse accounts.json: %w", err)
	}
	return nil
}

// DefaultAccounts returns fresh models for the reference accounts.
// Each call returns new values, so callers may mutate them freely.
func DefaultAccounts() ([]models.Account, error) {
	seed, err := Load()
	if err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(seed.Accounts))
	for _, sa := range seed.Accounts {
		kind, err := models.ParseAccountKind(sa.Kind)
		if err != nil {
			return nil, fmt.Errorf("seed account %q: %w", sa.ID, err)
		}
		accounts = append(accounts, models.Account{
			ID:      sa.ID,
			PIN:     sa.PIN,
			Balance: sa.Balance,
			Kind:    kind,
		})
	}
	return accounts, nil
}
