package ledger

import (
	"context"
	"sync"
)

// Journal is a concurrency-safe in-memory entry log useful for unit tests and
// development runs without PostgreSQL.
type Journal struct {
	mu       sync.RWMutex
	byWallet map[string][]Entry
}

// NewInMemory creates an empty journal.
func NewInMemory() *Journal {
	return &Journal{byWallet: make(map[string][]Entry)}
}

// Append records e after the wallet's existing entries.
func (j *Journal) Append(e Entry) error {
	if e.Amount < 0 {
		return ErrNegativeAmount
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.byWallet[e.WalletID] = append(j.byWallet[e.WalletID], e)
	return nil
}

// Entries returns up to limit of the wallet's most recent entries in creation
// order. A non-positive limit returns everything.
func (j *Journal) Entries(_ context.Context, walletID string, limit int) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	all := j.byWallet[walletID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]Entry, len(all))
	copy(out, all)
	return out, nil
}

// Balance replays the wallet's entries into a balance.
func (j *Journal) Balance(walletID string) int64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var total int64
	for _, e := range j.byWallet[walletID] {
		total += e.Signed()
	}
	return total
}

var _ Reader = (*Journal)(nil)
