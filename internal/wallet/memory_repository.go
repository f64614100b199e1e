package wallet

import (
	"context"
	"sync"

	"github.com/congo-pay/miniwallet/internal/ledger"
)

type memoryRepository struct {
	mu           sync.RWMutex
	wallets      map[string]Wallet
	byOwner      map[string]string
	byCredential map[string]string
	journal      *ledger.Journal

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewMemoryRepository constructs an in-memory repository for tests and
// development runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		wallets:      make(map[string]Wallet),
		byOwner:      make(map[string]string),
		byCredential: make(map[string]string),
		journal:      ledger.NewInMemory(),
		locks:        make(map[string]*sync.Mutex),
	}
}

func (r *memoryRepository) Create(_ context.Context, wallet Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byOwner[wallet.OwnerID]; exists {
		return ErrConflict
	}
	if _, exists := r.byCredential[string(wallet.CredentialHash)]; exists {
		return errCredentialTaken
	}
	r.wallets[wallet.ID] = wallet
	r.byOwner[wallet.OwnerID] = wallet.ID
	r.byCredential[string(wallet.CredentialHash)] = wallet.ID
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallet, ok := r.wallets[id]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return wallet, nil
}

func (r *memoryRepository) FindByCredential(_ context.Context, hash []byte) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCredential[string(hash)]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return r.wallets[id], nil
}

// walletLock returns the mutex serializing mutations of one wallet.
func (r *memoryRepository) walletLock(id string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	if _, exists := r.locks[id]; !exists {
		r.locks[id] = &sync.Mutex{}
	}
	return r.locks[id]
}

func (r *memoryRepository) Mutate(ctx context.Context, id string, fn MutateFunc) (Wallet, error) {
	// wallets are never deleted, so an id seen here stays valid under the lock
	if _, err := r.Get(ctx, id); err != nil {
		return Wallet{}, err
	}
	lock := r.walletLock(id)
	lock.Lock()
	defer lock.Unlock()

	w, err := r.Get(ctx, id)
	if err != nil {
		return Wallet{}, err
	}

	entry, err := fn(&w)
	if err != nil {
		return Wallet{}, err
	}

	// wallet and entry become visible together
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry != nil {
		if err := r.journal.Append(*entry); err != nil {
			return Wallet{}, err
		}
	}
	r.wallets[id] = w
	return w, nil
}

func (r *memoryRepository) Entries(ctx context.Context, walletID string, limit int) ([]ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.journal.Entries(ctx, walletID, limit)
}
