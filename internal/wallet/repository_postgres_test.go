package wallet

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/miniwallet/internal/infra"
)

// postgresService connects to DATABASE_URL or skips the test.
func postgresService(t *testing.T) (*Service, *pgxpool.Pool) {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := infra.NewPostgresPool(ctx, url)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := infra.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(NewPostgresRepository(pool), nil, nil), pool
}

func TestPostgresRepositoryLifecycle(t *testing.T) {
	svc, _ := postgresService(t)
	ctx := context.Background()
	owner := uuid.NewString()

	created, err := svc.Create(ctx, CreateInput{OwnerID: owner})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{OwnerID: owner}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	found, err := svc.Authenticate(ctx, created.Credential)
	if err != nil || found.ID != created.Wallet.ID {
		t.Fatalf("authenticate: %v (%s)", err, found.ID)
	}

	id := created.Wallet.ID
	if _, err := svc.Deposit(ctx, id, TransactionInput{Amount: 1, ReferenceID: uuid.NewString()}); !errors.Is(err, ErrWalletDisabled) {
		t.Fatalf("expected ErrWalletDisabled, got %v", err)
	}
	if _, err := svc.Enable(ctx, id); err != nil {
		t.Fatalf("enable: %v", err)
	}

	dep, err := svc.Deposit(ctx, id, TransactionInput{Amount: 100, ReferenceID: uuid.NewString()})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	wd, err := svc.Withdraw(ctx, id, TransactionInput{Amount: 60, ReferenceID: uuid.NewString()})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := svc.Withdraw(ctx, id, TransactionInput{Amount: 41, ReferenceID: uuid.NewString()}); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	view, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Balance != 40 {
		t.Fatalf("expected balance 40, got %d", view.Balance)
	}

	entries, err := svc.Transactions(ctx, id, 0)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != dep.ID || entries[1].ID != wd.ID {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if !entries[0].OccurredAt.Equal(dep.OccurredAt) {
		t.Fatalf("occurred_at round trip: %v != %v", entries[0].OccurredAt, dep.OccurredAt)
	}
	latest, err := svc.Transactions(ctx, id, 1)
	if err != nil || len(latest) != 1 || latest[0].ID != wd.ID {
		t.Fatalf("expected only the latest entry, got %+v (%v)", latest, err)
	}

	first, err := svc.Disable(ctx, id)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	second, err := svc.Disable(ctx, id)
	if err != nil {
		t.Fatalf("second disable: %v", err)
	}
	if !first.DisabledAt.Equal(*second.DisabledAt) {
		t.Fatalf("disabled_at moved from %v to %v", *first.DisabledAt, *second.DisabledAt)
	}
}

func TestPostgresConcurrentWithdrawals(t *testing.T) {
	svc, _ := postgresService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{OwnerID: uuid.NewString()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.Wallet.ID
	if _, err := svc.Enable(ctx, id); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if _, err := svc.Deposit(ctx, id, TransactionInput{Amount: 500, ReferenceID: uuid.NewString()}); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(ctx, id, TransactionInput{Amount: 100, ReferenceID: uuid.NewString()})
			switch {
			case err == nil:
				mu.Lock()
				ok++
				mu.Unlock()
			case !errors.Is(err, ErrInsufficientBalance):
				t.Errorf("withdraw: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 5 {
		t.Fatalf("expected 5 successful withdrawals, got %d", ok)
	}
	view, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	entries, err := svc.Transactions(ctx, id, 0)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	var replayed int64
	for _, e := range entries {
		replayed += e.Signed()
	}
	if view.Balance != 0 || replayed != 0 || len(entries) != 6 {
		t.Fatalf("balance=%d replayed=%d entries=%d", view.Balance, replayed, len(entries))
	}
}
