package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func mustEntry(t *testing.T, walletID string, dir Direction, amount int64) Entry {
	t.Helper()
	e, err := NewEntry(walletID, dir, amount, uuid.NewString(), time.Now())
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	return e
}

func TestNewEntryRejectsNegativeAmount(t *testing.T) {
	if _, err := NewEntry("w", DirectionDeposit, -1, uuid.NewString(), time.Now()); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected negative amount error, got %v", err)
	}
	if _, err := NewEntry("w", Direction("refund"), 1, uuid.NewString(), time.Now()); err == nil {
		t.Fatal("expected unknown direction error")
	}
}

func TestJournal_EntriesKeepCreationOrder(t *testing.T) {
	j := NewInMemory()
	ctx := context.Background()

	first := mustEntry(t, "wallet:a", DirectionDeposit, 100)
	second := mustEntry(t, "wallet:a", DirectionWithdrawal, 40)
	other := mustEntry(t, "wallet:b", DirectionDeposit, 7)
	for _, e := range []Entry{first, other, second} {
		if err := j.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := j.Entries(ctx, "wallet:a", 0)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != first.ID || entries[1].ID != second.ID {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if got := j.Balance("wallet:a"); got != 60 {
		t.Fatalf("expected replayed balance 60, got %d", got)
	}

	latest, _ := j.Entries(ctx, "wallet:a", 1)
	if len(latest) != 1 || latest[0].ID != second.ID {
		t.Fatalf("expected only the latest entry, got %+v", latest)
	}
}

func TestJournal_EntriesReturnsCopy(t *testing.T) {
	j := NewInMemory()
	_ = j.Append(mustEntry(t, "wallet:a", DirectionDeposit, 5))

	entries, _ := j.Entries(context.Background(), "wallet:a", 0)
	entries[0].Amount = 999

	again, _ := j.Entries(context.Background(), "wallet:a", 0)
	if again[0].Amount != 5 {
		t.Fatalf("journal entry mutated through returned slice")
	}
}

func TestJournal_ConcurrentAppends(t *testing.T) {
	j := NewInMemory()
	const workers = 10

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := NewEntry("wallet:a", DirectionDeposit, 500, uuid.NewString(), time.Now())
			if err != nil {
				t.Errorf("entry %d: %v", i, err)
				return
			}
			if err := j.Append(e); err != nil {
				t.Errorf("append %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if got := j.Balance("wallet:a"); got != workers*500 {
		t.Fatalf("expected balance %d, got %d", workers*500, got)
	}
}

func TestReceiptDirectionTimestamps(t *testing.T) {
	at := time.Date(2024, 4, 29, 15, 20, 50, 0, time.UTC)
	tests := []struct {
		dir       Direction
		deposited bool
	}{
		{DirectionDeposit, true},
		{DirectionWithdrawal, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.dir), func(t *testing.T) {
			e, err := NewEntry(uuid.NewString(), tc.dir, 100, uuid.NewString(), at)
			if err != nil {
				t.Fatalf("new entry: %v", err)
			}
			r := e.Receipt()
			if r.Status != "success" {
				t.Fatalf("expected success status, got %s", r.Status)
			}
			if tc.deposited && (r.DepositedAt == nil || r.WithdrawnAt != nil) {
				t.Fatalf("deposit receipt should only carry deposited_at: %+v", r)
			}
			if !tc.deposited && (r.WithdrawnAt == nil || r.DepositedAt != nil) {
				t.Fatalf("withdrawal receipt should only carry withdrawn_at: %+v", r)
			}
			if r.Amount != 100 {
				t.Fatalf("unexpected amount %d", r.Amount)
			}
		})
	}
}
