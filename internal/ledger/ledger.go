package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNegativeAmount occurs when an entry is built with a negative magnitude.
var ErrNegativeAmount = errors.New("amount must not be negative")

// Direction tags a ledger entry as money moving into or out of a wallet.
type Direction string

const (
	// DirectionDeposit credits the wallet balance.
	DirectionDeposit Direction = "deposit"
	// DirectionWithdrawal debits the wallet balance.
	DirectionWithdrawal Direction = "withdrawal"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionDeposit || d == DirectionWithdrawal
}

// Entry is an immutable record of one applied balance mutation.
type Entry struct {
	ID          string
	WalletID    string
	Direction   Direction
	Amount      int64
	ReferenceID string
	OccurredAt  time.Time
	Succeeded   bool
}

// NewEntry builds a successful entry for the given wallet mutation.
func NewEntry(walletID string, direction Direction, amount int64, referenceID string, at time.Time) (Entry, error) {
	if amount < 0 {
		return Entry{}, ErrNegativeAmount
	}
	if !direction.Valid() {
		return Entry{}, errors.New("unknown direction " + string(direction))
	}
	return Entry{
		ID:          uuid.NewString(),
		WalletID:    walletID,
		Direction:   direction,
		Amount:      amount,
		ReferenceID: referenceID,
		OccurredAt:  at.UTC(),
		Succeeded:   true,
	}, nil
}

// Signed returns the amount as a balance delta.
func (e Entry) Signed() int64 {
	if e.Direction == DirectionWithdrawal {
		return -e.Amount
	}
	return e.Amount
}

// Reader lists the entries recorded for a wallet, oldest first.
type Reader interface {
	Entries(ctx context.Context, walletID string, limit int) ([]Entry, error)
}
