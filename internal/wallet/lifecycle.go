package wallet

import (
	"math"
	"time"

	"github.com/congo-pay/miniwallet/internal/ledger"
)

// IsEnabled reports whether financial operations are currently allowed.
func (w Wallet) IsEnabled() bool {
	return w.EnabledAt != nil && w.DisabledAt == nil
}

// Enable moves a disabled wallet to enabled, replacing any previous
// enablement and clearing the disable timestamp.
func (w *Wallet) Enable(now time.Time) error {
	if w.IsEnabled() {
		return ErrAlreadyEnabled
	}
	at := now.UTC()
	w.EnabledAt = &at
	w.DisabledAt = nil
	return nil
}

// Disable stamps DisabledAt unless it is already set. It reports whether the
// wallet changed.
func (w *Wallet) Disable(now time.Time) bool {
	if w.DisabledAt != nil {
		return false
	}
	at := now.UTC()
	w.DisabledAt = &at
	return true
}

// CanWithdraw reports whether amount can be debited without going negative.
func (w Wallet) CanWithdraw(amount int64) bool {
	return amount >= 0 && amount <= w.Balance
}

// Post applies a deposit or withdrawal and returns the entry recording it.
// The wallet is left untouched when an error is returned.
func (w *Wallet) Post(direction ledger.Direction, in TransactionInput, now time.Time) (ledger.Entry, error) {
	if !w.IsEnabled() {
		return ledger.Entry{}, ErrWalletDisabled
	}
	if in.Amount < 0 {
		verr := &ValidationError{}
		verr.add("amount", msgAmountNegative)
		return ledger.Entry{}, verr
	}

	balance := w.Balance
	switch direction {
	case ledger.DirectionDeposit:
		if in.Amount > math.MaxInt64-balance {
			verr := &ValidationError{}
			verr.add("amount", msgAmountOverflow)
			return ledger.Entry{}, verr
		}
		balance += in.Amount
	case ledger.DirectionWithdrawal:
		if !w.CanWithdraw(in.Amount) {
			return ledger.Entry{}, ErrInsufficientBalance
		}
		balance -= in.Amount
	}

	entry, err := ledger.NewEntry(w.ID, direction, in.Amount, in.ReferenceID, now)
	if err != nil {
		return ledger.Entry{}, err
	}
	w.Balance = balance
	return entry, nil
}
