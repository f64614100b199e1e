package notification

import (
	"context"
	"log/slog"
	"time"
)

const (
	// KindWalletEnabled is emitted when a wallet becomes enabled.
	KindWalletEnabled = "wallet.enabled"
	// KindWalletDisabled is emitted when a wallet becomes disabled.
	KindWalletDisabled = "wallet.disabled"
	// KindDeposit is emitted after a committed deposit.
	KindDeposit = "wallet.deposit"
	// KindWithdrawal is emitted after a committed withdrawal.
	KindWithdrawal = "wallet.withdrawal"
)

// Event describes a committed wallet change.
type Event struct {
	Kind        string    `json:"kind"`
	WalletID    string    `json:"wallet_id"`
	OwnerID     string    `json:"owner_id"`
	EntryID     string    `json:"entry_id,omitempty"`
	Amount      int64     `json:"amount,omitempty"`
	Balance     int64     `json:"balance"`
	ReferenceID string    `json:"reference_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier delivers wallet events to downstream systems.
type Notifier interface {
	Send(ctx context.Context, event Event) error
}

// LoggerNotifier writes events to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the event to the structured logger.
func (n *LoggerNotifier) Send(ctx context.Context, event Event) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.InfoContext(ctx, "notification",
		slog.String("kind", event.Kind),
		slog.String("wallet_id", event.WalletID),
		slog.String("entry_id", event.EntryID),
		slog.Int64("amount", event.Amount),
		slog.Int64("balance", event.Balance),
	)
	return nil
}
