package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/miniwallet/internal/ledger"
	"github.com/congo-pay/miniwallet/internal/logging"
	"github.com/congo-pay/miniwallet/internal/notification"
)

const (
	maxCredentialAttempts = 3
	notifyTimeout         = 2 * time.Second
)

// Service exposes the wallet lifecycle and ledger operations.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a wallet service instance. A nil notifier disables event
// delivery.
func NewService(repo Repository, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now: func() time.Time {
			// PostgreSQL keeps microseconds
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// Create provisions a disabled, empty wallet for the owner and issues its
// credential.
func (s *Service) Create(ctx context.Context, input CreateInput) (Created, error) {
	ownerID, err := ParseOwnerID(input.OwnerID)
	if err != nil {
		return Created{}, err
	}

	for attempt := 0; attempt < maxCredentialAttempts; attempt++ {
		credential, err := NewCredential()
		if err != nil {
			return Created{}, fmt.Errorf("issue credential: %w", err)
		}
		w := Wallet{
			ID:             uuid.NewString(),
			OwnerID:        ownerID,
			CredentialHash: HashCredential(credential),
			CreatedAt:      s.now(),
		}
		err = s.repo.Create(ctx, w)
		if errors.Is(err, errCredentialTaken) {
			continue
		}
		if err != nil {
			return Created{}, err
		}
		s.logger.InfoContext(ctx, "wallet.created",
			slog.String("wallet_id", w.ID),
			slog.String("owner_id", w.OwnerID),
		)
		return Created{Wallet: w, Credential: credential}, nil
	}
	return Created{}, fmt.Errorf("%w: could not issue a unique credential", ErrUnavailable)
}

// Authenticate resolves a bearer credential to its wallet.
func (s *Service) Authenticate(ctx context.Context, credential string) (Wallet, error) {
	if credential == "" {
		return Wallet{}, ErrNotFound
	}
	return s.repo.FindByCredential(ctx, HashCredential(credential))
}

// Get returns the projection of an enabled wallet.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if !w.IsEnabled() {
		return View{}, ErrWalletDisabled
	}
	return w.View(), nil
}

// Enable turns on financial operations for the wallet.
func (s *Service) Enable(ctx context.Context, id string) (View, error) {
	w, err := s.repo.Mutate(ctx, id, func(w *Wallet) (*ledger.Entry, error) {
		return nil, w.Enable(s.now())
	})
	if err != nil {
		return View{}, err
	}
	s.logger.InfoContext(ctx, "wallet.enabled", slog.String("wallet_id", w.ID))
	s.notify(ctx, notification.Event{
		Kind:       notification.KindWalletEnabled,
		WalletID:   w.ID,
		OwnerID:    w.OwnerID,
		Balance:    w.Balance,
		OccurredAt: *w.EnabledAt,
	})
	return w.View(), nil
}

// Disable turns off financial operations. Disabling a disabled wallet keeps
// the original timestamp and succeeds.
func (s *Service) Disable(ctx context.Context, id string) (View, error) {
	var changed bool
	w, err := s.repo.Mutate(ctx, id, func(w *Wallet) (*ledger.Entry, error) {
		changed = w.Disable(s.now())
		return nil, nil
	})
	if err != nil {
		return View{}, err
	}
	if changed {
		s.logger.InfoContext(ctx, "wallet.disabled", slog.String("wallet_id", w.ID))
		s.notify(ctx, notification.Event{
			Kind:       notification.KindWalletDisabled,
			WalletID:   w.ID,
			OwnerID:    w.OwnerID,
			Balance:    w.Balance,
			OccurredAt: *w.DisabledAt,
		})
	}
	return w.View(), nil
}

// Deposit credits the wallet and records the entry.
func (s *Service) Deposit(ctx context.Context, id string, in TransactionInput) (ledger.Entry, error) {
	return s.post(ctx, id, ledger.DirectionDeposit, in)
}

// Withdraw debits the wallet and records the entry.
func (s *Service) Withdraw(ctx context.Context, id string, in TransactionInput) (ledger.Entry, error) {
	return s.post(ctx, id, ledger.DirectionWithdrawal, in)
}

func (s *Service) post(ctx context.Context, id string, direction ledger.Direction, in TransactionInput) (ledger.Entry, error) {
	var entry ledger.Entry
	w, err := s.repo.Mutate(ctx, id, func(w *Wallet) (*ledger.Entry, error) {
		e, err := w.Post(direction, in, s.now())
		if err != nil {
			return nil, err
		}
		entry = e
		return &entry, nil
	})
	if err != nil {
		if !isExpected(err) {
			s.logger.ErrorContext(ctx, "wallet.post failed",
				slog.String("wallet_id", id),
				slog.String("direction", string(direction)),
				slog.Any("error", err),
			)
		}
		return ledger.Entry{}, err
	}

	s.logger.InfoContext(ctx, "wallet.posted",
		slog.String("wallet_id", w.ID),
		slog.String("entry_id", entry.ID),
		slog.String("direction", string(direction)),
		slog.Int64("amount", entry.Amount),
		slog.Int64("balance", w.Balance),
	)

	kind := notification.KindDeposit
	if direction == ledger.DirectionWithdrawal {
		kind = notification.KindWithdrawal
	}
	s.notify(ctx, notification.Event{
		Kind:        kind,
		WalletID:    w.ID,
		OwnerID:     w.OwnerID,
		EntryID:     entry.ID,
		Amount:      entry.Amount,
		Balance:     w.Balance,
		ReferenceID: entry.ReferenceID,
		OccurredAt:  entry.OccurredAt,
	})
	return entry, nil
}

// Transactions lists up to limit of the most recent entries of an enabled
// wallet, oldest first.
func (s *Service) Transactions(ctx context.Context, id string, limit int) ([]ledger.Entry, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !w.IsEnabled() {
		return nil, ErrWalletDisabled
	}
	return s.repo.Entries(ctx, w.ID, limit)
}

func (s *Service) notify(ctx context.Context, event notification.Event) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := s.notifier.Send(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			slog.String("kind", event.Kind),
			slog.String("wallet_id", event.WalletID),
			slog.Any("error", err),
		)
	}
}

func isExpected(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrWalletDisabled) ||
		errors.Is(err, ErrInsufficientBalance)
}
