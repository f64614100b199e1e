package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/miniwallet/internal/ledger"
)

// MutateFunc changes w in place and optionally returns the ledger entry that
// records the change. Returning an error discards every change.
type MutateFunc func(w *Wallet) (*ledger.Entry, error)

// Repository persists wallets and their ledger entries.
type Repository interface {
	ledger.Reader
	Create(ctx context.Context, wallet Wallet) error
	Get(ctx context.Context, id string) (Wallet, error)
	FindByCredential(ctx context.Context, hash []byte) (Wallet, error)
	// Mutate runs fn with exclusive access to the wallet and persists the
	// resulting wallet and entry as one unit.
	Mutate(ctx context.Context, id string, fn MutateFunc) (Wallet, error)
}

const (
	constraintOwnerUnique      = "wallets_owner_id_key"
	constraintCredentialUnique = "wallets_credential_hash_key"
	constraintBalanceNonNeg    = "wallets_balance_check"

	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const selectWallet = `SELECT id, owner_id, credential_hash, enabled_at, disabled_at, balance, created_at FROM wallets`

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a wallet record. The unique indexes on owner_id and
// credential_hash decide conflicts inside the insert itself.
func (r *PostgresRepository) Create(ctx context.Context, wallet Wallet) error {
	walletID, err := uuid.Parse(wallet.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(wallet.OwnerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (id, owner_id, credential_hash, enabled_at, disabled_at, balance, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		walletID, ownerID, wallet.CredentialHash, wallet.EnabledAt, wallet.DisabledAt, wallet.Balance, wallet.CreatedAt.UTC())
	return classify(err)
}

// Get fetches a wallet by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Wallet, error) {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, ErrNotFound
	}
	return scanWallet(r.db.QueryRow(ctx, selectWallet+` WHERE id = $1`, walletID))
}

// FindByCredential fetches the wallet issued the credential with this digest.
func (r *PostgresRepository) FindByCredential(ctx context.Context, hash []byte) (Wallet, error) {
	return scanWallet(r.db.QueryRow(ctx, selectWallet+` WHERE credential_hash = $1`, hash))
}

// Mutate locks the wallet row, applies fn and writes the wallet together with
// its ledger entry in a single transaction.
func (r *PostgresRepository) Mutate(ctx context.Context, id string, fn MutateFunc) (Wallet, error) {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Wallet{}, fmt.Errorf("%w: begin: %w", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	w, err := scanWallet(tx.QueryRow(ctx, selectWallet+` WHERE id = $1 FOR UPDATE`, walletID))
	if err != nil {
		return Wallet{}, err
	}

	entry, err := fn(&w)
	if err != nil {
		return Wallet{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE wallets SET enabled_at = $1, disabled_at = $2, balance = $3 WHERE id = $4`,
		w.EnabledAt, w.DisabledAt, w.Balance, walletID); err != nil {
		return Wallet{}, classify(err)
	}
	if entry != nil {
		if err := ledger.Insert(ctx, tx, *entry); err != nil {
			return Wallet{}, classify(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Wallet{}, fmt.Errorf("%w: commit: %w", ErrUnavailable, err)
	}
	return w, nil
}

// Entries lists the wallet's ledger entries, oldest first.
func (r *PostgresRepository) Entries(ctx context.Context, walletID string, limit int) ([]ledger.Entry, error) {
	return ledger.List(ctx, r.db, walletID, limit)
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w       Wallet
		id      uuid.UUID
		ownerID uuid.UUID
	)
	if err := row.Scan(&id, &ownerID, &w.CredentialHash, &w.EnabledAt, &w.DisabledAt, &w.Balance, &w.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, classify(err)
	}
	w.ID = id.String()
	w.OwnerID = ownerID.String()
	w.CreatedAt = w.CreatedAt.UTC()
	if w.EnabledAt != nil {
		at := w.EnabledAt.UTC()
		w.EnabledAt = &at
	}
	if w.DisabledAt != nil {
		at := w.DisabledAt.UTC()
		w.DisabledAt = &at
	}
	return w, nil
}

// classify maps PostgreSQL errors onto the package's sentinel errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintOwnerUnique:
			return ErrConflict
		case constraintCredentialUnique:
			return errCredentialTaken
		}
	case pgCheckViolation:
		if pgErr.ConstraintName == constraintBalanceNonNeg {
			return ErrInsufficientBalance
		}
	case pgSerializationFailure, pgDeadlockDetected:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

var _ Repository = (*PostgresRepository)(nil)
