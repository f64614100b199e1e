package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Insert writes e using q. Callers pass the pgx.Tx that also updates the
// wallet balance so both land in the same commit.
func Insert(ctx context.Context, q Querier, e Entry) error {
	if e.Amount < 0 {
		return ErrNegativeAmount
	}
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return err
	}
	walletID, err := uuid.Parse(e.WalletID)
	if err != nil {
		return err
	}
	refID, err := uuid.Parse(e.ReferenceID)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `INSERT INTO wallet_transactions (id, wallet_id, direction, amount, reference_id, succeeded, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`, id, walletID, string(e.Direction), e.Amount, refID, e.Succeeded, e.OccurredAt.UTC())
	return err
}

// PostgresReader reads entries from PostgreSQL.
type PostgresReader struct {
	db Querier
}

// NewPostgresReader builds a Reader over the wallet_transactions table.
func NewPostgresReader(db Querier) *PostgresReader {
	return &PostgresReader{db: db}
}

// Entries returns up to limit of the wallet's most recent entries, oldest first.
func (r *PostgresReader) Entries(ctx context.Context, walletID string, limit int) ([]Entry, error) {
	return List(ctx, r.db, walletID, limit)
}

// List reads entries for walletID using q.
func List(ctx context.Context, q Querier, walletID string, limit int) ([]Entry, error) {
	walletUUID, err := uuid.Parse(walletID)
	if err != nil {
		return nil, err
	}
	// LIMIT ALL when limit is not positive.
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := q.Query(ctx, `SELECT id, wallet_id, direction, amount, reference_id, succeeded, occurred_at
        FROM (
            SELECT id, wallet_id, direction, amount, reference_id, succeeded, occurred_at, seq
            FROM wallet_transactions
            WHERE wallet_id = $1
            ORDER BY seq DESC
            LIMIT $2
        ) recent
        ORDER BY seq ASC`, walletUUID, lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			id, wid   uuid.UUID
			refID     uuid.UUID
			direction string
		)
		if err := rows.Scan(&id, &wid, &direction, &e.Amount, &refID, &e.Succeeded, &e.OccurredAt); err != nil {
			return nil, err
		}
		e.ID = id.String()
		e.WalletID = wid.String()
		e.ReferenceID = refID.String()
		e.Direction = Direction(direction)
		e.OccurredAt = e.OccurredAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ Reader = (*PostgresReader)(nil)
