package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists current accounts and their movements.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

// ErrAccountNotFound is returned when an account lookup matches no row.
var ErrAccountNotFound = errors.New("account not found")

// CreateAccount inserts a new current account for an owner.
func (s *PostgresStore) CreateAccount(ctx context.Context, a *Account) (*Account, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.Pool.QueryRow(queryCtx, `
		INSERT INTO current_accounts (id, owner_id, description, opening_balance)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, description, opening_balance, created_at
	`, a.ID, a.OwnerID, a.Description, a.OpeningBalance).Scan(
		&a.ID, &a.OwnerID, &a.Description, &a.OpeningBalance, &a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	return a, nil
}

// GetAccount retrieves a current account by ID.
func (s *PostgresStore) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var a Account
	err := s.Pool.QueryRow(queryCtx, `
		SELECT id, owner_id, description, opening_balance, created_at
		FROM current_accounts
		WHERE id = $1
	`, accountID).Scan(&a.ID, &a.OwnerID, &a.Description, &a.OpeningBalance, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &a, nil
}

// AccountFilter narrows ListAccounts results.
type AccountFilter struct {
	OwnerID string
	Limit   int
	Offset  int
}

// ListAccounts retrieves current accounts, optionally restricted to one owner.
func (s *PostgresStore) ListAccounts(ctx context.Context, filter AccountFilter) ([]*Account, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT id, owner_id, description, opening_balance, created_at
		FROM current_accounts
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filter.OwnerID != "" {
		query += fmt.Sprintf(" AND owner_id = $%d", argCount)
		args = append(args, filter.OwnerID)
		argCount++
	}

	query += " ORDER BY created_at"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
		argCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filter.Offset)
	}

	rows, err := s.Pool.Query(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Description, &a.OpeningBalance, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &a)
	}

	return accounts, rows.Err()
}

// InsertMovement appends a movement to an account. The bigserial seq column
// fixes the insertion order that Statement later replays; concurrent inserts
// are retried on serialization failure.
func (s *PostgresStore) InsertMovement(ctx context.Context, m *Movement) error {
	const maxRetries = 3

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := s.insertMovementTx(ctx, m)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "40001" {
				// Serialization failure, retry
				if attempt == maxRetries-1 {
					return fmt.Errorf("failed to insert movement after %d retries: %w", maxRetries, err)
				}
				time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
				continue
			}
			return err
		}
		break
	}

	return nil
}

func (s *PostgresStore) insertMovementTx(ctx context.Context, m *Movement) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := s.Pool.Acquire(queryCtx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(queryCtx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(queryCtx)

	var exists bool
	err = tx.QueryRow(queryCtx,
		"SELECT EXISTS(SELECT 1 FROM current_accounts WHERE id = $1 FOR UPDATE)",
		m.AccountID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to lock account: %w", err)
	}
	if !exists {
		return ErrAccountNotFound
	}

	_, err = tx.Exec(queryCtx, `
		INSERT INTO movements (id, account_id, effective_date, description, kind, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.AccountID, m.Date, m.Description, string(m.Kind), m.Amount)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}

	if err := tx.Commit(queryCtx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListMovements returns every movement of an account in insertion order.
// The seq column, not the effective date, decides the order: statements
// replay movements exactly as they arrived.
func (s *PostgresStore) ListMovements(ctx context.Context, accountID string) ([]Movement, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.Pool.Query(queryCtx, `
		SELECT id, account_id, effective_date, description, kind, amount
		FROM movements
		WHERE account_id = $1
		ORDER BY seq ASC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		var kind string
		if err := rows.Scan(&m.ID, &m.AccountID, &m.Date, &m.Description, &kind, &m.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		if k, ok := ParseKind(kind); ok {
			m.Kind = k
		} else {
			m.Kind = Kind(kind)
		}
		movements = append(movements, m)
	}

	return movements, rows.Err()
}
