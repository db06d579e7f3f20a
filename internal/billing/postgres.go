package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists payments and receipts.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

func (s *PostgresStore) CreatePayment(ctx context.Context, p *Payment) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.Pool.QueryRow(queryCtx, `
		INSERT INTO payments (id, unit_id, owner_id, account_id, period, amount, method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, p.ID, p.UnitID, p.OwnerID, p.AccountID, p.Period, p.Amount, p.Method, string(p.Status)).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPayment(ctx context.Context, id string) (*Payment, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Payment
	var status string
	err := s.Pool.QueryRow(queryCtx, `
		SELECT id, unit_id, owner_id, account_id, period, amount, method, status, created_at
		FROM payments
		WHERE id = $1
	`, id).Scan(&p.ID, &p.UnitID, &p.OwnerID, &p.AccountID, &p.Period, &p.Amount, &p.Method, &status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	p.Status = Status(status)
	return &p, nil
}

// UpdatePaymentStatus applies a lifecycle transition with a guarded update
// so two concurrent confirmations cannot both win.
func (s *PostgresStore) UpdatePaymentStatus(ctx context.Context, id string, from, to Status) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := s.Pool.Exec(queryCtx, `
		UPDATE payments SET status = $1 WHERE id = $2 AND status = $3
	`, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &InvalidTransitionError{From: from, To: to, PaymentID: id}
	}
	return nil
}

func (s *PostgresStore) ListPayments(ctx context.Context, f PaymentFilter) ([]*Payment, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT id, unit_id, owner_id, account_id, period, amount, method, status, created_at
		FROM payments
		WHERE 1=1
	`
	var args []interface{}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		query += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}
	if f.UnitID != "" {
		args = append(args, f.UnitID)
		query += fmt.Sprintf(" AND unit_id = $%d", len(args))
	}
	if f.Period != "" {
		args = append(args, f.Period)
		query += fmt.Sprintf(" AND period = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.Pool.Query(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		var p Payment
		var status string
		err := rows.Scan(&p.ID, &p.UnitID, &p.OwnerID, &p.AccountID, &p.Period, &p.Amount, &p.Method, &status, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Status = Status(status)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateReceipt(ctx context.Context, r *Receipt) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.Pool.QueryRow(queryCtx, `
		INSERT INTO receipts (id, payment_id, number, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING issued_at
	`, r.ID, r.PaymentID, r.Number, r.Amount).Scan(&r.IssuedAt)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// NextReceiptNumber allocates the next value of the receipt sequence.
func (s *PostgresStore) NextReceiptNumber(ctx context.Context) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int64
	err := s.Pool.QueryRow(queryCtx, `SELECT nextval('receipt_number_seq')`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to advance receipt sequence: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListReceipts(ctx context.Context, limit, offset int) ([]*Receipt, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT id, payment_id, number, amount, issued_at
		FROM receipts
		ORDER BY issued_at DESC
	`
	var args []interface{}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.Pool.Query(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var out []*Receipt
	for rows.Next() {
		var r Receipt
		if err := rows.Scan(&r.ID, &r.PaymentID, &r.Number, &r.Amount, &r.IssuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
