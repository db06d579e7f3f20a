package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/condo-admin/internal/events"
)

// Store is the persistence surface the service needs. *PostgresStore
// satisfies it; tests plug in memory fakes.
type Store interface {
	CreateAccount(ctx context.Context, a *Account) (*Account, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	ListAccounts(ctx context.Context, filter AccountFilter) ([]*Account, error)
	InsertMovement(ctx context.Context, m *Movement) error
	ListMovements(ctx context.Context, accountID string) ([]Movement, error)
}

// Service provides the high-level API for current accounts: account
// management, movement ingestion, and statement reconciliation.
type Service struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService creates a new current-account service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// WithEvents attaches a publisher for movement events. Publication is
// best-effort; a broker outage must not fail the movement itself.
func (s *Service) WithEvents(p events.Publisher, l *slog.Logger) *Service {
	s.publisher = p
	s.logger = l
	return s
}

// CreateAccountRequest represents the request to open a current account.
type CreateAccountRequest struct {
	OwnerID        string          `json:"owner_id"`
	Description    string          `json:"description"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// CreateAccount opens a current account for an owner. The opening balance
// may be negative (an owner can start overdrawn).
func (s *Service) CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	if req.OwnerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}

	account := &Account{
		ID:             uuid.NewString(),
		OwnerID:        req.OwnerID,
		Description:    req.Description,
		OpeningBalance: req.OpeningBalance,
	}

	account, err := s.store.CreateAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// GetAccount retrieves a current account by ID.
func (s *Service) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account ID is required")
	}
	return s.store.GetAccount(ctx, accountID)
}

// ListAccounts retrieves current accounts with optional filtering.
func (s *Service) ListAccounts(ctx context.Context, filter AccountFilter) ([]*Account, error) {
	return s.store.ListAccounts(ctx, filter)
}

// RecordMovementRequest represents the request to append one movement.
type RecordMovementRequest struct {
	AccountID   string          `json:"account_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
}

// RecordMovement validates and appends a movement to an account. The kind
// is normalized on ingestion; values other than debit/credit are rejected
// here so bad data never enters the store, even though Reconcile itself
// tolerates them in data that predates this check.
func (s *Service) RecordMovement(ctx context.Context, req RecordMovementRequest) (*Movement, error) {
	if req.AccountID == "" {
		return nil, fmt.Errorf("account ID is required")
	}

	kind, ok := ParseKind(req.Kind)
	if !ok {
		return nil, fmt.Errorf("invalid movement kind: %q", req.Kind)
	}

	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	m := &Movement{
		ID:          uuid.NewString(),
		AccountID:   req.AccountID,
		Date:        date,
		Description: req.Description,
		Kind:        kind,
		Amount:      req.Amount,
	}

	if err := s.store.InsertMovement(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}

	if s.publisher != nil {
		e, err := events.New("movement.recorded", map[string]interface{}{
			"movement_id": m.ID,
			"account_id":  m.AccountID,
			"kind":        string(m.Kind),
			"amount":      m.Amount,
		})
		if err == nil {
			err = s.publisher.Publish(ctx, e)
		}
		if err != nil && s.logger != nil {
			s.logger.Warn("failed to publish movement event", "movement_id", m.ID, "error", err)
		}
	}

	return m, nil
}

// Statement fetches an account and its movements and reconciles them in
// one pass. The on-screen table, the CSV export, and the printable view
// are all fed from this single result so they can never drift apart.
func (s *Service) Statement(ctx context.Context, accountID string) (*Account, Reconciliation, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, Reconciliation{}, err
	}

	movements, err := s.store.ListMovements(ctx, accountID)
	if err != nil {
		return nil, Reconciliation{}, fmt.Errorf("failed to list movements: %w", err)
	}

	return account, Reconcile(account.OpeningBalance, movements), nil
}
