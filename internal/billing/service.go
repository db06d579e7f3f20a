package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/condo-admin/internal/events"
	"github.com/example/condo-admin/internal/ledger"
)

// Store is the persistence surface for payments and receipts.
type Store interface {
	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id string) (*Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, from, to Status) error
	ListPayments(ctx context.Context, f PaymentFilter) ([]*Payment, error)

	CreateReceipt(ctx context.Context, r *Receipt) error
	NextReceiptNumber(ctx context.Context) (int64, error)
	ListReceipts(ctx context.Context, limit, offset int) ([]*Receipt, error)
}

// Ledger is the slice of the current-account service billing needs.
type Ledger interface {
	RecordMovement(ctx context.Context, req ledger.RecordMovementRequest) (*ledger.Movement, error)
}

// ErrPaymentNotFound is returned when a payment lookup matches no row.
var ErrPaymentNotFound = errors.New("payment not found")

var periodRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Service posts payments, drives their lifecycle, and issues receipts.
type Service struct {
	store     Store
	ledger    Ledger
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService creates a billing service. Publisher and logger may be nil.
func NewService(store Store, ldg Ledger, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, ledger: ldg, publisher: publisher, logger: logger}
}

// CreatePaymentRequest reports a quota payment for a unit.
type CreatePaymentRequest struct {
	UnitID    string          `json:"unit_id"`
	OwnerID   string          `json:"owner_id"`
	AccountID string          `json:"account_id"`
	Period    string          `json:"period"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
}

// CreatePayment records a pending payment.
func (s *Service) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	if req.UnitID == "" || req.OwnerID == "" || req.AccountID == "" {
		return nil, fmt.Errorf("unit, owner and account IDs are required")
	}
	if !periodRe.MatchString(req.Period) {
		return nil, fmt.Errorf("period must be YYYY-MM, got %q", req.Period)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	p := &Payment{
		ID:        uuid.NewString(),
		UnitID:    req.UnitID,
		OwnerID:   req.OwnerID,
		AccountID: req.AccountID,
		Period:    req.Period,
		Amount:    req.Amount,
		Method:    req.Method,
		Status:    StatusPending,
	}

	if err := s.store.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.publish(ctx, "payment.recorded", map[string]interface{}{
		"payment_id": p.ID,
		"unit_id":    p.UnitID,
		"owner_id":   p.OwnerID,
		"period":     p.Period,
		"amount":     p.Amount,
	})

	return p, nil
}

// ConfirmPayment moves a pending payment to CONFIRMED, issues its receipt,
// and credits the owner's current account. The credit is the only way a
// payment ever reaches the ledger, so statement and receipts always agree.
func (s *Service) ConfirmPayment(ctx context.Context, paymentID, confirmedBy string) (*Receipt, error) {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(p.Status, StatusConfirmed) {
		return nil, &InvalidTransitionError{From: p.Status, To: StatusConfirmed, PaymentID: p.ID}
	}

	if err := s.store.UpdatePaymentStatus(ctx, p.ID, p.Status, StatusConfirmed); err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	number, err := s.store.NextReceiptNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate receipt number: %w", err)
	}

	receipt := &Receipt{
		ID:        uuid.NewString(),
		PaymentID: p.ID,
		Number:    fmt.Sprintf("RC-%06d", number),
		Amount:    p.Amount,
	}
	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("failed to issue receipt: %w", err)
	}

	_, err = s.ledger.RecordMovement(ctx, ledger.RecordMovementRequest{
		AccountID:   p.AccountID,
		Date:        time.Now().UTC(),
		Description: fmt.Sprintf("Payment %s quota %s", receipt.Number, p.Period),
		Kind:        string(ledger.KindCredit),
		Amount:      p.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to credit current account: %w", err)
	}

	s.publish(ctx, "payment.confirmed", map[string]interface{}{
		"payment_id":   p.ID,
		"receipt":      receipt.Number,
		"amount":       p.Amount,
		"confirmed_by": confirmedBy,
	})

	return receipt, nil
}

// CancelPayment moves a pending payment to CANCELLED.
func (s *Service) CancelPayment(ctx context.Context, paymentID, cancelledBy string) error {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	if !CanTransition(p.Status, StatusCancelled) {
		return &InvalidTransitionError{From: p.Status, To: StatusCancelled, PaymentID: p.ID}
	}

	if err := s.store.UpdatePaymentStatus(ctx, p.ID, p.Status, StatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel payment: %w", err)
	}

	s.publish(ctx, "payment.cancelled", map[string]interface{}{
		"payment_id":   p.ID,
		"cancelled_by": cancelledBy,
	})

	return nil
}

// GetPayment retrieves a payment by ID.
func (s *Service) GetPayment(ctx context.Context, id string) (*Payment, error) {
	if id == "" {
		return nil, fmt.Errorf("payment ID is required")
	}
	return s.store.GetPayment(ctx, id)
}

// ListPayments retrieves payments with optional filtering.
func (s *Service) ListPayments(ctx context.Context, f PaymentFilter) ([]*Payment, error) {
	return s.store.ListPayments(ctx, f)
}

// ListReceipts retrieves issued receipts, newest first.
func (s *Service) ListReceipts(ctx context.Context, limit, offset int) ([]*Receipt, error) {
	return s.store.ListReceipts(ctx, limit, offset)
}

// publish sends an event best-effort; a broker outage must not fail the
// payment itself.
func (s *Service) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	e, err := events.New(eventType, payload)
	if err != nil {
		s.logger.Warn("failed to build event", "type", eventType, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "type", eventType, "error", err)
	}
}
