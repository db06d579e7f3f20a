package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	accounts  map[string]*Account
	movements map[string][]Movement
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts:  map[string]*Account{},
		movements: map[string][]Movement{},
	}
}

func (m *memoryStore) CreateAccount(ctx context.Context, a *Account) (*Account, error) {
	a.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	m.accounts[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAccounts(ctx context.Context, filter AccountFilter) ([]*Account, error) {
	var out []*Account
	for _, a := range m.accounts {
		if filter.OwnerID != "" && a.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryStore) InsertMovement(ctx context.Context, mov *Movement) error {
	if _, ok := m.accounts[mov.AccountID]; !ok {
		return ErrAccountNotFound
	}
	m.movements[mov.AccountID] = append(m.movements[mov.AccountID], *mov)
	return nil
}

func (m *memoryStore) ListMovements(ctx context.Context, accountID string) ([]Movement, error) {
	return m.movements[accountID], nil
}

func TestServiceCreateAccountRequiresOwner(t *testing.T) {
	svc := NewService(newMemoryStore())

	_, err := svc.CreateAccount(context.Background(), CreateAccountRequest{})
	assert.Error(t, err)
}

func TestServiceRecordMovementValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryStore())

	account, err := svc.CreateAccount(ctx, CreateAccountRequest{
		OwnerID:        "owner-1",
		OpeningBalance: dec("0"),
	})
	require.NoError(t, err)

	_, err = svc.RecordMovement(ctx, RecordMovementRequest{
		AccountID: account.ID,
		Kind:      "transfer",
		Amount:    dec("10"),
	})
	assert.ErrorContains(t, err, "invalid movement kind")

	_, err = svc.RecordMovement(ctx, RecordMovementRequest{
		AccountID: account.ID,
		Kind:      "debit",
		Amount:    dec("-10"),
	})
	assert.ErrorContains(t, err, "must not be negative")

	_, err = svc.RecordMovement(ctx, RecordMovementRequest{
		Kind:   "debit",
		Amount: dec("10"),
	})
	assert.ErrorContains(t, err, "account ID is required")
}

func TestServiceStatement(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryStore())

	account, err := svc.CreateAccount(ctx, CreateAccountRequest{
		OwnerID:        "owner-1",
		Description:    "quotas bloco A",
		OpeningBalance: dec("1000.00"),
	})
	require.NoError(t, err)

	// Legacy wire values normalize on ingestion.
	for _, m := range []struct {
		kind, amount string
	}{
		{"Debito", "200.00"},
		{"CREDITO", "50.00"},
		{"debit", "30.00"},
	} {
		_, err = svc.RecordMovement(ctx, RecordMovementRequest{
			AccountID: account.ID,
			Kind:      m.kind,
			Amount:    dec(m.amount),
		})
		require.NoError(t, err)
	}

	got, rec, err := svc.Statement(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	require.Len(t, rec.Movements, 3)
	assert.Equal(t, KindDebit, rec.Movements[0].Kind)
	assert.Equal(t, KindCredit, rec.Movements[1].Kind)
	assert.True(t, rec.Summary.ClosingBalance.Equal(dec("820.00")))
	assert.Empty(t, rec.Warnings)
}

func TestServiceStatementUnknownAccount(t *testing.T) {
	svc := NewService(newMemoryStore())

	_, _, err := svc.Statement(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
