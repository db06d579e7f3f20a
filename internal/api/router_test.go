package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/condo-admin/internal/billing"
	"github.com/example/condo-admin/internal/directory"
	"github.com/example/condo-admin/internal/events"
	"github.com/example/condo-admin/internal/ledger"
	"github.com/example/condo-admin/internal/session"
	"github.com/example/condo-admin/pkg/audit"
)

type memLedgerStore struct {
	mu        sync.Mutex
	accounts  map[string]*ledger.Account
	movements map[string][]ledger.Movement
}

func newMemLedgerStore() *memLedgerStore {
	return &memLedgerStore{
		accounts:  map[string]*ledger.Account{},
		movements: map[string][]ledger.Movement{},
	}
}

func (s *memLedgerStore) CreateAccount(_ context.Context, a *ledger.Account) (*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return a, nil
}

func (s *memLedgerStore) GetAccount(_ context.Context, id string) (*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	return a, nil
}

func (s *memLedgerStore) ListAccounts(_ context.Context, _ ledger.AccountFilter) ([]*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ledger.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (s *memLedgerStore) InsertMovement(_ context.Context, m *ledger.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[m.AccountID]; !ok {
		return ledger.ErrAccountNotFound
	}
	s.movements[m.AccountID] = append(s.movements[m.AccountID], *m)
	return nil
}

func (s *memLedgerStore) ListMovements(_ context.Context, accountID string) ([]ledger.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ledger.Movement(nil), s.movements[accountID]...), nil
}

type memDirectoryStore struct {
	mu           sync.Mutex
	condominiums map[string]*directory.Condominium
	buildings    map[string]*directory.Building
	units        map[string]*directory.Unit
	owners       map[string]*directory.Owner
	tenants      map[string]*directory.Tenant
}

func newMemDirectoryStore() *memDirectoryStore {
	return &memDirectoryStore{
		condominiums: map[string]*directory.Condominium{},
		buildings:    map[string]*directory.Building{},
		units:        map[string]*directory.Unit{},
		owners:       map[string]*directory.Owner{},
		tenants:      map[string]*directory.Tenant{},
	}
}

func (s *memDirectoryStore) CreateCondominium(_ context.Context, c *directory.Condominium) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.condominiums[c.ID] = c
	return nil
}

func (s *memDirectoryStore) ListCondominiums(_ context.Context, _ directory.ListFilter) ([]*directory.Condominium, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*directory.Condominium, 0, len(s.condominiums))
	for _, c := range s.condominiums {
		out = append(out, c)
	}
	return out, nil
}

func (s *memDirectoryStore) GetCondominium(_ context.Context, id string) (*directory.Condominium, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.condominiums[id]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return c, nil
}

func (s *memDirectoryStore) CreateBuilding(_ context.Context, b *directory.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildings[b.ID] = b
	return nil
}

func (s *memDirectoryStore) ListBuildings(_ context.Context, _ directory.ListFilter) ([]*directory.Building, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*directory.Building, 0, len(s.buildings))
	for _, b := range s.buildings {
		out = append(out, b)
	}
	return out, nil
}

func (s *memDirectoryStore) CreateUnit(_ context.Context, u *directory.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[u.ID] = u
	return nil
}

func (s *memDirectoryStore) ListUnits(_ context.Context, _ directory.ListFilter) ([]*directory.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*directory.Unit, 0, len(s.units))
	for _, u := range s.units {
		out = append(out, u)
	}
	return out, nil
}

func (s *memDirectoryStore) CreateOwner(_ context.Context, o *directory.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[o.ID] = o
	return nil
}

func (s *memDirectoryStore) ListOwners(_ context.Context, _ directory.ListFilter) ([]*directory.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*directory.Owner, 0, len(s.owners))
	for _, o := range s.owners {
		out = append(out, o)
	}
	return out, nil
}

func (s *memDirectoryStore) GetOwner(_ context.Context, id string) (*directory.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.owners[id]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return o, nil
}

func (s *memDirectoryStore) CreateTenant(_ context.Context, t *directory.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = t
	return nil
}

func (s *memDirectoryStore) ListTenants(_ context.Context, _ directory.ListFilter) ([]*directory.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*directory.Tenant, 0, len(s.tenants))
	for _, tn := range s.tenants {
		out = append(out, tn)
	}
	return out, nil
}

func (s *memDirectoryStore) UpdateCondominium(_ context.Context, c *directory.Condominium) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.condominiums[c.ID]; !ok {
		return directory.ErrNotFound
	}
	s.condominiums[c.ID] = c
	return nil
}

func (s *memDirectoryStore) DeleteCondominium(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.condominiums[id]; !ok {
		return directory.ErrNotFound
	}
	for _, b := range s.buildings {
		if b.CondominiumID == id {
			return directory.ErrInUse
		}
	}
	delete(s.condominiums, id)
	return nil
}

func (s *memDirectoryStore) UpdateBuilding(_ context.Context, b *directory.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buildings[b.ID]; !ok {
		return directory.ErrNotFound
	}
	s.buildings[b.ID] = b
	return nil
}

func (s *memDirectoryStore) DeleteBuilding(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buildings[id]; !ok {
		return directory.ErrNotFound
	}
	for _, u := range s.units {
		if u.BuildingID == id {
			return directory.ErrInUse
		}
	}
	delete(s.buildings, id)
	return nil
}

func (s *memDirectoryStore) UpdateUnit(_ context.Context, u *directory.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[u.ID]; !ok {
		return directory.ErrNotFound
	}
	s.units[u.ID] = u
	return nil
}

func (s *memDirectoryStore) DeleteUnit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[id]; !ok {
		return directory.ErrNotFound
	}
	delete(s.units, id)
	return nil
}

func (s *memDirectoryStore) UpdateOwner(_ context.Context, o *directory.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[o.ID]; !ok {
		return directory.ErrNotFound
	}
	s.owners[o.ID] = o
	return nil
}

func (s *memDirectoryStore) DeleteOwner(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[id]; !ok {
		return directory.ErrNotFound
	}
	for _, u := range s.units {
		if u.OwnerID == id {
			return directory.ErrInUse
		}
	}
	delete(s.owners, id)
	return nil
}

func (s *memDirectoryStore) UpdateTenant(_ context.Context, t *directory.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[t.ID]; !ok {
		return directory.ErrNotFound
	}
	s.tenants[t.ID] = t
	return nil
}

func (s *memDirectoryStore) DeleteTenant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[id]; !ok {
		return directory.ErrNotFound
	}
	delete(s.tenants, id)
	return nil
}

type memBillingStore struct {
	mu       sync.Mutex
	payments map[string]*billing.Payment
	receipts []*billing.Receipt
	nextNum  int64
}

func newMemBillingStore() *memBillingStore {
	return &memBillingStore{payments: map[string]*billing.Payment{}}
}

func (s *memBillingStore) CreatePayment(_ context.Context, p *billing.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
	return nil
}

func (s *memBillingStore) GetPayment(_ context.Context, id string) (*billing.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, billing.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memBillingStore) UpdatePaymentStatus(_ context.Context, id string, from, to billing.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return billing.ErrPaymentNotFound
	}
	if p.Status != from {
		return &billing.InvalidTransitionError{From: p.Status, To: to}
	}
	p.Status = to
	return nil
}

func (s *memBillingStore) ListPayments(_ context.Context, _ billing.PaymentFilter) ([]*billing.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*billing.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memBillingStore) CreateReceipt(_ context.Context, r *billing.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, r)
	return nil
}

func (s *memBillingStore) NextReceiptNumber(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNum++
	return s.nextNum, nil
}

func (s *memBillingStore) ListReceipts(_ context.Context, _, _ int) ([]*billing.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*billing.Receipt(nil), s.receipts...), nil
}

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*session.User
	perms map[string][]string
}

func (s *memUserStore) GetUserByEmail(_ context.Context, email string) (*session.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, session.ErrUserNotFound
	}
	return u, nil
}

func (s *memUserStore) GetRolePermissions(_ context.Context, role string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perms[role], nil
}

func (s *memUserStore) CreateUser(_ context.Context, u *session.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Email] = u
	return nil
}

func (s *memUserStore) ListUsers(_ context.Context) ([]*session.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*session.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *memUserStore) ListRoles(_ context.Context) (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perms, nil
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (d *memDenylist) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = map[string]bool{}
	}
	d.revoked[tokenID] = true
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[tokenID], nil
}

type testEnv struct {
	handler http.Handler
	trail   *audit.Trail
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ks, err := session.NewKeySet()
	require.NoError(t, err)

	adminHash, err := session.HashPassword("s3cret")
	require.NoError(t, err)
	viewerHash, err := session.HashPassword("v1ewer")
	require.NoError(t, err)

	users := &memUserStore{
		users: map[string]*session.User{
			"ana@condo.example": {
				ID: "usr-admin", Email: "ana@condo.example", Name: "Ana",
				Role: "admin", PasswordHash: adminHash, IsActive: true,
			},
			"vera@condo.example": {
				ID: "usr-viewer", Email: "vera@condo.example", Name: "Vera",
				Role: "viewer", PasswordHash: viewerHash, IsActive: true,
			},
		},
		perms: map[string][]string{
			"admin": {
				PermDirectoryRead, PermDirectoryWrite,
				PermAccountsRead, PermAccountsWrite,
				PermPaymentsRead, PermPaymentsWrite,
				PermUsersManage,
			},
			"viewer": {PermDirectoryRead, PermAccountsRead, PermPaymentsRead},
		},
	}

	sessions := &session.Manager{
		Store:    users,
		Keys:     ks,
		Denylist: &memDenylist{},
		Issuer:   "condo-admin",
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledgerSvc := ledger.NewService(newMemLedgerStore())
	billingSvc := billing.NewService(newMemBillingStore(), ledgerSvc, events.NoopPublisher{}, logger)
	trail := audit.NewTrail()

	handler, err := NewRouter(Dependencies{
		Logger:    logger,
		Sessions:  sessions,
		Directory: directory.NewService(newMemDirectoryStore()),
		Ledger:    ledgerSvc,
		Billing:   billingSvc,
		Users:     users,
		Auditor:   trail,
	})
	require.NoError(t, err)

	return &testEnv{handler: handler, trail: trail}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/login", "",
		`{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Session.Token)
	return resp.Session.Token
}

func decodeID(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/login", "",
		`{"email":"ana@condo.example","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", "", `{"email":"ana@condo.example"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "schema requires password")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/v1/owners/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestViewerCannotWrite(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "vera@condo.example", "v1ewer")

	rec := env.do(t, http.MethodGet, "/v1/owners/", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/owners/", token, `{"name":"Carlos"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStatementFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ana@condo.example", "s3cret")

	rec := env.do(t, http.MethodPost, "/v1/owners/", token,
		`{"name":"Carlos Mendes","phone":"+244 923 000 111"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ownerID := decodeID(t, rec)

	rec = env.do(t, http.MethodPost, "/v1/accounts/", token,
		`{"owner_id":"`+ownerID+`","description":"Quota account","opening_balance":"1000"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	accountID := decodeID(t, rec)

	rec = env.do(t, http.MethodPost, "/v1/accounts/"+accountID+"/movements", token,
		`{"date":"2024-03-01","description":"Cleaning","kind":"debito","amount":"200"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/v1/accounts/"+accountID+"/movements", token,
		`{"date":"2024-03-05","description":"Quota March","kind":"credit","amount":"50"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/v1/accounts/"+accountID+"/statement", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stmt statementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stmt))
	assert.Equal(t, "1 000,00 Kz", stmt.OpeningBalance)
	assert.Equal(t, "200,00 Kz", stmt.TotalDebit)
	assert.Equal(t, "50,00 Kz", stmt.TotalCredit)
	assert.Equal(t, "850,00 Kz", stmt.ClosingBalance)
	require.Len(t, stmt.Lines, 2)
	assert.Equal(t, "800,00 Kz", stmt.Lines[0].RunningBalance)
	assert.Equal(t, "850,00 Kz", stmt.Lines[1].RunningBalance)

	rec = env.do(t, http.MethodGet, "/v1/accounts/"+accountID+"/statement?format=csv", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "Totals")

	rec = env.do(t, http.MethodGet, "/v1/accounts/"+accountID+"/statement?format=print", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestMovementValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ana@condo.example", "s3cret")

	rec := env.do(t, http.MethodPost, "/v1/owners/", token, `{"name":"Rita"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	ownerID := decodeID(t, rec)

	rec = env.do(t, http.MethodPost, "/v1/accounts/", token, `{"owner_id":"`+ownerID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	accountID := decodeID(t, rec)

	rec = env.do(t, http.MethodPost, "/v1/accounts/"+accountID+"/movements", token,
		`{"kind":"transfer","amount":"10"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown kind is rejected on ingestion")

	rec = env.do(t, http.MethodPost, "/v1/accounts/"+accountID+"/movements", token,
		`{"kind":"debit","amount":"-10"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/accounts/missing/movements", token,
		`{"kind":"debit","amount":"10"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ana@condo.example", "s3cret")

	rec := env.do(t, http.MethodPost, "/v1/owners/", token, `{"name":"Paula"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	ownerID := decodeID(t, rec)

	rec = env.do(t, http.MethodPost, "/v1/accounts/", token, `{"owner_id":"`+ownerID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	accountID := decodeID(t, rec)

	rec = env.do(t, http.MethodPost, "/v1/payments/", token,
		`{"unit_id":"unit-1","owner_id":"`+ownerID+`","account_id":"`+accountID+`","period":"2024-03","amount":"150","method":"cash"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	paymentID := decodeID(t, rec)

	rec = env.do(t, http.MethodPost, "/v1/payments/"+paymentID+"/confirm", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var receipt billing.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Equal(t, "RC-000001", receipt.Number)

	// Confirming twice is an invalid transition.
	rec = env.do(t, http.MethodPost, "/v1/payments/"+paymentID+"/confirm", token, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/payments/"+paymentID+"/cancel", token, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The confirmation credited the owner's account.
	rec = env.do(t, http.MethodGet, "/v1/accounts/"+accountID+"/statement", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stmt statementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stmt))
	assert.Equal(t, "150,00 Kz", stmt.TotalCredit)

	rec = env.do(t, http.MethodGet, "/v1/receipts", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ana@condo.example", "s3cret")

	rec := env.do(t, http.MethodGet, "/v1/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ana")

	rec = env.do(t, http.MethodPost, "/v1/auth/logout", token, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuditTrailRecordsActions(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ana@condo.example", "s3cret")

	rec := env.do(t, http.MethodPost, "/v1/owners/", token, `{"name":"Dina"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	entries := env.trail.Entries()
	require.NotEmpty(t, entries)
	assert.True(t, audit.VerifyChain(entries))

	last := entries[len(entries)-1]
	assert.Equal(t, "usr-admin", last.Actor)
	assert.Equal(t, http.MethodPost, last.Action)
	assert.Equal(t, "/v1/owners/", last.Entity)
}

func TestUserAdministration(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ana@condo.example", "s3cret")

	rec := env.do(t, http.MethodPost, "/v1/users/", token,
		`{"email":"novo@condo.example","name":"Nuno","role":"viewer","password":"longenough"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = env.do(t, http.MethodPost, "/v1/users/", token,
		`{"email":"x@condo.example","name":"X","role":"viewer","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "schema enforces minimum password length")

	rec = env.do(t, http.MethodGet, "/v1/users/", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "novo@condo.example")

	rec = env.do(t, http.MethodGet, "/v1/roles", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin")

	// The new viewer can log in but cannot manage users.
	viewerToken := env.login(t, "novo@condo.example", "longenough")
	rec = env.do(t, http.MethodGet, "/v1/users/", viewerToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDirectoryUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ana@condo.example", "s3cret")

	rec := env.do(t, http.MethodPost, "/v1/owners/", token, `{"name":"Dina Cardoso"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	ownerID := decodeID(t, rec)

	rec = env.do(t, http.MethodPut, "/v1/owners/"+ownerID, token,
		`{"name":"Dina Cardoso","phone":"+244 923 555 000"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/v1/owners/"+ownerID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "+244 923 555 000")

	rec = env.do(t, http.MethodPut, "/v1/owners/missing", token, `{"name":"Ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/condominiums/", token,
		`{"name":"Jardins do Talatona","city":"Luanda"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	condoID := decodeID(t, rec)

	rec = env.do(t, http.MethodPost, "/v1/buildings/", token,
		fmt.Sprintf(`{"condominium_id":%q,"name":"Bloco A","floors":4}`, condoID))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/condominiums/"+condoID, token, "")
	assert.Equal(t, http.StatusConflict, rec.Code, "condominium still has buildings")
	assert.Contains(t, rec.Body.String(), "in_use")

	rec = env.do(t, http.MethodDelete, "/v1/owners/"+ownerID, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	viewer := env.login(t, "vera@condo.example", "v1ewer")
	rec = env.do(t, http.MethodDelete, "/v1/condominiums/"+condoID, viewer, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnknownRouteEnvelope(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["error"])
}
