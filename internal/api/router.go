package api

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/condo-admin/internal/billing"
	"github.com/example/condo-admin/internal/directory"
	"github.com/example/condo-admin/internal/ledger"
	"github.com/example/condo-admin/internal/security"
	"github.com/example/condo-admin/internal/session"
)

// Permission strings carried in session tokens and required per route group.
const (
	PermDirectoryRead  = "directory:read"
	PermDirectoryWrite = "directory:write"
	PermAccountsRead   = "accounts:read"
	PermAccountsWrite  = "accounts:write"
	PermPaymentsRead   = "payments:read"
	PermPaymentsWrite  = "payments:write"
	PermUsersManage    = "users:manage"
)

type Dependencies struct {
	Logger    *slog.Logger
	Sessions  *session.Manager
	Directory *directory.Service
	Ledger    *ledger.Service
	Billing   *billing.Service
	Users     UserAdmin

	Auditor      Auditor
	RateLimiter  *security.RedisTokenBucket
	IPAllowlist  []*net.IPNet
	MaxBodyBytes int64
}

func rateLimitKeyByIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func NewRouter(deps Dependencies) (http.Handler, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	validators := map[string]*security.JSONSchemaValidator{}
	for name, schema := range map[string]string{
		"login":       loginSchema,
		"condominium": createCondominiumSchema,
		"building":    createBuildingSchema,
		"unit":        createUnitSchema,
		"owner":       createOwnerSchema,
		"tenant":      createTenantSchema,
		"account":     createAccountSchema,
		"movement":    recordMovementSchema,
		"payment":     createPaymentSchema,
		"user":        createUserSchema,
	} {
		v, err := security.NewJSONSchemaValidator(schema)
		if err != nil {
			return nil, err
		}
		validators[name] = v
	}

	onAuthError := func(w http.ResponseWriter, r *http.Request, status int, code string) {
		security.WriteJSONError(w, r, status, code)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(security.CorrelationID)
	r.Use(RequestLogger(deps.Logger))
	r.Use(security.BodySizeLimit(deps.MaxBodyBytes))
	r.Use(security.IPAllowlist(deps.IPAllowlist))
	if deps.RateLimiter != nil {
		r.Use(security.RateLimitMiddleware(deps.RateLimiter, rateLimitKeyByIP))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.With(validators["login"].Middleware).Post("/auth/login", handleLogin(deps))

	r.Route("/v1", func(r chi.Router) {
		r.Use(session.Authenticate(deps.Sessions, onAuthError))
		if deps.Auditor != nil {
			r.Use(AuditMiddleware(deps.Auditor))
		}

		r.Post("/auth/logout", handleLogout(deps))
		r.Get("/auth/me", handleMe(deps))

		read := func(r chi.Router, perm string) chi.Router {
			return r.With(session.RequirePermissions(onAuthError, perm))
		}

		write := func(r chi.Router, perm string, v *security.JSONSchemaValidator) chi.Router {
			return r.With(session.RequirePermissions(onAuthError, perm), v.Middleware)
		}

		r.Route("/condominiums", func(r chi.Router) {
			read(r, PermDirectoryRead).Get("/", handleListCondominiums(deps))
			write(r, PermDirectoryWrite, validators["condominium"]).Post("/", handleCreateCondominium(deps))
			write(r, PermDirectoryWrite, validators["condominium"]).Put("/{condominiumID}", handleUpdateCondominium(deps))
			r.With(session.RequirePermissions(onAuthError, PermDirectoryWrite)).
				Delete("/{condominiumID}", handleDeleteCondominium(deps))
		})
		r.Route("/buildings", func(r chi.Router) {
			read(r, PermDirectoryRead).Get("/", handleListBuildings(deps))
			write(r, PermDirectoryWrite, validators["building"]).Post("/", handleCreateBuilding(deps))
			write(r, PermDirectoryWrite, validators["building"]).Put("/{buildingID}", handleUpdateBuilding(deps))
			r.With(session.RequirePermissions(onAuthError, PermDirectoryWrite)).
				Delete("/{buildingID}", handleDeleteBuilding(deps))
		})
		r.Route("/units", func(r chi.Router) {
			read(r, PermDirectoryRead).Get("/", handleListUnits(deps))
			write(r, PermDirectoryWrite, validators["unit"]).Post("/", handleCreateUnit(deps))
			write(r, PermDirectoryWrite, validators["unit"]).Put("/{unitID}", handleUpdateUnit(deps))
			r.With(session.RequirePermissions(onAuthError, PermDirectoryWrite)).
				Delete("/{unitID}", handleDeleteUnit(deps))
		})
		r.Route("/owners", func(r chi.Router) {
			read(r, PermDirectoryRead).Get("/", handleListOwners(deps))
			read(r, PermDirectoryRead).Get("/{ownerID}", handleGetOwner(deps))
			write(r, PermDirectoryWrite, validators["owner"]).Post("/", handleCreateOwner(deps))
			write(r, PermDirectoryWrite, validators["owner"]).Put("/{ownerID}", handleUpdateOwner(deps))
			r.With(session.RequirePermissions(onAuthError, PermDirectoryWrite)).
				Delete("/{ownerID}", handleDeleteOwner(deps))
		})
		r.Route("/tenants", func(r chi.Router) {
			read(r, PermDirectoryRead).Get("/", handleListTenants(deps))
			write(r, PermDirectoryWrite, validators["tenant"]).Post("/", handleCreateTenant(deps))
			write(r, PermDirectoryWrite, validators["tenant"]).Put("/{tenantID}", handleUpdateTenant(deps))
			r.With(session.RequirePermissions(onAuthError, PermDirectoryWrite)).
				Delete("/{tenantID}", handleDeleteTenant(deps))
		})

		r.Route("/accounts", func(r chi.Router) {
			read(r, PermAccountsRead).Get("/", handleListAccounts(deps))
			read(r, PermAccountsRead).Get("/{accountID}", handleGetAccount(deps))
			read(r, PermAccountsRead).Get("/{accountID}/statement", handleStatement(deps))
			write(r, PermAccountsWrite, validators["account"]).Post("/", handleCreateAccount(deps))
			write(r, PermAccountsWrite, validators["movement"]).Post("/{accountID}/movements", handleRecordMovement(deps))
		})

		r.Route("/payments", func(r chi.Router) {
			read(r, PermPaymentsRead).Get("/", handleListPayments(deps))
			read(r, PermPaymentsRead).Get("/{paymentID}", handleGetPayment(deps))
			write(r, PermPaymentsWrite, validators["payment"]).Post("/", handleCreatePayment(deps))
			r.With(session.RequirePermissions(onAuthError, PermPaymentsWrite)).
				Post("/{paymentID}/confirm", handleConfirmPayment(deps))
			r.With(session.RequirePermissions(onAuthError, PermPaymentsWrite)).
				Post("/{paymentID}/cancel", handleCancelPayment(deps))
		})

		read(r, PermPaymentsRead).Get("/receipts", handleListReceipts(deps))

		r.Route("/users", func(r chi.Router) {
			read(r, PermUsersManage).Get("/", handleListUsers(deps))
			write(r, PermUsersManage, validators["user"]).Post("/", handleCreateUser(deps))
		})
		read(r, PermUsersManage).Get("/roles", handleListRoles(deps))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return r, nil
}
