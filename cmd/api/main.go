package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/example/condo-admin/internal/api"
	"github.com/example/condo-admin/internal/billing"
	"github.com/example/condo-admin/internal/config"
	"github.com/example/condo-admin/internal/directory"
	"github.com/example/condo-admin/internal/events"
	"github.com/example/condo-admin/internal/ledger"
	"github.com/example/condo-admin/internal/security"
	"github.com/example/condo-admin/internal/session"
	"github.com/example/condo-admin/internal/storage"
	"github.com/example/condo-admin/pkg/audit"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	allowlist, err := security.ParseCIDRAllowlist(cfg.AllowedCIDRs)
	if err != nil {
		logger.Error("invalid ALLOWED_CIDRS", "error", err)
		os.Exit(1)
	}

	if err := storage.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var redisClient *redis.Client
	var denylist session.Denylist
	var rateLimiter *security.RedisTokenBucket
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer redisClient.Close()

		denylist = &session.RedisDenylist{Redis: redisClient}
		rateLimiter = &security.RedisTokenBucket{
			Redis:      redisClient,
			Prefix:     "condo_admin",
			Capacity:   cfg.RateLimitBurst,
			RefillRate: cfg.RateLimitPerSec,
		}
	}

	keySet, err := session.NewKeySet()
	if err != nil {
		logger.Error("failed to create keyset", "error", err)
		os.Exit(1)
	}

	userStore := &session.PostgresUserStore{Pool: pool}
	sessions := &session.Manager{
		Store:    userStore,
		Keys:     keySet,
		Denylist: denylist,
		Issuer:   cfg.SessionIssuer,
		TokenTTL: cfg.SessionTTL,
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
	}

	ledgerSvc := ledger.NewService(ledger.NewPostgresStore(pool)).WithEvents(publisher, logger)
	directorySvc := directory.NewService(directory.NewPostgresStore(pool))
	billingSvc := billing.NewService(billing.NewPostgresStore(pool), ledgerSvc, publisher, logger)

	router, err := api.NewRouter(api.Dependencies{
		Logger:       logger,
		Sessions:     sessions,
		Directory:    directorySvc,
		Ledger:       ledgerSvc,
		Billing:      billingSvc,
		Users:        userStore,
		Auditor:      audit.NewTrail(),
		RateLimiter:  rateLimiter,
		IPAllowlist:  allowlist,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		logger.Error("failed to listen", "error", err)
		os.Exit(1)
	}

	tlsCfg := security.TLSConfig{
		CertFile: cfg.TLSCertFile,
		KeyFile:  cfg.TLSKeyFile,
		CAFile:   cfg.TLSCAFile,
	}
	if tlsCfg.Enabled() {
		serverTLS, err := security.LoadServerTLSConfig(tlsCfg)
		if err != nil {
			logger.Error("failed to load TLS config", "error", err)
			os.Exit(1)
		}
		srv.TLSConfig = serverTLS
		ln = tls.NewListener(ln, serverTLS)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logger.Info("condo admin api listening", "addr", cfg.ListenAddr, "tls", tlsCfg.Enabled())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
