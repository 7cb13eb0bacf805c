package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "gymportal/internal/adapters/email"
	web "gymportal/internal/adapters/http"
	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/adapters/metrics"
	"gymportal/internal/adapters/storage"
	accountStore "gymportal/internal/adapters/storage/account"
	attendanceStore "gymportal/internal/adapters/storage/attendance"
	auditStore "gymportal/internal/adapters/storage/audit"
	branchStore "gymportal/internal/adapters/storage/branch"
	classStore "gymportal/internal/adapters/storage/class"
	membershipStore "gymportal/internal/adapters/storage/membership"
	outboxStorePkg "gymportal/internal/adapters/storage/outbox"
	passwordResetStore "gymportal/internal/adapters/storage/passwordreset"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/config"
	"gymportal/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const (
	outboxInterval       = 30 * time.Second
	purgeInterval        = time.Hour
	sessionSweepInterval = 10 * time.Minute
	resetRetention       = 7 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func setupLogging(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler).With("version", version))
}

func run(ctx context.Context, cfg config.Config) error {
	// WAL mode, foreign keys and a busy timeout for concurrent request goroutines.
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database_ready", "path", cfg.DBPath, "schema", storage.LatestSchemaVersion())

	m := metrics.New()
	timedDB := storage.NewTimedDB(db, m, cfg.SlowQuery)

	stores := web.Stores{
		Admins:      accountStore.NewAdminSQLiteStore(timedDB),
		Customers:   accountStore.NewCustomerSQLiteStore(timedDB),
		Branches:    branchStore.NewSQLiteStore(timedDB),
		Resets:      passwordResetStore.NewSQLiteStore(timedDB),
		Outbox:      outboxStorePkg.NewSQLiteStore(timedDB),
		Audit:       auditStore.NewSQLiteStore(timedDB),
		Memberships: membershipStore.NewSQLiteStore(timedDB),
		Attendance:  attendanceStore.NewSQLiteStore(timedDB),
		Classes:     classStore.NewSQLiteStore(timedDB),
	}
	recorder := &orchestrators.Recorder{Audit: stores.Audit, Metrics: m}

	if err := seed(ctx, cfg, stores, recorder); err != nil {
		return err
	}

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom, cfg.ReplyTo)
		slog.Info("email_sender_configured", "provider", "resend", "from", cfg.ResendFrom)
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_delivery_disabled", "reason", "GYM_RESEND_KEY is not set")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	processor := orchestrators.NewOutboxProcessor(stores.Outbox,
		map[string]orchestrators.ActionExecutor{outbox.ActionTypeEmail: &orchestrators.EmailExecutor{Sender: sender}}, m)
	stopOutbox := orchestrators.StartScheduler(ctx, "outbox", outboxInterval, func(ctx context.Context) error {
		res, err := processor.ProcessPending(ctx)
		if res.Succeeded+res.Failed > 0 {
			slog.Info("outbox_run", "succeeded", res.Succeeded, "failed", res.Failed, "deferred", res.Deferred)
		}
		return err
	})
	defer stopOutbox()
	stopPurge := orchestrators.StartScheduler(ctx, "purge_resets", purgeInterval, func(ctx context.Context) error {
		_, err := orchestrators.ExecutePurgeExpiredResets(ctx, orchestrators.PurgeExpiredResetsDeps{
			Resets:    stores.Resets,
			Retention: resetRetention,
		})
		return err
	})
	defer stopPurge()

	sessions := middleware.NewMemorySessionStore()
	stopSweep := orchestrators.StartScheduler(ctx, "sweep_sessions", sessionSweepInterval, func(context.Context) error {
		if n := sessions.Sweep(); n > 0 {
			slog.Debug("sessions_swept", "count", n, "remaining", sessions.Len())
		}
		return nil
	})
	defer stopSweep()

	handler, err := web.NewMux(web.Deps{
		Stores:      stores,
		Sessions:    sessions,
		Remember:    middleware.NewRememberCookies(cfg.CookieHashKey, cfg.CookieBlockKey, cfg.IsProduction()),
		Metrics:     m,
		DB:          timedDB,
		Outbox:      processor,
		BaseURL:     cfg.BaseURL,
		CSRFKey:     cfg.CSRFKey,
		Secure:      cfg.IsProduction(),
		RateLimit:   cfg.RateLimit,
		SlowRequest: cfg.SlowRequest,
	})
	if err != nil {
		return fmt.Errorf("build handler: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "addr", cfg.Addr, "env", cfg.Env, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seed fills an empty database with the default branches and the bootstrap admin.
func seed(ctx context.Context, cfg config.Config, stores web.Stores, recorder *orchestrators.Recorder) error {
	if _, err := orchestrators.ExecuteSeedBranches(ctx, orchestrators.SeedBranchesDeps{Branches: stores.Branches}); err != nil {
		return fmt.Errorf("seed branches: %w", err)
	}
	_, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAdminInput{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, orchestrators.SeedAdminDeps{Admins: stores.Admins, Recorder: recorder})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
