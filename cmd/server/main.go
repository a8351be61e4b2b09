package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"shepherd/internal/adapters/email"
	web "shepherd/internal/adapters/http"
	"shepherd/internal/adapters/http/middleware"
	"shepherd/internal/adapters/http/perf"
	"shepherd/internal/adapters/storage"
	attendanceStore "shepherd/internal/adapters/storage/attendance"
	firstTimerStore "shepherd/internal/adapters/storage/firsttimer"
	followUpStore "shepherd/internal/adapters/storage/followup"
	memberStore "shepherd/internal/adapters/storage/member"
	serviceStore "shepherd/internal/adapters/storage/service"
	"shepherd/internal/application/orchestrators"
	"shepherd/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// WAL mode, foreign keys and busy timeout on every pooled connection
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(cfg.PerfRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)

	stores := web.Stores{
		ServiceStore:    serviceStore.NewSQLiteStore(timedDB),
		MemberStore:     memberStore.NewSQLiteStore(timedDB),
		AttendanceStore: attendanceStore.NewSQLiteStore(timedDB),
		FirstTimerStore: firstTimerStore.NewSQLiteStore(timedDB),
		FollowUpStore:   followUpStore.NewSQLiteStore(timedDB),
	}

	// Seed the catalog and follow-up taxonomy into empty stores
	var seed []byte
	if cfg.SeedFile != "" {
		if seed, err = os.ReadFile(cfg.SeedFile); err != nil {
			log.Fatalf("failed to read seed file: %v", err)
		}
	}
	seedDeps := orchestrators.SeedCatalogDeps{ServiceStore: stores.ServiceStore, FollowUpStore: stores.FollowUpStore}
	if err := orchestrators.ExecuteSeedCatalog(ctx, orchestrators.SeedCatalogInput{Data: seed}, seedDeps); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	// Configure email sender
	var sender email.Sender
	if cfg.ResendKey != "" {
		sender = email.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = email.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_configured", "provider", "noop", "hint", "SHEPHERD_RESEND_KEY is not set; digest delivery is disabled")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, time.Second)
	go sweepLimiter(ctx, limiter)

	handler := web.NewMux(stores, web.Options{
		Location:         cfg.Location,
		CSRFKey:          cfg.CSRFKey,
		SecureCookies:    cfg.IsProduction(),
		TrustedOrigins:   cfg.TrustedOrigins,
		AdminToken:       cfg.AdminToken,
		Limiter:          limiter,
		SlowRequestMs:    cfg.SlowRequestMs,
		BulkConcurrency:  cfg.BulkConcurrency,
		Sender:           sender,
		EmailFrom:        cfg.EmailFrom,
		DigestRecipients: cfg.DigestRecipients,
		Collector:        collector,
		Ping:             timedDB.Ping,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server_shutdown_failed", "error", err)
		}
	}()

	slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "timezone", cfg.Location.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	slog.Info("server_stopped")
}

// sweepLimiter forgets idle rate-limit clients until ctx is done.
func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(10 * time.Minute); n > 0 {
				slog.Debug("rate_limit_swept", "clients", n)
			}
		}
	}
}
