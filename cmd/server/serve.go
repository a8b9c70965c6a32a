package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"brochure/internal/adapters/api"
	emailPkg "brochure/internal/adapters/email"
	web "brochure/internal/adapters/http"
	"brochure/internal/adapters/http/middleware"
	"brochure/internal/adapters/http/perf"
	"brochure/internal/adapters/storage"
	auditStorePkg "brochure/internal/adapters/storage/audit"
	"brochure/internal/adapters/storage/browserflag"
	"brochure/internal/application/sessionstate"
	"brochure/internal/config"
)

// Background intervals
const (
	browserPruneInterval = 10 * time.Minute
	browserMaxIdle       = 24 * time.Hour
	flagPurgeInterval    = time.Hour
	shutdownGrace        = 10 * time.Second
)

// serve wires every component and runs until ctx is cancelled.
// POST: on return the HTTP server, session hub and background loops have stopped
func serve(ctx context.Context, c config.Config) error {
	db, err := storage.Open(c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(db, c.DBPath); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Performance instrumentation: wrap DB with timing, share the collector
	// with the gateway and the request middleware.
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, time.Duration(c.SlowQueryMs)*time.Millisecond)

	csrfKey, err := web.LoadCSRFKey(c.CSRFKey, c.Production())
	if err != nil {
		return err
	}
	secret := []byte(c.FlagSecret)
	if len(secret) == 0 {
		secret = csrfKey
	}
	hasher := browserflag.NewHasher(secret)
	flagStore := browserflag.NewSQLiteStore(timedDB, hasher)
	hub := sessionstate.NewHub()
	reader := sessionstate.NewReader(flagStore, hub)

	gateway := api.NewClient(api.ClientConfig{BaseURL: c.APIURL, Collector: collector})

	var sender emailPkg.Sender
	if c.ResendKey != "" {
		sender = emailPkg.NewResendSender(c.ResendKey, c.EmailFrom)
		slog.Info("email_sender", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if c.Production() {
			slog.Warn("email_sender", "provider", "noop", "detail", "BROCHURE_RESEND_KEY is not set; welcome emails are DISABLED")
		} else {
			slog.Info("email_sender", "provider", "noop")
		}
	}

	browsers := middleware.NewBrowserStore()
	var limiter *middleware.RateLimiter
	if c.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(c.RateLimit, c.RateBurst)
	}

	handler := web.NewMux(web.Deps{
		Gateway:        gateway,
		Flags:          reader,
		Hasher:         hasher,
		AuditStore:     auditStorePkg.NewSQLiteStore(timedDB),
		EmailSender:    sender,
		Collector:      collector,
		SlowRequest:    time.Duration(c.SlowRequestMs) * time.Millisecond,
		Browsers:       browsers,
		Limiter:        limiter,
		CSRFKey:        csrfKey,
		TrustedOrigins: c.TrustedOrigins,
		Secure:         c.Production(),
		PublicURL:      c.PublicURL,
	})
	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server_start", "addr", c.Addr, "env", c.Env, "api", c.APIURL, "schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("server_stop")
		// open session sockets are hijacked and not covered by Shutdown
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return browsers.Run(gctx, browserPruneInterval, browserMaxIdle)
	})
	if limiter != nil {
		g.Go(func() error { return limiter.Run(gctx) })
	}
	g.Go(func() error {
		return purgeFlags(gctx, flagStore, time.Duration(c.FlagTTLDays)*24*time.Hour)
	})
	return g.Wait()
}

// purgeFlags deletes flags untouched for longer than ttl every hour until ctx is done.
func purgeFlags(ctx context.Context, store browserflag.Store, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ticker := time.NewTicker(flagPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := store.Purge(ctx, time.Now().Add(-ttl))
			if err != nil {
				slog.Warn("flag_purge_failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("flags_purged", "count", n)
			}
		}
	}
}
