package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"idgate/internal/auth/service"
	"idgate/internal/auth/store/orphan"
	"idgate/internal/identityprovider"
	jwttoken "idgate/internal/jwt_token"
	"idgate/internal/platform/config"
	"idgate/internal/platform/httpserver"
	"idgate/internal/platform/logger"
	"idgate/internal/platform/metrics"
	"idgate/internal/platform/redis"
	"idgate/internal/profile"
	httptransport "idgate/internal/transport/http"
	authmw "idgate/pkg/platform/middleware/auth"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("idgate stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	m := metrics.New(prometheus.DefaultRegisterer)
	checks := map[string]httptransport.HealthChecker{}

	var orphans service.OrphanRecorder = orphan.NewInMemoryStore()
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		ledger := orphan.NewRedisStore(redisClient)
		orphans = ledger
		checks["redis"] = redisClient
		log.Info("orphan ledger backed by redis")
		if pending, err := ledger.List(ctx); err != nil {
			log.Warn("could not read orphan ledger", "error", err)
		} else if len(pending) > 0 {
			log.Warn("orphaned profiles awaiting reconciliation", "count", len(pending), "oldest", pending[0].RecordedAt)
		}
	}

	var verifier authmw.JWTValidator
	if cfg.Auth.Verifies() {
		var opts []jwttoken.Option
		if cfg.Auth.Issuer != "" {
			opts = append(opts, jwttoken.WithIssuer(cfg.Auth.Issuer))
		}
		if cfg.Auth.Audience != "" {
			opts = append(opts, jwttoken.WithAudience(cfg.Auth.Audience))
		}
		v, err := jwttoken.NewJWKSVerifier(cfg.Auth.JWKSURL, log, opts...)
		if err != nil {
			return err
		}
		defer v.Close()
		verifier = jwttoken.NewVerifierAdapter(v)
		log.Info("bearer tokens verified against JWKS", "jwks_url", cfg.Auth.JWKSURL)
	} else {
		log.Warn("bearer tokens are not verified by idgate; trusting upstream resource server")
	}

	svc := service.New(
		identityprovider.New(cfg.IdentityProvider, m),
		profile.New(cfg.ProfileService, m),
		service.WithOrphanRecorder(orphans),
		service.WithMetrics(m),
		service.WithLogger(log),
		service.WithCompensationTimeout(cfg.Registration.CompensationTimeout),
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(svc, log),
		Logger:   log,
		Verifier: verifier,
		Checks:   checks,
		Gatherer: prometheus.DefaultGatherer,
	})
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting idgate", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
