// Package httptransport is the gateway's HTTP surface: routing, the auth
// handlers and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idgate/pkg/platform/httputil"
	authmw "idgate/pkg/platform/middleware/auth"
	"idgate/pkg/platform/middleware/metadata"
	request "idgate/pkg/platform/middleware/request"
	"idgate/pkg/platform/middleware/requesttime"
)

// HealthChecker is a dependency whose liveness is reported by /health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type RouterConfig struct {
	Auth   *AuthHandler
	Logger *slog.Logger

	// Verifier checks bearer tokens on /v1/me. Nil delegates verification to
	// the upstream resource server.
	Verifier authmw.JWTValidator

	// Checks are named dependencies probed by /health.
	Checks map[string]HealthChecker

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.RealIP)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(cfg.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(cfg.Checks, cfg.Logger))
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	cfg.Auth.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireBearer(cfg.Verifier, cfg.Logger))
		r.Get("/v1/me", cfg.Auth.HandleMe)
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK

		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := check.Health(ctx); err != nil {
				logger.ErrorContext(ctx, "health check failed",
					"check", name,
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		httputil.WriteJSON(w, status, resp)
	}
}
