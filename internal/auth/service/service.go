// Package service implements the gateway's use cases: registration (a saga
// across the profile service and the identity provider), login, and the
// "who am I" lookup.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"idgate/internal/auth/claims"
	"idgate/internal/auth/models"
	"idgate/internal/platform/metrics"
	"idgate/internal/profile"
	request "idgate/pkg/platform/middleware/request"
)

const (
	tracerName = "idgate/internal/auth/service"

	defaultCompensationTimeout = 5 * time.Second
)

// Service is stateless across requests; every method call owns its data.
type Service struct {
	idp      IdentityProvider
	profiles ProfileService
	orphans  OrphanRecorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer

	compensationTimeout time.Duration
}

type Option func(*Service)

func WithOrphanRecorder(r OrphanRecorder) Option {
	return func(s *Service) { s.orphans = r }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithCompensationTimeout bounds the rollback call, which runs detached from
// the inbound request's cancellation.
func WithCompensationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.compensationTimeout = d
		}
	}
}

func New(idp IdentityProvider, profiles ProfileService, opts ...Option) *Service {
	s := &Service{
		idp:                 idp,
		profiles:            profiles,
		compensationTimeout: defaultCompensationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoop()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// Register runs the registration saga and returns the new user's tokens.
func (s *Service) Register(ctx context.Context, req models.RegistrationRequest) (*models.AccessToken, error) {
	run := s.runRegistration(ctx, req)
	if run.err != nil {
		return nil, run.err
	}
	return run.token, nil
}

// Login exchanges credentials for tokens. It bypasses the saga and forwards
// the credentials as given; the provider decides what is acceptable.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AccessToken, error) {
	token, err := s.idp.IssueToken(ctx, req.Username, req.Password)
	if err != nil {
		s.metrics.ObserveLogin(metrics.OutcomeFailure)
		s.logger.WarnContext(ctx, "login failed",
			"username", req.Username,
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		return nil, err
	}

	s.metrics.ObserveLogin(metrics.OutcomeSuccess)
	return token, nil
}

// Me resolves the caller's profile from the Guid claim of their bearer token.
// The token is decoded without verification.
func (s *Service) Me(ctx context.Context, bearerHeader string) (*profile.Record, error) {
	guid, err := claims.ExtractGUID(bearerHeader)
	if err != nil {
		s.logger.WarnContext(ctx, "identity claim unavailable",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		return nil, err
	}
	return s.Profile(ctx, guid)
}

// Profile fetches the profile linked to guid. Callers that already verified
// the token use it directly.
func (s *Service) Profile(ctx context.Context, guid string) (*profile.Record, error) {
	rec, err := s.profiles.GetUser(ctx, guid)
	if err != nil {
		s.logger.WarnContext(ctx, "profile lookup failed",
			"guid", guid,
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		return nil, err
	}
	return rec, nil
}
