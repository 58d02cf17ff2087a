package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idgate/internal/auth/models"
	"idgate/internal/auth/store/orphan"
	"idgate/internal/identityprovider"
	"idgate/internal/platform/metrics"
	"idgate/internal/profile"
	dErrors "idgate/pkg/domain-errors"
	request "idgate/pkg/platform/middleware/request"
	"idgate/pkg/requestcontext"
)

const (
	msgBadCredentials     = "Provided bad credentials"
	msgIdentityNotCreated = "User is not registered, try later"
)

// step is a state of the registration saga.
type step int

const (
	stepValidateInput step = iota
	stepCreateProfile
	stepCreateIdentity
	stepIssueToken
	stepSuccess
	stepFailed
)

func (s step) String() string {
	switch s {
	case stepValidateInput:
		return "validate_input"
	case stepCreateProfile:
		return "create_profile"
	case stepCreateIdentity:
		return "create_identity"
	case stepIssueToken:
		return "issue_token"
	case stepSuccess:
		return "success"
	case stepFailed:
		return "failed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

func (s step) terminal() bool {
	return s == stepSuccess || s == stepFailed
}

// registration is one run of the saga. It is created per request and never
// shared.
type registration struct {
	svc *Service
	req models.RegistrationRequest

	record *profile.Record
	token  *models.AccessToken

	err      error
	failedAt step
	trail    []step

	compensated     bool
	compensationErr error
}

func (s *Service) runRegistration(ctx context.Context, req models.RegistrationRequest) *registration {
	run := &registration{svc: s, req: req}

	state := stepValidateInput
	for !state.terminal() {
		run.trail = append(run.trail, state)
		state = run.advance(ctx, state)
	}
	run.trail = append(run.trail, state)

	if state == stepSuccess {
		s.metrics.ObserveRegistration(metrics.OutcomeSuccess, stepSuccess.String())
		s.logger.InfoContext(ctx, "user registered",
			"profile_id", run.record.ID,
			"request_id", request.GetRequestID(ctx),
		)
		return run
	}

	s.metrics.ObserveRegistration(metrics.OutcomeFailure, run.failedAt.String())
	s.logger.WarnContext(ctx, "registration failed",
		"step", run.failedAt.String(),
		"compensated", run.compensated,
		"error", run.err,
		"request_id", request.GetRequestID(ctx),
	)
	return run
}

func (r *registration) advance(ctx context.Context, st step) step {
	ctx, span := r.svc.tracer.Start(ctx, "registration."+st.String())
	defer span.End()

	var next step
	switch st {
	case stepValidateInput:
		next = r.validateInput(ctx)
	case stepCreateProfile:
		next = r.createProfile(ctx)
	case stepCreateIdentity:
		next = r.createIdentity(ctx, span)
	case stepIssueToken:
		next = r.issueToken(ctx)
	default:
		next = r.fail(st, fmt.Errorf("registration saga entered %s", st))
	}

	if next == stepFailed {
		span.RecordError(r.err)
		span.SetStatus(codes.Error, st.String())
	}
	return next
}

func (r *registration) fail(at step, err error) step {
	r.failedAt = at
	r.err = err
	return stepFailed
}

// validateInput only compares the password with its confirmation. Every other
// field is forwarded as given.
func (r *registration) validateInput(ctx context.Context) step {
	if !r.req.PasswordsMatch() {
		return r.fail(stepValidateInput, dErrors.New(dErrors.CodeValidation, msgBadCredentials))
	}
	if warnings := r.req.ShapeWarnings(); len(warnings) > 0 {
		r.svc.logger.WarnContext(ctx, "registration forwarded with suspicious fields",
			"warnings", warnings,
			"request_id", request.GetRequestID(ctx),
		)
	}
	return stepCreateProfile
}

func (r *registration) createProfile(ctx context.Context) step {
	rec, err := r.svc.profiles.RegisterUser(ctx, r.req)
	if err != nil {
		return r.fail(stepCreateProfile, err)
	}
	r.record = rec
	return stepCreateIdentity
}

func (r *registration) createIdentity(ctx context.Context, span trace.Span) step {
	span.SetAttributes(attribute.String("idgate.profile_id", r.record.ID))

	resp, err := r.svc.idp.CreateAccount(ctx, r.account())
	if err == nil && resp.Created() {
		return stepIssueToken
	}

	cause := err
	if cause == nil {
		cause = fmt.Errorf("identity provider answered %d", resp.StatusCode)
	}
	r.compensate(ctx, cause)
	return r.fail(stepCreateIdentity, dErrors.Wrap(cause, dErrors.CodeRegistrationFailed, msgIdentityNotCreated))
}

func (r *registration) issueToken(ctx context.Context) step {
	token, err := r.svc.idp.IssueToken(ctx, r.username(), r.req.Password)
	if err != nil {
		return r.fail(stepIssueToken, err)
	}
	r.token = token
	return stepSuccess
}

func (r *registration) username() string {
	if r.record.Email != "" {
		return r.record.Email
	}
	return r.req.Email
}

func (r *registration) account() identityprovider.Account {
	first, last := r.record.FirstName, r.record.LastName
	if first == "" {
		first = r.req.FirstName
	}
	if last == "" {
		last = r.req.LastName
	}
	return identityprovider.Account{
		Username:  r.username(),
		Email:     r.username(),
		FirstName: first,
		LastName:  last,
		Enabled:   true,
		Guid:      r.record.ID,
		Password:  r.req.Password,
	}
}

// compensate deletes the profile created earlier in this run. It is attempted
// once and never changes the saga's outcome.
func (r *registration) compensate(ctx context.Context, cause error) {
	s := r.svc
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensationTimeout)
	defer cancel()

	r.compensated = true
	r.compensationErr = s.profiles.DeleteUser(cctx, r.record.ID)
	if r.compensationErr == nil {
		s.metrics.ObserveCompensation(metrics.OutcomeSuccess)
		s.logger.InfoContext(ctx, "profile rolled back",
			"profile_id", r.record.ID,
			"request_id", request.GetRequestID(ctx),
		)
		return
	}

	s.metrics.ObserveCompensation(metrics.OutcomeFailure)
	s.metrics.IncrementOrphanedProfiles()
	s.logger.ErrorContext(ctx, "profile rollback failed, profile orphaned",
		"profile_id", r.record.ID,
		"error", r.compensationErr,
		"request_id", request.GetRequestID(ctx),
	)

	if s.orphans == nil {
		return
	}
	rec := orphan.Record{
		ProfileID:  r.record.ID,
		Email:      r.username(),
		Reason:     errors.Join(cause, r.compensationErr).Error(),
		RecordedAt: requestcontext.Now(ctx),
	}
	if err := s.orphans.Record(cctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "orphan ledger write failed",
			"profile_id", r.record.ID,
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
	}
}
