package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authModel "idgate/internal/auth/models"
	"idgate/internal/profile"
	dErrors "idgate/pkg/domain-errors"
	"idgate/pkg/platform/httputil"
	authmw "idgate/pkg/platform/middleware/auth"
	request "idgate/pkg/platform/middleware/request"
	"idgate/pkg/requestcontext"
)

//go:generate mockgen -source=handlers_auth.go -destination=mocks/auth_service_mock.go -package=mocks AuthService

// AuthService is the use-case surface the handlers delegate to.
type AuthService interface {
	Register(ctx context.Context, req authModel.RegistrationRequest) (*authModel.AccessToken, error)
	Login(ctx context.Context, req authModel.LoginRequest) (*authModel.AccessToken, error)
	Me(ctx context.Context, bearerHeader string) (*profile.Record, error)
	Profile(ctx context.Context, guid string) (*profile.Record, error)
}

type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Register mounts the public routes. /v1/me is mounted separately behind the
// bearer boundary.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/v1/auth/registration", h.HandleRegistration)
	r.Post("/v1/login", h.HandleLogin)
}

func (h *AuthHandler) HandleRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authModel.RegistrationRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.auth.Register(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, token)
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authModel.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.auth.Login(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, token)
}

// HandleMe prefers the Guid of a token the boundary verified and falls back to
// decoding the raw header when verification is delegated upstream.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		rec *profile.Record
		err error
	)
	if claims := authmw.GetClaims(ctx); claims != nil && claims.Guid != "" {
		rec, err = h.auth.Profile(ctx, claims.Guid)
	} else {
		rec, err = h.auth.Me(ctx, requestcontext.Bearer(ctx))
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request body",
			"path", r.URL.Path,
			"error", err,
			"request_id", request.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidRequest, "invalid request body"))
		return false
	}
	return true
}
