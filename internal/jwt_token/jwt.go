package jwttoken

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// DefaultValidMethods are the asymmetric algorithms identity providers sign
// access tokens with.
var DefaultValidMethods = []string{"RS256", "RS384", "RS512", "PS256", "ES256", "ES384"}

// Claims are the access token claims the gateway cares about. Guid binds the
// token to a profile record.
type Claims struct {
	Guid string `json:"Guid,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks access token signatures and expiry.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	closer  func()
}

type Option func(*verifierOptions)

type verifierOptions struct {
	methods  []string
	issuer   string
	audience string
	leeway   time.Duration
}

// WithValidMethods overrides the accepted signing algorithms.
func WithValidMethods(methods ...string) Option {
	return func(o *verifierOptions) { o.methods = methods }
}

// WithIssuer requires the iss claim to match.
func WithIssuer(issuer string) Option {
	return func(o *verifierOptions) { o.issuer = issuer }
}

// WithAudience requires aud to contain audience.
func WithAudience(audience string) Option {
	return func(o *verifierOptions) { o.audience = audience }
}

// WithLeeway tolerates clock skew when checking exp/nbf.
func WithLeeway(d time.Duration) Option {
	return func(o *verifierOptions) { o.leeway = d }
}

// NewVerifier builds a Verifier around an arbitrary key function.
func NewVerifier(kf jwt.Keyfunc, opts ...Option) *Verifier {
	o := verifierOptions{methods: DefaultValidMethods}
	for _, opt := range opts {
		opt(&o)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(o.methods),
		jwt.WithExpirationRequired(),
	}
	if o.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(o.issuer))
	}
	if o.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(o.audience))
	}
	if o.leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(o.leeway))
	}

	return &Verifier{
		keyfunc: kf,
		parser:  jwt.NewParser(parserOpts...),
		closer:  func() {},
	}
}

// NewJWKSVerifier fetches the identity provider's JWK set and keeps it
// refreshed in the background. Close stops the refresh goroutine.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger, opts ...Option) (*Verifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Error("failed to refresh JWK set", "error", err, "url", jwksURL)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("load JWK set from %s: %w", jwksURL, err)
	}

	v := NewVerifier(jwks.Keyfunc, opts...)
	v.closer = jwks.EndBackground
	return v, nil
}

// ValidateToken verifies tokenString and returns its claims.
func (v *Verifier) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := v.parser.ParseWithClaims(tokenString, &Claims{}, v.keyfunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Close releases background resources.
func (v *Verifier) Close() {
	v.closer()
}
