// Package identityprovider is the client for a Keycloak-compatible identity
// provider: account creation through the admin REST API and token issuance
// through the resource-owner password grant.
package identityprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"idgate/internal/auth/models"
	"idgate/internal/platform/config"
	"idgate/internal/platform/metrics"
	dErrors "idgate/pkg/domain-errors"
	"idgate/pkg/platform/sentinel"
)

const serviceName = "identity_provider"

// Client holds connection state only; it is safe for concurrent use.
type Client struct {
	usersURL string
	http     *http.Client
	admin    *clientcredentials.Config
	login    *oauth2.Config
	metrics  *metrics.Metrics

	// adminTokens caches the admin token until it expires.
	adminTokens oauth2.TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(cfg config.IdentityProvider, m *metrics.Metrics, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	adminRealm := cfg.AdminRealm
	if adminRealm == "" {
		adminRealm = cfg.Realm
	}

	c := &Client{
		usersURL: base + "/admin/realms/" + url.PathEscape(cfg.Realm) + "/users",
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		admin: &clientcredentials.Config{
			ClientID:     cfg.AdminClientID,
			ClientSecret: cfg.AdminClientSecret,
			TokenURL:     TokenURL(base, adminRealm),
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		login: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  TokenURL(base, cfg.Realm),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		metrics: m,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.adminTokens = c.admin.TokenSource(c.withHTTPClient(context.Background()))
	return c
}

// TokenURL is the realm's OpenID Connect token endpoint.
func TokenURL(baseURL, realm string) string {
	return strings.TrimRight(baseURL, "/") + "/realms/" + url.PathEscape(realm) + "/protocol/openid-connect/token"
}

// CreateAccount submits a new account. A non-2xx answer is not an error: the
// status is returned for the caller to inspect. Errors mean the request could
// not be completed at all.
func (c *Client) CreateAccount(ctx context.Context, account Account) (resp ProviderResponse, err error) {
	defer c.observe("create_account", time.Now(), &err)

	adminToken, err := c.adminTokens.Token()
	if err != nil {
		return ProviderResponse{}, fmt.Errorf("%w: obtain admin token: %v", sentinel.ErrUnavailable, err)
	}

	payload, err := json.Marshal(toUserRepresentation(account))
	if err != nil {
		return ProviderResponse{}, fmt.Errorf("encode account: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.usersURL, bytes.NewReader(payload))
	if err != nil {
		return ProviderResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	adminToken.SetAuthHeader(req)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return ProviderResponse{}, fmt.Errorf("%w: create account: %v", sentinel.ErrUnavailable, err)
	}
	defer func() { _ = httpResp.Body.Close() }()
	_, _ = io.Copy(io.Discard, httpResp.Body)

	return ProviderResponse{
		StatusCode: httpResp.StatusCode,
		Location:   httpResp.Header.Get("Location"),
	}, nil
}

// IssueToken exchanges username and password for a token set. Any failure is
// a LoginFailed; there is no retry.
func (c *Client) IssueToken(ctx context.Context, username, password string) (token *models.AccessToken, err error) {
	defer c.observe("issue_token", time.Now(), &err)

	tok, err := c.login.PasswordCredentialsToken(c.withHTTPClient(ctx), username, password)
	if err != nil {
		return nil, dErrors.Wrap(fmt.Errorf("password grant for %q: %w", username, err), dErrors.CodeLoginFailed, "check credentials")
	}

	return &models.AccessToken{
		AccessToken:      tok.AccessToken,
		RefreshToken:     tok.RefreshToken,
		TokenType:        tok.TokenType,
		ExpiresIn:        expiresIn(tok),
		RefreshExpiresIn: extraInt64(tok.Extra("refresh_expires_in")),
		Scope:            extraString(tok.Extra("scope")),
	}, nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

func (c *Client) observe(operation string, start time.Time, err *error) {
	if c.metrics != nil {
		c.metrics.ObserveDownstream(serviceName, operation, start, *err)
	}
}

// expiresIn echoes the provider's expires_in, falling back to the parsed expiry.
func expiresIn(tok *oauth2.Token) int64 {
	if v := extraInt64(tok.Extra("expires_in")); v > 0 {
		return v
	}
	if !tok.Expiry.IsZero() {
		return int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	return 0
}

func extraInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}

func extraString(v any) string {
	s, _ := v.(string)
	return s
}
