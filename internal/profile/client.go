// Package profile is the HTTP client for the profile service's
// /individuals resource.
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"idgate/internal/auth/models"
	"idgate/internal/platform/config"
	"idgate/internal/platform/metrics"
	dErrors "idgate/pkg/domain-errors"
	"idgate/pkg/platform/sentinel"
)

const (
	serviceName     = "profile"
	individualsPath = "/individuals"

	// cap on error bodies kept for diagnostics
	maxErrorBody = 4 << 10
)

// Client talks to the profile service. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
}

type Option func(*Client)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(cfg config.ProfileService, m *metrics.Metrics, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		metrics: m,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is a non-2xx answer from the profile service.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("profile service %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return sentinel.ErrNotFound
	case e.StatusCode >= 500:
		return sentinel.ErrUnavailable
	default:
		return sentinel.ErrRejected
	}
}

// RegisterUser creates the profile record for a registration request.
func (c *Client) RegisterUser(ctx context.Context, req models.RegistrationRequest) (rec *Record, err error) {
	defer c.observe("create", time.Now(), &err)

	var out Record
	if err := c.do(ctx, http.MethodPost, individualsPath, toIndividualRequest(req), &out); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, dErrors.Wrap(err, dErrors.CodeRegistrationFailed, "user not saved")
		}
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("profile service returned a record without id")
	}
	return &out, nil
}

// GetUser fetches a profile record by id.
func (c *Client) GetUser(ctx context.Context, id string) (rec *Record, err error) {
	defer c.observe("get", time.Now(), &err)

	if strings.TrimSpace(id) == "" {
		return nil, dErrors.New(dErrors.CodeUserNotFound, "user information not found")
	}

	var out Record
	if err := c.do(ctx, http.MethodGet, individualPath(id), nil, &out); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, dErrors.Wrap(err, dErrors.CodeUserNotFound, "user information not found")
		}
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes a profile record. A record that is already gone counts
// as deleted.
func (c *Client) DeleteUser(ctx context.Context, id string) (err error) {
	defer c.observe("delete", time.Now(), &err)

	err = c.do(ctx, http.MethodDelete, individualPath(id), nil, nil)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	return err
}

func individualPath(id string) string {
	return individualsPath + "/" + url.PathEscape(id)
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode profile service response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", sentinel.ErrUnavailable, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

func (c *Client) observe(operation string, start time.Time, err *error) {
	if c.metrics != nil {
		c.metrics.ObserveDownstream(serviceName, operation, start, *err)
	}
}
