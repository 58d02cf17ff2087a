// Package config builds the gateway's immutable configuration from the
// environment (optionally seeded from a .env file) so main stays lean.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is built once at startup and passed by value to constructors.
type Config struct {
	Server           Server
	IdentityProvider IdentityProvider
	ProfileService   ProfileService
	Registration     Registration
	Auth             Auth
	Redis            RedisConfig
	Log              Log
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `env:"ID_GATEWAY_ADDR" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// IdentityProvider points at a Keycloak-compatible realm.
type IdentityProvider struct {
	BaseURL      string `env:"KEYCLOAK_URL,required"`
	Realm        string `env:"KEYCLOAK_REALM,required"`
	ClientID     string `env:"KEYCLOAK_CLIENT_ID,required"`
	ClientSecret string `env:"KEYCLOAK_CLIENT_SECRET"`

	// Admin credentials for the users endpoint. AdminRealm defaults to Realm.
	AdminRealm        string `env:"KEYCLOAK_ADMIN_REALM"`
	AdminClientID     string `env:"KEYCLOAK_ADMIN_CLIENT_ID,required"`
	AdminClientSecret string `env:"KEYCLOAK_ADMIN_CLIENT_SECRET,required"`

	Timeout time.Duration `env:"KEYCLOAK_TIMEOUT" envDefault:"10s"`
}

// ProfileService points at the individuals REST API.
type ProfileService struct {
	BaseURL string        `env:"PROFILE_SERVICE_URL,required"`
	Timeout time.Duration `env:"PROFILE_SERVICE_TIMEOUT" envDefault:"10s"`
}

// Registration tunes the registration saga.
type Registration struct {
	CompensationTimeout time.Duration `env:"COMPENSATION_TIMEOUT" envDefault:"5s"`
}

// Auth selects how bearer tokens on protected routes are trusted.
// Exactly one mode must be chosen: JWKS verification or an explicit
// declaration that an upstream resource server has verified them.
type Auth struct {
	JWKSURL       string `env:"AUTH_JWKS_URL"`
	Issuer        string `env:"AUTH_ISSUER"`
	Audience      string `env:"AUTH_AUDIENCE"`
	TrustUpstream bool   `env:"AUTH_TRUST_UPSTREAM" envDefault:"false"`
}

// Verifies reports whether the gateway verifies tokens itself.
func (a Auth) Verifies() bool {
	return a.JWKSURL != ""
}

// RedisConfig configures the optional orphan ledger backend. Empty URL keeps
// the ledger in memory.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// LoadRedis reads only the Redis settings, for tools that touch the orphan
// ledger without running the gateway.
func LoadRedis(envFiles ...string) (RedisConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return RedisConfig{}, fmt.Errorf("load env file: %w", err)
	}
	cfg, err := env.ParseAs[RedisConfig]()
	if err != nil {
		return RedisConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.URL == "" {
		return RedisConfig{}, errors.New("REDIS_URL is required: the in-memory ledger is not shared between processes")
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.IdentityProvider.AdminRealm == "" {
		cfg.IdentityProvider.AdminRealm = cfg.IdentityProvider.Realm
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c Config) Validate() error {
	var errs []error

	for name, raw := range map[string]string{
		"KEYCLOAK_URL":        c.IdentityProvider.BaseURL,
		"PROFILE_SERVICE_URL": c.ProfileService.BaseURL,
	} {
		if err := validateBaseURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if c.Auth.JWKSURL == "" && !c.Auth.TrustUpstream {
		errs = append(errs, errors.New("bearer verification mode not set: configure AUTH_JWKS_URL or set AUTH_TRUST_UPSTREAM=true"))
	}
	if c.IdentityProvider.Timeout <= 0 || c.ProfileService.Timeout <= 0 {
		errs = append(errs, errors.New("downstream timeouts must be positive"))
	}
	if c.Registration.CompensationTimeout <= 0 {
		errs = append(errs, errors.New("COMPENSATION_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
