package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	auth "github.com/goliatone/go-petcare-auth"
)

// BaseConfig is the process configuration, read from the environment
type BaseConfig struct {
	Env         string `env:"PETCARE_ENV"          envDefault:"development"`
	LogLevel    string `env:"PETCARE_LOG_LEVEL"    envDefault:"info"`
	HTTPAddr    string `env:"PETCARE_HTTP_ADDR"    envDefault:":8572"`
	MetricsAddr string `env:"PETCARE_METRICS_ADDR" envDefault:":9572"`
	DSN         string `env:"PETCARE_DSN"          envDefault:"file:petcare.db?cache=shared"`
	Auth        Auth
}

// Auth holds token and password settings
type Auth struct {
	// SigningKey is a standard base64 encoded secret of at least 32 bytes
	SigningKey      string        `env:"PETCARE_SIGNING_KEY,required"`
	AccessTokenTTL  time.Duration `env:"PETCARE_ACCESS_TOKEN_TTL"  envDefault:"24m"`
	RefreshTokenTTL time.Duration `env:"PETCARE_REFRESH_TOKEN_TTL" envDefault:"24h"`
	RefreshWindow   time.Duration `env:"PETCARE_REFRESH_WINDOW"    envDefault:"5m"`
	PasswordCost    int           `env:"PETCARE_BCRYPT_COST"       envDefault:"12"`
}

var _ auth.Config = Auth{}

// Load reads the configuration from the process environment
func Load() (*BaseConfig, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from environ instead of the process
func LoadFrom(environ map[string]string) (*BaseConfig, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*BaseConfig, error) {
	cfg := &BaseConfig{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the env tags cannot express
func (c BaseConfig) Validate() error {
	if _, err := auth.DecodeSigningKey(c.Auth.SigningKey); err != nil {
		return err
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 || c.Auth.RefreshWindow <= 0 {
		return auth.NewBadRequestError("token lifetimes must be positive", map[string]any{
			"access_ttl":     c.Auth.AccessTokenTTL.String(),
			"refresh_ttl":    c.Auth.RefreshTokenTTL.String(),
			"refresh_window": c.Auth.RefreshWindow.String(),
		})
	}
	return nil
}

// IsProduction reports whether Env is production
func (c BaseConfig) IsProduction() bool {
	return c.Env == "production"
}

func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a Auth) GetAccessTokenTTL() time.Duration {
	return a.AccessTokenTTL
}

func (a Auth) GetRefreshTokenTTL() time.Duration {
	return a.RefreshTokenTTL
}

func (a Auth) GetRefreshWindow() time.Duration {
	return a.RefreshWindow
}

func (a Auth) GetPasswordCost() int {
	return a.PasswordCost
}
