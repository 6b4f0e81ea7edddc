// Package config holds the server configuration: defaults, the YAML file
// and the PORT environment override.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/shravanasati/ledgerdash/internal/middleware"
	"github.com/shravanasati/ledgerdash/internal/static"
)

const DefaultPort = 4173

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Assets AssetsConfig `yaml:"assets"`
	Ledger LedgerConfig `yaml:"ledger"`
	Log    LogConfig    `yaml:"log"`
	Auth   AuthConfig   `yaml:"auth"`
}

type HTTPConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	KeepAliveTimeout time.Duration `yaml:"keep_alive_timeout"`
	MaxHeaderBytes   int           `yaml:"max_header_bytes"`
}

type AssetsConfig struct {
	Root string `yaml:"root"`
	// AllowList replaces the default root-level file names when set.
	AllowList []string `yaml:"allow_list"`
}

type LedgerConfig struct {
	Path          string `yaml:"path"`
	PageTransfers int    `yaml:"page_transfers"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	Color       bool   `yaml:"color"`
}

type AuthConfig struct {
	Accounts []middleware.Account `yaml:"accounts"`
}

func NewConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:             DefaultPort,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     60 * time.Second,
			KeepAliveTimeout: 5 * time.Second,
			MaxHeaderBytes:   8 << 10,
		},
		Assets: AssetsConfig{Root: "dist/client"},
		Ledger: LedgerConfig{Path: "data/ledger.db", PageTransfers: 10},
		Log:    LogConfig{Level: "info"},
	}
}

// Address is the listen address built from host and port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}

// AllowList returns the configured root-level names, or the default set.
func (c *Config) AllowList() static.AllowList {
	if len(c.Assets.AllowList) == 0 {
		return static.DefaultAllowList()
	}
	return static.NewAllowList(c.Assets.AllowList...)
}

// ApplyEnv overrides the port with PORT when it is set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	raw, ok := lookup("PORT")
	if !ok || raw == "" {
		return nil
	}
	port, err := parsePort(raw)
	if err != nil {
		return fmt.Errorf("%w: PORT: %w", ErrInvalidConfig, err)
	}
	c.HTTP.Port = port
	return nil
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%d is out of range", port)
	}
	return port, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d is out of range", c.HTTP.Port))
	}
	if c.HTTP.ReadTimeout < 0 || c.HTTP.WriteTimeout < 0 || c.HTTP.KeepAliveTimeout < 0 {
		errs = append(errs, errors.New("http timeouts must not be negative"))
	}
	if c.Assets.Root == "" {
		errs = append(errs, errors.New("assets.root is required"))
	}
	if c.Ledger.Path == "" {
		errs = append(errs, errors.New("ledger.path is required"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	for i, acc := range c.Auth.Accounts {
		if acc.Username == "" {
			errs = append(errs, fmt.Errorf("auth.accounts[%d]: username is required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
