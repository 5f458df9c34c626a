package authclient

import (
	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

var _ Config = (*EnvConfig)(nil)

// EnvConfig implements Config from environment variables.
type EnvConfig struct {
	BaseURL                string `env:"SENFI_API_BASE_URL" envDefault:"https://senfi.sharif.edu/api"`
	RequestTimeout         int    `env:"SENFI_API_TIMEOUT_SECONDS" envDefault:"15"`
	MonitorInterval        int    `env:"SENFI_SESSION_CHECK_MINUTES" envDefault:"2"`
	ExpiryWarningThreshold int    `env:"SENFI_EXPIRY_WARNING_MINUTES" envDefault:"30"`
}

// LoadConfig reads client configuration from the environment, applying
// defaults for anything unset.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load configuration from environment")
	}
	return cfg, nil
}

func (c *EnvConfig) GetBaseURL() string {
	return c.BaseURL
}

// GetRequestTimeout returns the HTTP timeout in seconds.
func (c *EnvConfig) GetRequestTimeout() int {
	return c.RequestTimeout
}

// GetMonitorInterval returns the expiry check interval in minutes.
func (c *EnvConfig) GetMonitorInterval() int {
	return c.MonitorInterval
}

// GetExpiryWarningThreshold returns the expiring-soon window in minutes.
func (c *EnvConfig) GetExpiryWarningThreshold() int {
	return c.ExpiryWarningThreshold
}
