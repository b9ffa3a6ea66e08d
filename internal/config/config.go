// Package config loads runtime settings from defaults, an optional TOML
// file and BUDGETPLANNER_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix     = "BUDGETPLANNER"
	envConfigPath = "BUDGETPLANNER_CONFIG"
)

type Config struct {
	// Persistence
	DataBackend  string `mapstructure:"data_backend"`
	SQLiteDBPath string `mapstructure:"sqlite_db_path"`
	FilePath     string `mapstructure:"file_path"`
	StateName    string `mapstructure:"state_name"`

	// Logging
	LogLevel string `mapstructure:"log_level"`

	// AMQP change events, disabled when the URL is empty
	AMQPURL      string `mapstructure:"amqp_url"`
	AMQPExchange string `mapstructure:"amqp_exchange"`
	AMQPQueue    string `mapstructure:"amqp_queue"`

	// HTTP API
	HTTPAddr           string   `mapstructure:"http_addr"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	TrustedProxies     []string `mapstructure:"trusted_proxies"`

	// Presentation
	DefaultRange   string `mapstructure:"default_range"`
	PageSize       int    `mapstructure:"page_size"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// ValidBackends lists the accepted data_backend values.
var ValidBackends = []string{"memory", "file", "sqlite"}

var (
	validRanges    = []string{"week", "month", "year"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_backend", "file")
	v.SetDefault("sqlite_db_path", "./data/budgetplanner.db")
	v.SetDefault("file_path", "./data/budget-planner.json")
	v.SetDefault("state_name", "budget-planner")
	v.SetDefault("log_level", "info")
	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "budgetplanner")
	v.SetDefault("amqp_queue", "transaction_events")
	v.SetDefault("http_addr", "127.0.0.1:8081")
	v.SetDefault("rate_limit_per_minute", 60)
	v.SetDefault("trusted_proxies", []string{})
	v.SetDefault("default_range", "month")
	v.SetDefault("page_size", 10)
	v.SetDefault("currency_symbol", "$")
}

// Load reads the configuration. The TOML file is taken from
// BUDGETPLANNER_CONFIG when set, otherwise from
// $HOME/.config/budgetplanner/config.toml if it exists.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	explicit := os.Getenv(envConfigPath)
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "budgetplanner"))
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if !slices.Contains(ValidBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, ValidBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "file":
		if c.FilePath == "" {
			errs = append(errs, "file path cannot be empty when using file backend")
		}
	}

	if strings.TrimSpace(c.StateName) == "" {
		errs = append(errs, "state name cannot be empty")
	}

	if level := strings.ToLower(c.LogLevel); level != "warning" && !slices.Contains(validLogLevels, level) {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.HTTPAddr != "" {
		if _, port, err := net.SplitHostPort(c.HTTPAddr); err != nil {
			errs = append(errs, fmt.Sprintf("invalid HTTP address '%s': %v", c.HTTPAddr, err))
		} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
			errs = append(errs, fmt.Sprintf("invalid HTTP port '%s': must be between 0 and 65535", port))
		}
	}

	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(strings.TrimSpace(cidr)); err != nil {
			errs = append(errs, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR such as 203.0.113.0/24", cidr))
		}
	}

	if !slices.Contains(validRanges, strings.ToLower(c.DefaultRange)) {
		errs = append(errs, fmt.Sprintf("invalid default range '%s': must be one of %v", c.DefaultRange, validRanges))
	}

	if c.PageSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid page size %d: must be at least 1", c.PageSize))
	} else if c.PageSize > 100 {
		errs = append(errs, fmt.Sprintf("invalid page size %d: must be at most 100", c.PageSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// AMQPEnabled reports whether change events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}
