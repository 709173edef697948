package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stratadb/strata-go/pkg/strata"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode,omitempty"`
	AppName  string `yaml:"app_name,omitempty"`
}

type RetryConfig struct {
	MaxAttempts  int     `yaml:"max_attempts"`
	InitialDelay string  `yaml:"initial_delay"`
	MaxDelay     string  `yaml:"max_delay"`
	Multiplier   float64 `yaml:"multiplier"`
}

type StreamConfig struct {
	BatchSize     int    `yaml:"batch_size"`
	HighWaterMark int    `yaml:"high_water_mark"`
	Timeout       string `yaml:"timeout"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Retry      *RetryConfig     `yaml:"retry,omitempty"`
	Stream     *StreamConfig    `yaml:"stream,omitempty"`
}

const ConfigFileName = "strata.yaml"

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RetryPolicy resolves the retry section into a validated policy, filling
// omitted fields with defaults.
func (c *ProjectConfig) RetryPolicy() (strata.RetryPolicy, error) {
	policy := strata.DefaultRetryPolicy()
	if c == nil || c.Retry == nil {
		return policy, nil
	}

	if c.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = c.Retry.MaxAttempts
	}
	if c.Retry.Multiplier > 0 {
		policy.Multiplier = c.Retry.Multiplier
	}

	var err error
	if policy.InitialDelay, err = parseDuration(c.Retry.InitialDelay, policy.InitialDelay); err != nil {
		return policy, fmt.Errorf("retry.initial_delay: %w", err)
	}
	if policy.MaxDelay, err = parseDuration(c.Retry.MaxDelay, policy.MaxDelay); err != nil {
		return policy, fmt.Errorf("retry.max_delay: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return policy, err
	}
	return policy, nil
}

// StreamOptions resolves the stream section into validated options, filling
// omitted fields with defaults.
func (c *ProjectConfig) StreamOptions() (strata.StreamOptions, error) {
	opts := strata.DefaultStreamOptions()
	if c == nil || c.Stream == nil {
		return opts, nil
	}

	if c.Stream.BatchSize > 0 {
		opts.BatchSize = c.Stream.BatchSize
	}
	if c.Stream.HighWaterMark > 0 {
		opts.HighWaterMark = c.Stream.HighWaterMark
	}

	var err error
	if opts.Timeout, err = parseDuration(c.Stream.Timeout, opts.Timeout); err != nil {
		return opts, fmt.Errorf("stream.timeout: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, strata.ErrInvalidConfig)
	}
	return d, nil
}

// BuildConnString converts a ConnectionConfig to a PostgreSQL URI suitable
// for pgx. The password may be overridden by callers resolving it from the
// environment.
func BuildConnString(c *ConnectionConfig, password string) string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	if password == "" {
		password = c.Password
	}

	u := &url.URL{
		Scheme: "postgresql",
		Host:   host + ":" + strconv.Itoa(port),
		Path:   "/" + c.Database,
	}

	if c.Username != "" {
		if password != "" {
			u.User = url.UserPassword(c.Username, password)
		} else {
			u.User = url.User(c.Username)
		}
	}

	query := url.Values{}
	if c.SSLMode != "" {
		query.Set("sslmode", c.SSLMode)
	}
	if c.AppName != "" {
		query.Set("application_name", c.AppName)
	}
	u.RawQuery = query.Encode()

	return u.String()
}
