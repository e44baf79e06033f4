package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/croften/opskit/core"
)

// Loki configures the log range fetcher.
type Loki struct {
	// Endpoint is the full query_range URL. When empty the endpoint is
	// derived per project through the secret resolver.
	Endpoint string `yaml:"endpoint"`

	// TimestampFormat renders view timestamps (strftime directives).
	TimestampFormat string `yaml:"timestamp_format"`

	// PageLimit caps entries per HTTP call.
	PageLimit int `yaml:"page_limit"`

	// StepIncrementNs is added to the latest seen timestamp before the next
	// page request.
	StepIncrementNs int64 `yaml:"step_increment_ns"`

	// Policy is "ordered-list" or "grouped-set".
	Policy string `yaml:"policy"`

	// TimeoutSeconds bounds each page request.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// ObjectStore configures the S3 compatible backend.
type ObjectStore struct {
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	Region       string `yaml:"region"`
	BucketPrefix string `yaml:"bucket_prefix"`
	UseSSL       bool   `yaml:"use_ssl"`
}

// Vault configures the secret resolver backend.
type Vault struct {
	Address      string `yaml:"address"`
	Token        string `yaml:"token"`
	Mount        string `yaml:"mount"`
	SharedPath   string `yaml:"shared_path"`
	PathTemplate string `yaml:"path_template"`
}

// Logging configures the structured logger.
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Config is the full toolkit configuration.
type Config struct {
	Loki        Loki        `yaml:"loki"`
	ObjectStore ObjectStore `yaml:"object_store"`
	Vault       Vault       `yaml:"vault"`
	Logging     Logging     `yaml:"logging"`
}

// Default returns the documented baseline configuration.
func Default() Config {
	return Config{
		Loki: Loki{
			TimestampFormat: "%Y-%m-%d %H:%M:%S",
			PageLimit:       5000,
			StepIncrementNs: 1,
			Policy:          "ordered-list",
			TimeoutSeconds:  30,
		},
		ObjectStore: ObjectStore{
			Region: "us-east-1",
			UseSSL: true,
		},
		Vault: Vault{
			Mount:        "kv",
			SharedPath:   "shared",
			PathTemplate: "projects/%s",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, core.NewConfigError(fmt.Sprintf("read config file %q", path), err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, core.NewConfigError(fmt.Sprintf("parse config file %q", path), err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FromEnv returns the defaults overlaid with OPSKIT_* environment variables.
// A .env file in the working directory is loaded first if present.
func FromEnv() (Config, error) {
	_ = godotenv.Load() // missing .env is fine
	cfg := Default()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides set fields from OPSKIT_* environment variables.
func (c *Config) ApplyEnv() {
	setString(&c.Loki.Endpoint, "OPSKIT_LOKI_ENDPOINT")
	setString(&c.Loki.TimestampFormat, "OPSKIT_LOKI_TIMESTAMP_FORMAT")
	setInt(&c.Loki.PageLimit, "OPSKIT_LOKI_PAGE_LIMIT")
	setInt64(&c.Loki.StepIncrementNs, "OPSKIT_LOKI_STEP_INCREMENT_NS")
	setString(&c.Loki.Policy, "OPSKIT_LOKI_POLICY")
	setInt(&c.Loki.TimeoutSeconds, "OPSKIT_LOKI_TIMEOUT_SECONDS")

	setString(&c.ObjectStore.Endpoint, "OPSKIT_S3_ENDPOINT")
	setString(&c.ObjectStore.AccessKey, "OPSKIT_S3_ACCESS_KEY")
	setString(&c.ObjectStore.SecretKey, "OPSKIT_S3_SECRET_KEY")
	setString(&c.ObjectStore.Region, "OPSKIT_S3_REGION")
	setString(&c.ObjectStore.BucketPrefix, "OPSKIT_S3_BUCKET_PREFIX")
	setBool(&c.ObjectStore.UseSSL, "OPSKIT_S3_USE_SSL")

	setString(&c.Vault.Address, "OPSKIT_VAULT_ADDR")
	setString(&c.Vault.Token, "OPSKIT_VAULT_TOKEN")
	setString(&c.Vault.Mount, "OPSKIT_VAULT_MOUNT")
	setString(&c.Vault.SharedPath, "OPSKIT_VAULT_SHARED_PATH")
	setString(&c.Vault.PathTemplate, "OPSKIT_VAULT_PATH_TEMPLATE")

	setString(&c.Logging.Level, "OPSKIT_LOG_LEVEL")
	setString(&c.Logging.Format, "OPSKIT_LOG_FORMAT")
}

// Validate checks invariants that would otherwise surface deep inside a
// component. Returns a ConfigError describing the first problem found.
func (c *Config) Validate() error {
	switch c.Loki.Policy {
	case "ordered-list", "grouped-set":
	default:
		return core.NewConfigError(fmt.Sprintf("unsupported storage policy %q", c.Loki.Policy), nil)
	}
	if c.Loki.PageLimit <= 0 {
		return core.NewConfigError("loki.page_limit must be positive", nil)
	}
	if c.Loki.StepIncrementNs < 0 {
		return core.NewConfigError("loki.step_increment_ns must not be negative", nil)
	}
	if c.Loki.TimeoutSeconds <= 0 {
		return core.NewConfigError("loki.timeout_seconds must be positive", nil)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return core.NewConfigError(fmt.Sprintf("unsupported log format %q", c.Logging.Format), nil)
	}
	return nil
}

// LokiTimeout returns the page request timeout as a duration.
func (c *Config) LokiTimeout() time.Duration {
	return time.Duration(c.Loki.TimeoutSeconds) * time.Second
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
