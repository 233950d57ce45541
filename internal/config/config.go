// Package config loads the kaizen configuration: an optional YAML file with
// ${VAR} expansion, .env files, and environment overrides on top of defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/foundation/normalization"
)

// BackendType selects where the state service keeps the shared document.
type BackendType string

const (
	BackendFile BackendType = "file"
	BackendS3   BackendType = "s3"
)

var backends = normalization.NewEnum("server.backend", BackendFile, BackendS3)

// Defaults.
const (
	DefaultConfigFile = "kaizen.yaml"
	DefaultAPISecret  = "change_me"
	DefaultPort       = 3000
	DefaultDataDir    = "./data"
	DefaultS3Key      = "state.json"
	DefaultS3Region   = "us-east-1"
	DefaultNATSPrefix = "kaizen.webhooks"
)

// Environment overrides.
const (
	EnvAPISecret = "API_SECRET"
	EnvPort      = "PORT"
	EnvServerURL = "KAIZEN_SERVER_URL"
	EnvAPIKey    = "KAIZEN_API_KEY"
	EnvDataDir   = "KAIZEN_DATA_DIR"
)

// Config is the complete configuration of the kaizen binary.
type Config struct {
	// DataDir holds the client database and, for the server, the state file
	// and the webhook log.
	DataDir  string         `yaml:"data_dir"`
	Server   ServerConfig   `yaml:"server"`
	Client   ClientConfig   `yaml:"client"`
	Webhooks WebhooksConfig `yaml:"webhooks"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the remote state service.
type ServerConfig struct {
	Port      int         `yaml:"port"`
	APISecret string      `yaml:"api_secret"`
	Backend   BackendType `yaml:"backend"` // file|s3
	S3        S3Config    `yaml:"s3,omitempty"`
}

// S3Config configures the S3 state backend. Endpoint and PathStyle allow
// S3-compatible stores such as MinIO.
type S3Config struct {
	Bucket          string `yaml:"bucket,omitempty"`
	Key             string `yaml:"key,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	PathStyle       bool   `yaml:"path_style,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// ClientConfig seeds the client's remote settings. Values persisted with
// `kaizen remote set-url/set-key` take precedence.
type ClientConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	APIKey    string `yaml:"api_key,omitempty"`
}

// WebhooksConfig configures the webhook sink and its optional fan-out.
type WebhooksConfig struct {
	LogPath       string `yaml:"log_path,omitempty"`
	SQLitePath    string `yaml:"sqlite_path,omitempty"`
	NATSURL       string `yaml:"nats_url,omitempty"`
	SubjectPrefix string `yaml:"subject_prefix,omitempty"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Server: ServerConfig{
			Port:      DefaultPort,
			APISecret: DefaultAPISecret,
			Backend:   BackendFile,
		},
	}
}

// StatePath is the file backend location.
func (c *Config) StatePath() string { return filepath.Join(c.DataDir, "state.json") }

// WebhookLogPath is the NDJSON webhook log location.
func (c *Config) WebhookLogPath() string {
	if c.Webhooks.LogPath != "" {
		return c.Webhooks.LogPath
	}
	return filepath.Join(c.DataDir, "webhooks.log")
}

// ClientDBPath is the local store of the CLI client.
func (c *Config) ClientDBPath() string { return filepath.Join(c.DataDir, "kaizen.db") }

// Addr is the listen address of the state service.
func (c *Config) Addr() string { return ":" + strconv.Itoa(c.Server.Port) }

// Load reads configPath, which must exist.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				WithCause(err).
				WithHint("run `kaizen init` to create one").
				UserAction().
				Build()
		}
		return nil, ferrors.ConfigError("failed to read config file").WithCause(err).WithContext("path", configPath).Build()
	}
	return parse(data, configPath)
}

// LoadOrDefault reads configPath when it exists and falls back to defaults
// (plus environment overrides) otherwise.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}
	loadEnvFiles()
	cfg := Default()
	return finish(cfg)
}

func parse(data []byte, configPath string) (*Config, error) {
	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, ferrors.ConfigError("failed to parse config file").
			WithCause(err).WithContext("path", configPath).Build()
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	applyEnv(cfg)
	for _, w := range normalize(cfg) {
		slog.Warn("config normalization", slog.String("warning", w))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets the environment override file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPISecret); v != "" {
		cfg.Server.APISecret = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		} else {
			slog.Warn("ignoring invalid PORT", slog.String("value", v))
		}
	}
	if v := os.Getenv(EnvServerURL); v != "" {
		cfg.Client.ServerURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Client.APIKey = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
}

// normalize case-folds enumerations and fills derived defaults. It returns
// human-readable notes about values it had to change.
func normalize(cfg *Config) []string {
	var warnings []string
	backend, changed := backends.Resolve(string(cfg.Server.Backend), BackendFile)
	if changed {
		warnings = append(warnings, fmt.Sprintf("server.backend %q normalized to %q", cfg.Server.Backend, backend))
	}
	cfg.Server.Backend = backend

	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = DefaultDataDir
	}
	cfg.Client.ServerURL = strings.TrimSpace(cfg.Client.ServerURL)
	cfg.Client.APIKey = strings.TrimSpace(cfg.Client.APIKey)
	if cfg.Server.Backend == BackendS3 {
		if cfg.Server.S3.Key == "" {
			cfg.Server.S3.Key = DefaultS3Key
		}
		if cfg.Server.S3.Region == "" {
			cfg.Server.S3.Region = DefaultS3Region
		}
	}
	if cfg.Webhooks.NATSURL != "" && cfg.Webhooks.SubjectPrefix == "" {
		cfg.Webhooks.SubjectPrefix = DefaultNATSPrefix
	}
	return warnings
}
