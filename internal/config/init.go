package config

import (
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists").
			WithContext("path", configPath).
			WithHint("use --force to overwrite").
			UserAction().
			Build()
	}

	example := Config{
		DataDir: DefaultDataDir,
		Server: ServerConfig{
			Port:      DefaultPort,
			APISecret: "${API_SECRET}",
			Backend:   BackendFile,
			S3: S3Config{
				Bucket:    "kaizen-state",
				Key:       DefaultS3Key,
				Region:    DefaultS3Region,
				Endpoint:  "http://localhost:9000",
				PathStyle: true,
			},
		},
		Client: ClientConfig{
			ServerURL: "http://localhost:3000",
			APIKey:    "${KAIZEN_API_KEY}",
		},
		Webhooks: WebhooksConfig{
			SQLitePath:    "./data/webhooks.db",
			SubjectPrefix: DefaultNATSPrefix,
		},
		Metrics: MetricsConfig{Enabled: true},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return ferrors.InternalError("failed to marshal example config").WithCause(err).Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return ferrors.FileSystemError("failed to write config file").
			WithCause(err).WithContext("path", configPath).Build()
	}
	return nil
}
