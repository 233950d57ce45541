package config

import (
	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

// Validate checks values that cannot be normalized into shape.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return ferrors.ConfigError("server.port out of range").
			WithContext("port", c.Server.Port).Build()
	}
	if !backends.Valid(c.Server.Backend) {
		return ferrors.ConfigError("unknown " + backends.Name()).
			WithContext("backend", string(c.Server.Backend)).
			WithContext("valid_values", backends.Keys()).
			Build()
	}
	if c.Server.Backend == BackendS3 && c.Server.S3.Bucket == "" {
		return ferrors.ConfigError("server.s3.bucket is required for the s3 backend").Build()
	}
	return nil
}
