// Package config loads application configuration.
//
// Values come from environment variables, optionally seeded from a .env file
// via godotenv, and are mapped onto nested structs with Viper. Defaults are
// declared next to each field with a `default` struct tag:
//
//	ReserveCount int `mapstructure:"reserve_count" default:"4096"`
//
// Nested keys map to environment variables by replacing dots with
// underscores, so catalog.reserve_count is read from CATALOG_RESERVE_COUNT.
//
// # Sections
//
//   - server: HTTP port, API key, shutdown timeout
//   - storage: S3/MinIO endpoint, credentials, bucket, prefix
//   - log: level and format
//   - database: driver and connection settings for the blob source
//   - catalog: asset source, root directory, reserve count, poll interval
package config
