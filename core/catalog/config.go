package catalog

import "time"

// Config holds configuration for the catalogs built by the service.
type Config struct {
	// Source selects where asset bytes come from (fs, s3, db).
	Source string `mapstructure:"source" default:"fs"`
	// Root is the asset directory for the fs source.
	Root string `mapstructure:"root" default:"./assets"`
	// ReserveCount is the maximum number of assets per catalog.
	ReserveCount int `mapstructure:"reserve_count" default:"4096"`
	// PollIntervalMs is how often completed async loads are drained.
	PollIntervalMs int `mapstructure:"poll_interval_ms" default:"16"`
}

const (
	SourceFS       = "fs"
	SourceS3       = "s3"
	SourceDatabase = "db"
)

// IsValidSource checks if the configured source is supported.
func (c Config) IsValidSource() bool {
	switch c.Source {
	case SourceFS, SourceS3, SourceDatabase:
		return true
	default:
		return false
	}
}

// PollInterval returns the poll period, defaulting to 16ms.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return 16 * time.Millisecond
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}
