package config

import "os"

// Config holds the small amount of environment-driven configuration the
// CLI consults. Everything algorithmic arrives through flags; env only
// supplies defaults for paths.
type Config struct {
	// SampleCSV is the fallback metrics CSV used by the validator when no
	// positional path is given.
	SampleCSV string
	// ArtifactDir is the default directory for training artifacts when
	// --out is a bare filename.
	ArtifactDir string
}

// Load reads configuration from environment variables, applying defaults.
func Load() *Config {
	return &Config{
		SampleCSV:   getEnvOrDefault("SAMPLE_METRICS_CSV", "data/sample_metrics.csv"),
		ArtifactDir: getEnvOrDefault("ARTIFACT_DIR", "artifacts"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
