package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	// mapstructure decodes into an existing slice element by element, so a shorter
	// list in the file would inherit the tail of the defaults.
	defaultSizes := cfg.Benchmark.BatchSizes
	cfg.Benchmark.BatchSizes = nil

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Benchmark.BatchSizes) == 0 {
		cfg.Benchmark.BatchSizes = defaultSizes
	}

	substituteEnvVars(cfg)

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.Source.Path = expandEnvVar(cfg.Source.Path)
	cfg.Source.Host = expandEnvVar(cfg.Source.Host)
	cfg.Source.User = expandEnvVar(cfg.Source.User)
	cfg.Source.Password = expandEnvVar(cfg.Source.Password)
	cfg.Source.Database = expandEnvVar(cfg.Source.Database)

	cfg.NoSQL.URI = expandEnvVar(cfg.NoSQL.URI)

	cfg.Results.CSVPath = expandEnvVar(cfg.Results.CSVPath)
	cfg.Storage.OutputDir = expandEnvVar(cfg.Storage.OutputDir)
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat string, batchSizes []int, skipVerify bool) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if len(batchSizes) > 0 {
		c.Benchmark.BatchSizes = append([]int(nil), batchSizes...)
		// Snapshot sizes that no longer match a batch would fail validation.
		c.Benchmark.SnapshotSizes = nil
	}
	if skipVerify {
		c.Benchmark.VerifyRoundTrip = false
	}
}
