// Package config handles configuration loading and management for taskforce.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/oakhill-labs/taskforce/internal/orchestrator"
)

// Config holds all configuration for taskforce.
type Config struct {
	Execution ExecutionConfig `mapstructure:"execution"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Report    ReportConfig    `mapstructure:"report"`
}

// ExecutionConfig holds orchestrator settings.
type ExecutionConfig struct {
	// Mode is the execution strategy: sequential, parallel, or ultrathink.
	Mode string `mapstructure:"mode"`
	// ParallelLimit is the batch size for parallel mode.
	ParallelLimit int `mapstructure:"parallel_limit"`
	// MaxIterations caps ultrathink iterations.
	MaxIterations int `mapstructure:"max_iterations"`
	// TargetConfidence is the ultrathink convergence threshold (0-100).
	TargetConfidence int `mapstructure:"target_confidence"`
}

// LoggingConfig holds debug log settings.
type LoggingConfig struct {
	// DebugLog is the path of the debug log file; empty disables it.
	DebugLog string `mapstructure:"debug_log"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	// Path is where the JSON run report is written; empty disables it.
	Path string `mapstructure:"path"`
}

// Load loads configuration from XDG paths, project overrides, and environment
// variables. Precedence (highest to lowest):
// 1. Environment variables (TASKFORCE_*)
// 2. Project config (.taskforce.yaml in current directory or parent)
// 3. User config (~/.config/taskforce/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("TASKFORCE")
	v.AutomaticEnv()
	v.BindEnv("execution.mode", "TASKFORCE_MODE")
	v.BindEnv("execution.parallel_limit", "TASKFORCE_PARALLEL_LIMIT")
	v.BindEnv("execution.max_iterations", "TASKFORCE_MAX_ITERATIONS")
	v.BindEnv("execution.target_confidence", "TASKFORCE_TARGET_CONFIDENCE")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("execution.mode", cfg.Execution.Mode)
	v.Set("execution.parallel_limit", cfg.Execution.ParallelLimit)
	v.Set("execution.max_iterations", cfg.Execution.MaxIterations)
	v.Set("execution.target_confidence", cfg.Execution.TargetConfidence)
	v.Set("logging.debug_log", cfg.Logging.DebugLog)
	v.Set("report.path", cfg.Report.Path)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// Validate checks the execution settings against known modes and bounds.
func (c *Config) Validate() error {
	if !orchestrator.Mode(c.Execution.Mode).Valid() {
		return fmt.Errorf("unknown execution mode %q", c.Execution.Mode)
	}
	if c.Execution.ParallelLimit < 1 {
		return fmt.Errorf("parallel_limit must be >= 1, got %d", c.Execution.ParallelLimit)
	}
	if c.Execution.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be >= 1, got %d", c.Execution.MaxIterations)
	}
	if c.Execution.TargetConfidence < 1 || c.Execution.TargetConfidence > 100 {
		return fmt.Errorf("target_confidence must be in [1,100], got %d", c.Execution.TargetConfidence)
	}
	return nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("execution.mode", string(orchestrator.ModeSequential))
	v.SetDefault("execution.parallel_limit", orchestrator.DefaultParallelLimit)
	v.SetDefault("execution.max_iterations", orchestrator.DefaultMaxIterations)
	v.SetDefault("execution.target_confidence", orchestrator.DefaultTargetConfidence)
	v.SetDefault("logging.debug_log", "")
	v.SetDefault("report.path", "")
}

// getUserConfigDir returns the XDG config directory for taskforce.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "taskforce")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "taskforce")
	}
	return filepath.Join(home, ".config", "taskforce")
}

// findProjectConfig searches for .taskforce.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".taskforce.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Execution: ExecutionConfig{
			Mode:             string(orchestrator.ModeSequential),
			ParallelLimit:    orchestrator.DefaultParallelLimit,
			MaxIterations:    orchestrator.DefaultMaxIterations,
			TargetConfidence: orchestrator.DefaultTargetConfidence,
		},
	}
}
