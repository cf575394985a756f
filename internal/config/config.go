// Package config loads Worldmind's configuration: sandbox backend
// selection, quality gate thresholds, scheduler defaults, checkpoint store
// selection, and console output preferences. The loader follows the
// teacher's pattern — defaults, then a YAML file, then environment
// variable overrides applied last — but the section set is Worldmind's
// own.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ConsoleConfig controls terminal output formatting.
type ConsoleConfig struct {
	EnableColor       bool `yaml:"enable_color"`
	EnableProgressBar bool `yaml:"enable_progress_bar"`
	CompactMode       bool `yaml:"compact_mode"`
}

// SchedulerConfig controls wave scheduling defaults.
type SchedulerConfig struct {
	// Strategy is the default scheduling strategy when a mission doesn't
	// specify one: "parallel" or "sequential".
	Strategy string `yaml:"strategy"`

	// MaxParallel bounds how many tasks a single wave can dispatch at once.
	MaxParallel int `yaml:"max_parallel"`
}

// QualityConfig controls the quality gate.
type QualityConfig struct {
	// ReviewScoreThreshold is the minimum review score (out of 10) a task
	// must receive, in addition to passing tests, to be granted.
	ReviewScoreThreshold int `yaml:"review_score_threshold"`

	// MaxIterations is the default retry budget for tasks that don't
	// declare their own.
	MaxIterations int `yaml:"max_iterations"`
}

// GitConfig controls the git isolation engine.
type GitConfig struct {
	MaxConflictRetries int           `yaml:"max_conflict_retries"`
	RetryBackoff       time.Duration `yaml:"retry_backoff"`
}

// SandboxConfig selects and configures the sandbox driver backend.
type SandboxConfig struct {
	// Backend is "docker" (local container backend) or "remote" (HTTP
	// task-runner backend).
	Backend string `yaml:"backend"`

	// DockerHost overrides the Docker daemon endpoint; empty uses the
	// standard DOCKER_HOST / TLS environment.
	DockerHost string `yaml:"docker_host"`

	// RemoteURL is the base URL of the remote task-runner, used when
	// Backend is "remote".
	RemoteURL string `yaml:"remote_url"`

	// TaskTimeout is the default per-task wall-clock budget.
	TaskTimeout time.Duration `yaml:"task_timeout"`

	// CredentialEnvKey is an explicit override naming the environment
	// variable that carries the agent's credential token; empty falls
	// through the rest of the resolution order (spec §6).
	CredentialEnvKey string `yaml:"credential_env_key"`

	// DefaultCredential is used only if no explicit key, no provider-native
	// key, and no bound service credential resolve.
	DefaultCredential string `yaml:"default_credential"`
}

// CheckpointConfig selects and configures the checkpoint store.
type CheckpointConfig struct {
	// Store is "sqlite" (durable) or "file" (fallback).
	Store string `yaml:"store"`

	// SQLitePath is the database file path, used when Store is "sqlite".
	SQLitePath string `yaml:"sqlite_path"`

	// FileDir is the directory of per-mission JSON files, used when Store
	// is "file".
	FileDir string `yaml:"file_dir"`
}

// Config is Worldmind's top-level configuration.
type Config struct {
	LogLevel       string           `yaml:"log_level"`
	LogDir         string           `yaml:"log_dir"`
	RecursionLimit int              `yaml:"recursion_limit"`
	Console        ConsoleConfig    `yaml:"console"`
	Scheduler      SchedulerConfig  `yaml:"scheduler"`
	Quality        QualityConfig    `yaml:"quality"`
	Git            GitConfig        `yaml:"git"`
	Sandbox        SandboxConfig    `yaml:"sandbox"`
	Checkpoint     CheckpointConfig `yaml:"checkpoint"`
}

// DefaultConfig returns a Config with the spec's documented defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		LogDir:         ".worldmind/logs",
		RecursionLimit: 100,
		Console: ConsoleConfig{
			EnableColor:       true,
			EnableProgressBar: true,
		},
		Scheduler: SchedulerConfig{
			Strategy:    "parallel",
			MaxParallel: 4,
		},
		Quality: QualityConfig{
			ReviewScoreThreshold: 7,
			MaxIterations:        3,
		},
		Git: GitConfig{
			MaxConflictRetries: 2,
			RetryBackoff:       500 * time.Millisecond,
		},
		Sandbox: SandboxConfig{
			Backend:     "docker",
			TaskTimeout: 10 * time.Minute,
		},
		Checkpoint: CheckpointConfig{
			Store:      "sqlite",
			SQLitePath: ".worldmind/checkpoints.db",
			FileDir:    ".worldmind/checkpoints",
		},
	}
}

// applyConsoleEnvOverrides applies environment overrides to console
// configuration. Only "true" or "1" are recognized as true.
//
// Recognized variables:
//   - WORLDMIND_CONSOLE_COLOR (enable_color)
//   - WORLDMIND_CONSOLE_PROGRESS_BAR (enable_progress_bar)
//   - WORLDMIND_CONSOLE_COMPACT (compact_mode)
func applyConsoleEnvOverrides(cfg *ConsoleConfig) {
	if val := os.Getenv("WORLDMIND_CONSOLE_COLOR"); val != "" {
		cfg.EnableColor = val == "true" || val == "1"
	}
	if val := os.Getenv("WORLDMIND_CONSOLE_PROGRESS_BAR"); val != "" {
		cfg.EnableProgressBar = val == "true" || val == "1"
	}
	if val := os.Getenv("WORLDMIND_CONSOLE_COMPACT"); val != "" {
		cfg.CompactMode = val == "true" || val == "1"
	}
}

// LoadConfig loads configuration from path, merging onto DefaultConfig and
// then applying environment overrides. A missing file is not an error —
// it returns defaults (with env overrides applied).
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		applyConsoleEnvOverrides(&cfg.Console)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Unmarshal onto the already-defaulted struct so unset YAML fields keep
	// their default values rather than being zeroed.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyConsoleEnvOverrides(&cfg.Console)

	return cfg, nil
}

// Validate reports whether the configuration is internally consistent.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.RecursionLimit <= 0 {
		return fmt.Errorf("recursion_limit must be > 0, got %d", c.RecursionLimit)
	}

	validStrategies := map[string]bool{"parallel": true, "sequential": true}
	if !validStrategies[c.Scheduler.Strategy] {
		return fmt.Errorf("scheduler.strategy must be one of: parallel, sequential; got %q", c.Scheduler.Strategy)
	}
	if c.Scheduler.MaxParallel <= 0 {
		return fmt.Errorf("scheduler.max_parallel must be > 0, got %d", c.Scheduler.MaxParallel)
	}

	if c.Quality.ReviewScoreThreshold < 0 || c.Quality.ReviewScoreThreshold > 10 {
		return fmt.Errorf("quality.review_score_threshold must be between 0 and 10, got %d", c.Quality.ReviewScoreThreshold)
	}

	validBackends := map[string]bool{"docker": true, "remote": true}
	if !validBackends[c.Sandbox.Backend] {
		return fmt.Errorf("sandbox.backend must be one of: docker, remote; got %q", c.Sandbox.Backend)
	}
	if c.Sandbox.Backend == "remote" && c.Sandbox.RemoteURL == "" {
		return fmt.Errorf("sandbox.remote_url is required when sandbox.backend is \"remote\"")
	}

	validStores := map[string]bool{"sqlite": true, "file": true}
	if !validStores[c.Checkpoint.Store] {
		return fmt.Errorf("checkpoint.store must be one of: sqlite, file; got %q", c.Checkpoint.Store)
	}

	return nil
}
