package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/worldmind/worldmind/internal/checkpoint"
	"github.com/worldmind/worldmind/internal/config"
	"github.com/worldmind/worldmind/internal/eventbus"
	"github.com/worldmind/worldmind/internal/llm"
	"github.com/worldmind/worldmind/internal/logger"
	"github.com/worldmind/worldmind/internal/metrics"
	"github.com/worldmind/worldmind/internal/models"
	"github.com/worldmind/worldmind/internal/orchestrator"
	"github.com/worldmind/worldmind/internal/sandbox"
	"github.com/worldmind/worldmind/internal/stategraph"
)

// deps holds every long-lived component a mission command drives through.
// Built once per invocation; store.Close() is the caller's responsibility.
type deps struct {
	config  *config.Config
	store   checkpoint.Store
	bus     *eventbus.Bus
	driver  *stategraph.Driver
	metrics *metrics.Registry
	log     logger.Logger
}

// loadConfig resolves the --config flag (falling back to the default
// location) the same way for every subcommand.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = ".worldmind/config.yaml"
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildCheckpointStore constructs the store named by cfg.Checkpoint.Store.
func buildCheckpointStore(cfg *config.Config) (checkpoint.Store, error) {
	switch cfg.Checkpoint.Store {
	case "sqlite":
		return checkpoint.NewSQLiteStore(cfg.Checkpoint.SQLitePath)
	case "file":
		return checkpoint.NewFileStore(cfg.Checkpoint.FileDir)
	default:
		return nil, fmt.Errorf("unknown checkpoint store %q", cfg.Checkpoint.Store)
	}
}

// buildSandboxBackend constructs the backend named by cfg.Sandbox.Backend.
func buildSandboxBackend(cfg *config.Config) (sandbox.Backend, error) {
	switch cfg.Sandbox.Backend {
	case "docker":
		return sandbox.NewDockerBackend()
	case "remote":
		return sandbox.NewRemoteBackend(cfg.Sandbox.RemoteURL, os.Getenv("WORLDMIND_REMOTE_API_KEY")), nil
	default:
		return nil, fmt.Errorf("unknown sandbox backend %q", cfg.Sandbox.Backend)
	}
}

// wireDeps builds every component a mission command needs, rooted at cfg.
// Callers must Close() deps.store when done.
func wireDeps(cfg *config.Config) (*deps, error) {
	store, err := buildCheckpointStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("build checkpoint store: %w", err)
	}

	backend, err := buildSandboxBackend(cfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build sandbox backend: %w", err)
	}

	bus := eventbus.New()
	reg := metrics.New()
	log := logger.NewConsoleLogger(os.Stdout, cfg.LogLevel)
	collaborator := llm.New("")

	driver := stategraph.New(store, bus)
	orch := orchestrator.New(cfg, collaborator, backend, reg, log, bus)
	orch.RegisterNodes(driver)

	return &deps{
		config:  cfg,
		store:   store,
		bus:     bus,
		driver:  driver,
		metrics: reg,
		log:     log,
	}, nil
}

// loadMission reconstructs a mission from its most recent checkpoint.
func loadMission(ctx context.Context, d *deps, missionID string) (*models.Mission, error) {
	cp, ok, err := d.store.Latest(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint for mission %s: %w", missionID, err)
	}
	if !ok {
		return nil, fmt.Errorf("no checkpoint found for mission %s", missionID)
	}
	var mission models.Mission
	if err := json.Unmarshal(cp.StateSnapshot, &mission); err != nil {
		return nil, fmt.Errorf("parse checkpoint snapshot: %w", err)
	}
	return &mission, nil
}

// appendCheckpoint records a new checkpoint for mission outside of a
// driver.Run call — used by `cancel`, which changes mission state without
// running it through a node.
func (d *deps) appendCheckpoint(ctx context.Context, mission *models.Mission, stepName string) error {
	var parentStepID string
	if cp, ok, err := d.store.Latest(ctx, mission.ID); err == nil && ok {
		parentStepID = cp.StepID
	}
	snapshot, err := json.Marshal(mission)
	if err != nil {
		return fmt.Errorf("marshal mission snapshot: %w", err)
	}
	return d.store.Append(ctx, models.Checkpoint{
		MissionID:     mission.ID,
		StepID:        stepName + "-" + uuid.NewString(),
		ParentStepID:  parentStepID,
		StateSnapshot: snapshot,
		CreatedAt:     time.Now(),
	})
}

// recordTerminalMetric increments MissionsByStatus once a mission has run
// to a terminal status — the one metric no node records on its own since
// it spans every node's outcome rather than one node's.
func recordTerminalMetric(d *deps, mission *models.Mission) {
	if d.metrics == nil || !mission.Status.Terminal() {
		return
	}
	d.metrics.MissionsByStatus.WithLabelValues(string(mission.Status)).Inc()
}
