// Package orchestrator wires the mission pipeline's node implementations —
// classify, upload, clarify, specify, plan, await-approval, execute — on
// top of the state graph driver (spec §4.1). It is the one place that
// knows about every other package: scheduler, git engine, sandbox,
// quality gate, oscillation detector, logger, metrics, and event bus all
// meet here.
package orchestrator

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/worldmind/worldmind/internal/config"
	"github.com/worldmind/worldmind/internal/eventbus"
	"github.com/worldmind/worldmind/internal/gitengine"
	"github.com/worldmind/worldmind/internal/llm"
	"github.com/worldmind/worldmind/internal/logger"
	"github.com/worldmind/worldmind/internal/metrics"
	"github.com/worldmind/worldmind/internal/models"
	"github.com/worldmind/worldmind/internal/oscillation"
	"github.com/worldmind/worldmind/internal/quality"
	"github.com/worldmind/worldmind/internal/sandbox"
	"github.com/worldmind/worldmind/internal/stategraph"
)

// Collaborator is the subset of llm.Collaborator the orchestrator calls
// through. Declaring it locally (rather than depending on the concrete
// struct everywhere) lets tests substitute a fake without shelling out to
// a real agent binary.
type Collaborator interface {
	StructuredCall(ctx context.Context, req llm.Request) (json.RawMessage, error)
}

// Orchestrator holds every dependency a mission-pipeline node needs. One
// Orchestrator is constructed at process startup and its nodes registered
// on a single stategraph.Driver.
type Orchestrator struct {
	Config           *config.Config
	Collaborator     Collaborator
	Sandbox          sandbox.Backend
	Gate             *quality.Gate
	Oscillation      *oscillation.Detector
	Metrics          *metrics.Registry
	Logger           logger.Logger
	Bus              *eventbus.Bus
	CredentialLookup sandbox.BoundCredentialLookup

	// newEngine constructs the git isolation engine for one mission's
	// execute node. It defaults to gitengine.New (the real git binary);
	// tests substitute one backed by a fake gitengine.CommandRunner.
	newEngine func(workspacePath string) *gitengine.Engine

	// oscillationMu guards Oscillation: a mission's tasks within one wave
	// dispatch concurrently, but Detector is not itself safe for
	// concurrent use.
	oscillationMu sync.Mutex
}

// New constructs an Orchestrator from its dependencies.
func New(cfg *config.Config, collaborator Collaborator, backend sandbox.Backend, reg *metrics.Registry, log logger.Logger, bus *eventbus.Bus) *Orchestrator {
	return &Orchestrator{
		Config:       cfg,
		Collaborator: collaborator,
		Sandbox:      backend,
		Gate:         quality.NewGate(cfg.Quality.ReviewScoreThreshold),
		Oscillation:  oscillation.New(),
		Metrics:      reg,
		Logger:       log,
		Bus:          bus,
		newEngine:    gitengine.New,
	}
}

// RegisterNodes binds every mission-pipeline node to driver.
func (o *Orchestrator) RegisterNodes(driver *stategraph.Driver) {
	driver.RegisterNode(models.MissionClassifying, stategraph.Node{Name: "classify", Apply: o.classify})
	driver.RegisterNode(models.MissionUploading, stategraph.Node{Name: "upload_context", Apply: o.upload})
	driver.RegisterNode(models.MissionClarifying, stategraph.Node{Name: "clarify", Apply: o.clarify})
	driver.RegisterNode(models.MissionSpecifying, stategraph.Node{Name: "generate_spec", Apply: o.specify})
	driver.RegisterNode(models.MissionPlanning, stategraph.Node{Name: "plan", Apply: o.plan})
	driver.RegisterNode(models.MissionAwaitingApproval, stategraph.Node{Name: "await_approval", Apply: o.awaitApproval})
	driver.RegisterNode(models.MissionExecuting, stategraph.Node{Name: "execute", Apply: o.execute})
}

// publishTask emits a task-scoped event on the bus, mirroring how
// stategraph.Driver publishes mission-scoped transitions.
func (o *Orchestrator) publishTask(kind models.EventKind, missionID, taskID string, payload interface{}) {
	if o.Bus == nil {
		return
	}
	o.Bus.Publish(models.Event{
		Kind:      kind,
		MissionID: missionID,
		TaskID:    taskID,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}
