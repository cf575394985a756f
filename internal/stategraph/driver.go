package stategraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/worldmind/worldmind/internal/checkpoint"
	"github.com/worldmind/worldmind/internal/errs"
	"github.com/worldmind/worldmind/internal/eventbus"
	"github.com/worldmind/worldmind/internal/models"
)

// RecursionLimit bounds how many node invocations a single Run call will
// perform before giving up, protecting against pathological transition
// loops (spec §4.1/§7).
const RecursionLimit = 100

// ErrAwaitingInput is returned by Run (wrapped) when the node for the
// mission's current status reports it cannot proceed without external
// input — CLARIFYING without an answered clarification, or
// AWAITING_APPROVAL without a recorded approval. Per spec §4.1, both
// states are a "terminal pause": the mission is checkpointed exactly as
// it stands (status unchanged, not FAILED) and Run returns control to the
// caller, who resumes the mission later (after recording the answer or
// approval) via the same Run call against the reloaded mission.
var ErrAwaitingInput = errors.New("stategraph: mission awaiting external input")

// Driver runs a Mission through its registered Nodes, following
// validTransitions, checkpointing after every transition, and publishing a
// models.Event for every status change. One Driver is constructed once at
// startup and reused across missions; it holds no per-mission state of its
// own, and depends on nothing but the Store and Bus passed to New.
type Driver struct {
	nodes         map[models.MissionStatus]Node
	store         checkpoint.Store
	bus           *eventbus.Bus
	recursionCap  int
}

// New constructs a Driver backed by store for checkpointing and bus for
// event publication.
func New(store checkpoint.Store, bus *eventbus.Bus) *Driver {
	return &Driver{
		nodes:        make(map[models.MissionStatus]Node),
		store:        store,
		bus:          bus,
		recursionCap: RecursionLimit,
	}
}

// RegisterNode binds node to the mission status it performs the work for.
// Run looks up this table to find which node handles the mission's current
// status.
func (d *Driver) RegisterNode(status models.MissionStatus, node Node) {
	d.nodes[status] = node
}

// Run drives mission forward until it reaches a terminal status, a node
// returns an error, the context is cancelled, or the recursion budget is
// exhausted. Every status change is checkpointed before Run proceeds to the
// next node, so a crash mid-mission can always resume from the last
// recorded checkpoint.
func (d *Driver) Run(ctx context.Context, mission *models.Mission) error {
	var lastStepID string
	if cp, ok, err := d.store.Latest(ctx, mission.ID); err != nil {
		return fmt.Errorf("load latest checkpoint for mission %s: %w", mission.ID, err)
	} else if ok {
		lastStepID = cp.StepID
	}

	for {
		if mission.Status.Terminal() {
			return nil
		}

		if err := ctx.Err(); err != nil {
			from := mission.Status
			mission.Status = models.MissionCancelled
			mission.UpdatedAt = time.Now()
			stepID, cpErr := d.checkpoint(ctx, mission, "cancel", lastStepID)
			if cpErr == nil {
				lastStepID = stepID
			}
			d.publish(mission, "cancel", from, models.MissionCancelled, nil)
			return err
		}

		if mission.RecursionCount >= d.recursionCap {
			from := mission.Status
			mission.Status = models.MissionFailed
			mission.UpdatedAt = time.Now()
			_, _ = d.checkpoint(ctx, mission, "recursion_exhausted", lastStepID)
			d.publish(mission, "recursion_exhausted", from, models.MissionFailed, nil)
			return &errs.RecursionExhaustedError{MissionID: mission.ID, Limit: d.recursionCap}
		}

		node, ok := d.nodes[mission.Status]
		if !ok {
			return fmt.Errorf("stategraph: no node registered for status %s", mission.Status)
		}

		mission.RecursionCount++
		event, err := node.Apply(ctx, mission)
		if errors.Is(err, ErrAwaitingInput) {
			mission.UpdatedAt = time.Now()
			stepID, cpErr := d.checkpoint(ctx, mission, node.Name, lastStepID)
			if cpErr == nil {
				lastStepID = stepID
			}
			d.publish(mission, node.Name, mission.Status, mission.Status, err)
			return fmt.Errorf("node %s: %w", node.Name, err)
		}
		if err != nil {
			from := mission.Status
			mission.Status = models.MissionFailed
			mission.UpdatedAt = time.Now()
			stepID, cpErr := d.checkpoint(ctx, mission, node.Name, lastStepID)
			if cpErr == nil {
				lastStepID = stepID
			}
			d.publish(mission, node.Name, from, mission.Status, err)
			return fmt.Errorf("node %s: %w", node.Name, err)
		}

		to, ok := nextStatus(mission.Status, event)
		if !ok {
			return fmt.Errorf("stategraph: node %s emitted invalid event %q from status %s", node.Name, event, mission.Status)
		}

		from := mission.Status
		mission.Status = to
		mission.UpdatedAt = time.Now()

		stepID, err := d.checkpoint(ctx, mission, node.Name, lastStepID)
		if err != nil {
			return fmt.Errorf("checkpoint after node %s: %w", node.Name, err)
		}
		lastStepID = stepID

		d.publish(mission, node.Name, from, to, nil)
	}
}

func (d *Driver) checkpoint(ctx context.Context, mission *models.Mission, stepName, parentStepID string) (string, error) {
	snapshot, err := json.Marshal(mission)
	if err != nil {
		return "", fmt.Errorf("marshal mission snapshot: %w", err)
	}
	stepID := stepName + "-" + uuid.New().String()
	cp := models.Checkpoint{
		MissionID:     mission.ID,
		StepID:        stepID,
		ParentStepID:  parentStepID,
		StateSnapshot: snapshot,
		CreatedAt:     time.Now(),
	}
	if err := d.store.Append(ctx, cp); err != nil {
		return "", err
	}
	return stepID, nil
}

func (d *Driver) publish(mission *models.Mission, nodeName string, from, to models.MissionStatus, faultOrErr interface{}) {
	if d.bus == nil {
		return
	}
	payload := map[string]interface{}{
		"node": nodeName,
		"from": string(from),
		"to":   string(to),
	}
	if faultOrErr != nil {
		if err, ok := faultOrErr.(error); ok {
			payload["error"] = err.Error()
		}
	}
	d.bus.Publish(models.Event{
		Kind:      models.EventMissionStatusChanged,
		MissionID: mission.ID,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}
