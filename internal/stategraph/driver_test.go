package stategraph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldmind/worldmind/internal/checkpoint"
	"github.com/worldmind/worldmind/internal/eventbus"
	"github.com/worldmind/worldmind/internal/models"
)

func constNode(name string, event Event) Node {
	return Node{Name: name, Apply: func(ctx context.Context, m *models.Mission) (Event, error) {
		return event, nil
	}}
}

func newTestDriver(t *testing.T) (*Driver, checkpoint.Store) {
	t.Helper()
	store, err := checkpoint.NewFileStore(t.TempDir())
	require.NoError(t, err)
	d := New(store, eventbus.New())
	return d, store
}

func TestRunHappyPathSkipsOptionalStates(t *testing.T) {
	d, store := newTestDriver(t)
	d.RegisterNode(models.MissionClassifying, constNode("classify", EvUploaded))
	d.RegisterNode(models.MissionUploading, constNode("upload", EvSpecified))
	d.RegisterNode(models.MissionSpecifying, constNode("specify", EvPlanned))
	d.RegisterNode(models.MissionPlanning, constNode("plan", EvApproved))
	d.RegisterNode(models.MissionExecuting, constNode("execute", EvWavesComplete))

	mission := models.NewMission("m1", "build a thing")
	err := d.Run(context.Background(), mission)
	require.NoError(t, err)
	assert.Equal(t, models.MissionCompleted, mission.Status)

	history, err := store.History(context.Background(), "m1")
	require.NoError(t, err)
	assert.Len(t, history, 5)
}

func TestRunVisitsClarifyingAndAwaitingApproval(t *testing.T) {
	d, _ := newTestDriver(t)
	d.RegisterNode(models.MissionClassifying, constNode("classify", EvUploaded))
	d.RegisterNode(models.MissionUploading, constNode("upload", EvNeedsClarification))
	d.RegisterNode(models.MissionClarifying, constNode("clarify", EvClarified))
	d.RegisterNode(models.MissionSpecifying, constNode("specify", EvPlanned))
	d.RegisterNode(models.MissionPlanning, constNode("plan", EvNeedsApproval))
	d.RegisterNode(models.MissionAwaitingApproval, constNode("approve", EvApproved))
	d.RegisterNode(models.MissionExecuting, constNode("execute", EvWavesComplete))

	mission := models.NewMission("m2", "build a thing")
	err := d.Run(context.Background(), mission)
	require.NoError(t, err)
	assert.Equal(t, models.MissionCompleted, mission.Status)
}

func TestRunNodeErrorFailsMission(t *testing.T) {
	d, _ := newTestDriver(t)
	boom := errors.New("sandbox crashed")
	d.RegisterNode(models.MissionClassifying, Node{Name: "classify", Apply: func(ctx context.Context, m *models.Mission) (Event, error) {
		return "", boom
	}})

	mission := models.NewMission("m3", "build a thing")
	err := d.Run(context.Background(), mission)
	require.Error(t, err)
	assert.Equal(t, models.MissionFailed, mission.Status)
}

func TestRunInvalidEventIsError(t *testing.T) {
	d, _ := newTestDriver(t)
	d.RegisterNode(models.MissionClassifying, constNode("classify", Event("not_a_real_event")))

	mission := models.NewMission("m4", "build a thing")
	err := d.Run(context.Background(), mission)
	require.Error(t, err)
}

func TestRunMissingNodeIsError(t *testing.T) {
	d, _ := newTestDriver(t)
	mission := models.NewMission("m5", "build a thing")
	err := d.Run(context.Background(), mission)
	require.Error(t, err)
}

func TestRunExhaustsRecursionBudget(t *testing.T) {
	d, _ := newTestDriver(t)
	d.recursionCap = 3
	// A node that transitions back and forth would be invalid per the
	// transition table, so instead loop CLASSIFYING -> UPLOADING is not
	// cyclic; to exercise the cap we register a self-consuming sequence
	// that never reaches a terminal status within the cap.
	d.RegisterNode(models.MissionClassifying, constNode("classify", EvUploaded))
	d.RegisterNode(models.MissionUploading, constNode("upload", EvNeedsClarification))
	d.RegisterNode(models.MissionClarifying, constNode("clarify", EvClarified))

	mission := models.NewMission("m6", "build a thing")
	err := d.Run(context.Background(), mission)
	require.Error(t, err)
	assert.Equal(t, models.MissionFailed, mission.Status)
}

func TestRunCancelledContextCancelsMission(t *testing.T) {
	d, _ := newTestDriver(t)
	d.RegisterNode(models.MissionClassifying, constNode("classify", EvUploaded))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mission := models.NewMission("m7", "build a thing")
	err := d.Run(ctx, mission)
	require.Error(t, err)
	assert.Equal(t, models.MissionCancelled, mission.Status)
}

func TestRunAwaitingInputPausesWithoutFailingMission(t *testing.T) {
	d, store := newTestDriver(t)
	d.RegisterNode(models.MissionClassifying, constNode("classify", EvUploaded))
	d.RegisterNode(models.MissionUploading, constNode("upload", EvNeedsClarification))
	d.RegisterNode(models.MissionClarifying, Node{Name: "clarify", Apply: func(ctx context.Context, m *models.Mission) (Event, error) {
		return "", ErrAwaitingInput
	}})

	mission := models.NewMission("m9", "build a thing")
	err := d.Run(context.Background(), mission)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAwaitingInput)
	assert.Equal(t, models.MissionClarifying, mission.Status, "a pause must not demote the mission to FAILED")

	history, err := store.History(context.Background(), "m9")
	require.NoError(t, err)
	assert.NotEmpty(t, history, "the pause must still be checkpointed so resume can pick it up")
}

func TestRunAlreadyTerminalIsNoop(t *testing.T) {
	d, _ := newTestDriver(t)
	mission := models.NewMission("m8", "build a thing")
	mission.Status = models.MissionCompleted

	err := d.Run(context.Background(), mission)
	require.NoError(t, err)
}
