package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMissionStartsClassifying(t *testing.T) {
	m := NewMission("m1", "build a thing")
	assert.Equal(t, MissionClassifying, m.Status)
	assert.False(t, m.Status.Terminal())
}

func TestMissionTerminalStatuses(t *testing.T) {
	assert.True(t, MissionCompleted.Terminal())
	assert.True(t, MissionFailed.Terminal())
	assert.True(t, MissionCancelled.Terminal())
	assert.False(t, MissionExecuting.Terminal())
}

func TestMissionAllTasksCompleted(t *testing.T) {
	m := NewMission("m1", "req")
	m.Tasks = []Task{{ID: "t1"}, {ID: "t2"}}
	assert.False(t, m.AllTasksCompleted())

	m.MarkCompleted("t1")
	assert.False(t, m.AllTasksCompleted())

	m.MarkCompleted("t2")
	assert.True(t, m.AllTasksCompleted())
}
