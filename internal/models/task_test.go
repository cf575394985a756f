package models

import "testing"

import "github.com/stretchr/testify/assert"

func TestTaskEffectiveOnFailureDefaultsToRetry(t *testing.T) {
	task := &Task{}
	assert.Equal(t, ActionRetry, task.EffectiveOnFailure())

	task.OnFailure = ActionEscalate
	assert.Equal(t, ActionEscalate, task.EffectiveOnFailure())
}

func TestTaskEffectiveMaxIterationsDefault(t *testing.T) {
	task := &Task{}
	assert.Equal(t, DefaultMaxIterations, task.EffectiveMaxIterations())

	task.MaxIterations = 7
	assert.Equal(t, 7, task.EffectiveMaxIterations())
}

func TestTaskExhaustedRetries(t *testing.T) {
	task := &Task{MaxIterations: 2, Iteration: 1}
	assert.False(t, task.ExhaustedRetries())

	task.Iteration = 2
	assert.True(t, task.ExhaustedRetries())
}

func TestTaskHasDependency(t *testing.T) {
	task := &Task{DependsOn: []string{"t1", "agent:reviewer"}}
	assert.True(t, task.HasDependency("t1"))
	assert.True(t, task.HasDependency("agent:reviewer"))
	assert.False(t, task.HasDependency("t2"))
}
