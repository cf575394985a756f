package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldmind/worldmind/internal/models"
)

func TestNextWaveFirstWaveHasNoDependencies(t *testing.T) {
	tasks := []models.Task{
		{ID: "t1"},
		{ID: "t2", DependsOn: []string{"t1"}},
	}
	wave, err := NextWave(tasks, map[string]bool{}, models.StrategyParallel, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, wave)
}

func TestNextWaveAdvancesOnceDependencyCompletes(t *testing.T) {
	tasks := []models.Task{
		{ID: "t1"},
		{ID: "t2", DependsOn: []string{"t1"}},
	}
	wave, err := NextWave(tasks, map[string]bool{"t1": true}, models.StrategyParallel, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, wave)
}

func TestNextWaveResolvesAgentTagDependency(t *testing.T) {
	tasks := []models.Task{
		{ID: "t1", Agent: models.AgentReviewer},
		{ID: "t2", Agent: models.AgentReviewer},
		{ID: "t3", DependsOn: []string{"agent:reviewer"}},
	}
	wave, err := NextWave(tasks, map[string]bool{}, models.StrategyParallel, 4)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, wave)

	wave, err = NextWave(tasks, map[string]bool{"t1": true, "t2": true}, models.StrategyParallel, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"t3"}, wave)
}

func TestNextWaveDefersFileOverlapUnderParallelStrategy(t *testing.T) {
	tasks := []models.Task{
		{ID: "t1", TargetFiles: []string{"internal/api/handler.go"}},
		{ID: "t2", TargetFiles: []string{"handler.go"}},
	}
	wave, err := NextWave(tasks, map[string]bool{}, models.StrategyParallel, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, wave, "t2 should be deferred: handler.go is a suffix match of t1's file")
}

func TestNextWaveEmptyTargetFilesIsPermissive(t *testing.T) {
	tasks := []models.Task{
		{ID: "t1"},
		{ID: "t2"},
	}
	wave, err := NextWave(tasks, map[string]bool{}, models.StrategyParallel, 4)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, wave, "tasks with no declared files never conflict")
}

func TestNextWaveSequentialStrategyIgnoresOverlapButTakesOne(t *testing.T) {
	tasks := []models.Task{
		{ID: "t1", TargetFiles: []string{"a.go"}},
		{ID: "t2", TargetFiles: []string{"a.go"}},
	}
	wave, err := NextWave(tasks, map[string]bool{}, models.StrategySequential, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, wave)
}

func TestNextWaveRespectsMaxParallel(t *testing.T) {
	tasks := []models.Task{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
	wave, err := NextWave(tasks, map[string]bool{}, models.StrategyParallel, 2)
	require.NoError(t, err)
	assert.Len(t, wave, 2)
}

func TestNextWaveDetectsCycle(t *testing.T) {
	tasks := []models.Task{
		{ID: "t1", DependsOn: []string{"t2"}},
		{ID: "t2", DependsOn: []string{"t1"}},
	}
	_, err := NextWave(tasks, map[string]bool{}, models.StrategyParallel, 4)
	assert.Error(t, err)
}

func TestNextWaveRejectsDuplicateID(t *testing.T) {
	tasks := []models.Task{{ID: "t1"}, {ID: "t1"}}
	_, err := NextWave(tasks, map[string]bool{}, models.StrategyParallel, 4)
	assert.Error(t, err)
}

func TestNextWaveRejectsMissingDependency(t *testing.T) {
	tasks := []models.Task{{ID: "t1", DependsOn: []string{"ghost"}}}
	_, err := NextWave(tasks, map[string]bool{}, models.StrategyParallel, 4)
	assert.Error(t, err)
}

func TestNextWaveDeterministicTieBreakOnDeclaredOrder(t *testing.T) {
	tasks := []models.Task{{ID: "z"}, {ID: "a"}}
	wave, err := NextWave(tasks, map[string]bool{}, models.StrategyParallel, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a"}, wave)
}
