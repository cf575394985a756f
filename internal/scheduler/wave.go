package scheduler

import (
	"fmt"

	"github.com/worldmind/worldmind/internal/models"
)

// DefaultMaxParallel mirrors the spec's configuration default for
// maxParallel (§6).
const DefaultMaxParallel = 4

// NextWave is the scheduler's pure function: given the full task list, the
// set of task IDs that have already completed, a scheduling strategy, and a
// concurrency cap, it returns the ordered list of task IDs ready to
// dispatch right now. It does not mutate tasks or completedIDs, and it
// returns an error only for a structurally invalid task set (duplicate ID,
// missing dependency, or a dependency cycle) — an empty result with a nil
// error means nothing is currently ready: every task is completed,
// cancelled, already dispatched, or waiting on an unfinished dependency.
// File-overlap deferral alone never empties a wave, since the first ready
// task is always admitted.
func NextWave(tasks []models.Task, completedIDs map[string]bool, strategy models.SchedulingStrategy, maxParallel int) ([]string, error) {
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallel
	}

	g, err := buildGraph(tasks)
	if err != nil {
		return nil, err
	}
	if g.hasCycle() {
		return nil, fmt.Errorf("circular dependency detected among tasks")
	}

	var ready []string
	for _, id := range g.order {
		t := g.tasks[id]
		if t.Status == models.TaskCompleted || t.Status == models.TaskCancelled || completedIDs[id] {
			continue
		}
		if t.Status == models.TaskDispatched {
			continue
		}
		if allSatisfied(g.waitsOn[id], completedIDs) {
			ready = append(ready, id)
		}
	}

	if strategy == models.StrategySequential {
		if len(ready) == 0 {
			return nil, nil
		}
		return ready[:1], nil
	}

	return selectParallelWave(g, ready, maxParallel), nil
}

func allSatisfied(waitsOn []string, completedIDs map[string]bool) bool {
	for _, dep := range waitsOn {
		if !completedIDs[dep] {
			return false
		}
	}
	return true
}

// selectParallelWave walks ready tasks in declared order, admitting each
// one unless it overlaps files with a task already admitted to this wave.
// A deferred task is simply left out — it becomes ready again (and gets
// re-evaluated) the next time NextWave is called, once the wave it lost to
// has completed and freed up its files.
func selectParallelWave(g *graph, ready []string, maxParallel int) []string {
	var wave []string
	var admitted []*models.Task
	for _, id := range ready {
		if len(wave) >= maxParallel {
			break
		}
		t := g.tasks[id]
		conflicts := false
		for _, other := range admitted {
			if taskFileOverlap(t, other) {
				conflicts = true
				break
			}
		}
		if conflicts {
			continue
		}
		wave = append(wave, id)
		admitted = append(admitted, t)
	}
	return wave
}
