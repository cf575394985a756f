// Package scheduler computes execution waves for a mission's task DAG: the
// next batch of task IDs ready to dispatch given what has already
// completed, a scheduling strategy, and a concurrency cap.
package scheduler

import (
	"fmt"
	"strings"

	"github.com/worldmind/worldmind/internal/models"
)

const agentDepPrefix = "agent:"

// graph is the resolved dependency structure for a task set: each task ID
// maps to the set of task IDs it must wait on, after expanding any
// "agent:<tag>" references to the concrete task IDs carrying that tag.
type graph struct {
	order   []string // task IDs in declared order, for deterministic tie-breaks
	tasks   map[string]*models.Task
	waitsOn map[string][]string
}

// buildGraph resolves dependency references (literal task ID or
// "agent:<tag>") into a concrete wait-list per task.
func buildGraph(tasks []models.Task) (*graph, error) {
	g := &graph{
		tasks:   make(map[string]*models.Task, len(tasks)),
		waitsOn: make(map[string][]string, len(tasks)),
	}

	byTag := make(map[models.AgentTag][]string)
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			return nil, fmt.Errorf("task at index %d has empty ID", i)
		}
		if _, dup := g.tasks[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task ID %q", t.ID)
		}
		g.tasks[t.ID] = t
		g.order = append(g.order, t.ID)
		if t.Agent != "" {
			byTag[t.Agent] = append(byTag[t.Agent], t.ID)
		}
	}

	for _, id := range g.order {
		t := g.tasks[id]
		var waits []string
		for _, dep := range t.DependsOn {
			if strings.HasPrefix(dep, agentDepPrefix) {
				tag := models.AgentTag(strings.TrimPrefix(dep, agentDepPrefix))
				for _, depID := range byTag[tag] {
					if depID != id {
						waits = append(waits, depID)
					}
				}
				continue
			}
			if _, exists := g.tasks[dep]; !exists {
				return nil, fmt.Errorf("task %s depends on non-existent task %s", id, dep)
			}
			waits = append(waits, dep)
		}
		g.waitsOn[id] = waits
	}

	return g, nil
}

// hasCycle detects circular dependencies via DFS with color marking,
// mirroring the three-color (white/gray/black) traversal used throughout
// this codebase for dependency graphs.
func (g *graph) hasCycle() bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	colors := make(map[string]int, len(g.order))

	var dfs func(string) bool
	dfs = func(node string) bool {
		colors[node] = gray
		for _, dep := range g.waitsOn[node] {
			switch colors[dep] {
			case gray:
				return true
			case white:
				if dfs(dep) {
					return true
				}
			}
		}
		colors[node] = black
		return false
	}

	for _, id := range g.order {
		if colors[id] == white {
			if dfs(id) {
				return true
			}
		}
	}
	return false
}
