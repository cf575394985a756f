// Package metrics exposes the counters, distributions, and timers named in
// spec §4.9. A single Registry is constructed once at process startup and
// passed explicitly into every component that needs to record a metric —
// there is no package-level singleton, unlike the teacher's
// sync.Once-backed Get().
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every Prometheus collector Worldmind records against,
// registered on its own *prometheus.Registry rather than the global
// default one, so multiple Registries (e.g. in tests) never collide.
type Registry struct {
	Prometheus *prometheus.Registry

	// Counters
	MissionsByStatus     *prometheus.CounterVec
	QualityGateDecisions *prometheus.CounterVec
	EscalationsByReason  *prometheus.CounterVec
	FileOverlapDeferrals prometheus.Counter
	MergeConflicts       *prometheus.CounterVec
	MergeRetrySuccesses  prometheus.Counter
	WorktreeOperations   *prometheus.CounterVec
	WaveExecutions       *prometheus.CounterVec

	// Distributions
	TaskIterationDepth    prometheus.Histogram
	ActiveWorktreesPerWave prometheus.Histogram
	TasksPerWave          prometheus.Histogram

	// Timers
	PlanningDuration prometheus.Histogram
	TaskDuration     *prometheus.HistogramVec
}

// New constructs a Registry with every collector registered against its
// own prometheus.Registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Registry{
		Prometheus: reg,

		MissionsByStatus: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldmind",
			Subsystem: "mission",
			Name:      "terminal_total",
			Help:      "Missions reaching a terminal status, labeled by that status.",
		}, []string{"status"}),

		QualityGateDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldmind",
			Subsystem: "quality",
			Name:      "gate_decisions_total",
			Help:      "Quality gate decisions, labeled granted/denied.",
		}, []string{"decision"}),

		EscalationsByReason: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldmind",
			Subsystem: "task",
			Name:      "escalations_total",
			Help:      "Task escalations, labeled by reason.",
		}, []string{"reason"}),

		FileOverlapDeferrals: f.NewCounter(prometheus.CounterOpts{
			Namespace: "worldmind",
			Subsystem: "scheduler",
			Name:      "file_overlap_deferrals_total",
			Help:      "Times a task was held back from a parallel wave due to a file-overlap claim.",
		}),

		MergeConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldmind",
			Subsystem: "git",
			Name:      "merge_conflicts_total",
			Help:      "Merge conflicts encountered, labeled by whether they were eventually resolved.",
		}, []string{"resolved"}),

		MergeRetrySuccesses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "worldmind",
			Subsystem: "git",
			Name:      "merge_retry_successes_total",
			Help:      "Merges that succeeded only after at least one rebase retry.",
		}),

		WorktreeOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldmind",
			Subsystem: "git",
			Name:      "worktree_operations_total",
			Help:      "Worktree lifecycle operations, labeled by operation and success.",
		}, []string{"operation", "success"}),

		WaveExecutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldmind",
			Subsystem: "scheduler",
			Name:      "wave_executions_total",
			Help:      "Waves executed, labeled by scheduling strategy.",
		}, []string{"strategy"}),

		TaskIterationDepth: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "worldmind",
			Subsystem: "task",
			Name:      "iteration_depth",
			Help:      "Number of iterations a task went through before reaching a completion status.",
			Buckets:   prometheus.LinearBuckets(0, 1, 10),
		}),

		ActiveWorktreesPerWave: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "worldmind",
			Subsystem: "scheduler",
			Name:      "active_worktrees_per_wave",
			Help:      "Count of simultaneously active worktrees during a wave.",
			Buckets:   prometheus.LinearBuckets(0, 1, 16),
		}),

		TasksPerWave: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "worldmind",
			Subsystem: "scheduler",
			Name:      "tasks_per_wave",
			Help:      "Count of tasks dispatched in a single wave.",
			Buckets:   prometheus.LinearBuckets(0, 1, 16),
		}),

		PlanningDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "worldmind",
			Subsystem: "mission",
			Name:      "planning_duration_seconds",
			Help:      "Wall-clock time spent in the PLANNING status.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),

		TaskDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "worldmind",
			Subsystem: "task",
			Name:      "duration_seconds",
			Help:      "Wall-clock time spent dispatching a task, labeled by agent tag.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"agent"}),
	}
}

// ObserveTaskDuration is a small convenience wrapper so callers don't need
// to import prometheus themselves just to convert a time.Duration.
func (r *Registry) ObserveTaskDuration(agent string, d time.Duration) {
	r.TaskDuration.WithLabelValues(agent).Observe(d.Seconds())
}
