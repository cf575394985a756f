package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/worldmind/worldmind/internal/models"
)

// ConsoleLogger logs mission progress to a writer, timestamp-prefixed and
// thread-safe. Color is enabled automatically when writer is os.Stdout or
// os.Stderr and that stream is a TTY.
type ConsoleLogger struct {
	writer   io.Writer
	logLevel string
	mu       sync.Mutex
	scheme   *colorScheme
}

// NewConsoleLogger creates a ConsoleLogger writing to writer at logLevel
// (trace/debug/info/warn/error; invalid or empty defaults to info).
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	level := normalizeLogLevel(logLevel)
	return &ConsoleLogger{
		writer:   writer,
		logLevel: level,
		scheme:   newColorScheme(isTerminal(writer)),
	}
}

func isTerminal(w io.Writer) bool {
	switch w {
	case os.Stdout:
		return isatty.IsTerminal(os.Stdout.Fd())
	case os.Stderr:
		return isatty.IsTerminal(os.Stderr.Fd())
	default:
		return false
	}
}

func (cl *ConsoleLogger) printf(level, format string, args ...interface{}) {
	if !shouldLog(cl.logLevel, level) {
		return
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	ts := time.Now().Format("15:04:05")
	fmt.Fprintf(cl.writer, "[%s] %s\n", ts, fmt.Sprintf(format, args...))
}

func (cl *ConsoleLogger) LogMissionTransition(missionID string, from, to models.MissionStatus) {
	cl.printf("info", "mission %s: %s -> %s", missionID, from, to)
}

func (cl *ConsoleLogger) LogWaveStart(missionID string, wave models.Wave) {
	cl.printf("info", "mission %s: wave %d starting (%d tasks)", missionID, wave.Index, len(wave.TaskIDs))
}

func (cl *ConsoleLogger) LogWaveComplete(missionID string, wave models.Wave, duration time.Duration) {
	cl.printf("info", "mission %s: wave %d complete in %s", missionID, wave.Index, duration.Round(time.Millisecond))
}

func (cl *ConsoleLogger) LogTaskDispatched(task models.Task) {
	cl.printf("debug", "task %s (%s): dispatched, iteration %d", task.ID, task.Agent, task.Iteration)
}

func (cl *ConsoleLogger) LogTaskResult(task models.Task, result models.DispatchResult) {
	if result.Succeeded() {
		cl.printf("info", "%s", formatColorizedField("task "+task.ID, "exit 0", cl.scheme))
		return
	}
	cl.mu.Lock()
	label := cl.scheme.fail.Sprintf("task %s failed (exit %d)", task.ID, result.ExitCode)
	cl.mu.Unlock()
	cl.printf("warn", "%s", label)
}

func (cl *ConsoleLogger) LogQualityDecision(task models.Task, decision models.QualityDecision) {
	if decision.Granted {
		cl.printf("info", "%s", formatColorizedField("task "+task.ID+" quality", "granted", cl.scheme))
		return
	}
	cl.printf("warn", "task %s quality denied (tests passed=%v, score=%d): next=%s",
		task.ID, decision.Tests.Passed, decision.Review.Score, decision.NextAction)
}

func (cl *ConsoleLogger) LogEscalation(taskID, reason string) {
	cl.printf("error", "task %s escalated: %s", taskID, reason)
}

func (cl *ConsoleLogger) LogMergeResolved(taskID string, resolved bool, retries int) {
	if resolved {
		cl.printf("info", "task %s merged after %d retr(y/ies)", taskID, retries)
		return
	}
	cl.printf("error", "task %s: unresolvable merge conflict after %d retries", taskID, retries)
}

func (cl *ConsoleLogger) LogSummary(mission *models.Mission) {
	cl.printf("info", "mission %s finished: status=%s tasks=%d", mission.ID, mission.Status, len(mission.Tasks))
}
