package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/worldmind/worldmind/internal/models"
)

// FileLogger writes one NDJSON record per event to a timestamped run log
// under logDir, maintaining a latest.log symlink to the current run.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger under .worldmind/logs with level "info".
func NewFileLogger() (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(filepath.Join(".worldmind", "logs"), "info")
}

// NewFileLoggerWithDirAndLevel creates a FileLogger writing NDJSON records to
// a timestamped run file under logDir, filtering anything below logLevel.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.ndjson", timestamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("create symlink: %w", err)
	}

	return &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}, nil
}

// Close closes the underlying run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.runLog.Close()
}

func (fl *FileLogger) write(level, event string, fields map[string]interface{}) {
	if !shouldLog(fl.logLevel, level) {
		return
	}
	record := map[string]interface{}{
		"ts":    time.Now().Format(time.RFC3339Nano),
		"level": level,
		"event": event,
	}
	for k, v := range fields {
		record[k] = v
	}

	line, err := json.Marshal(record)
	if err != nil {
		return
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.runLog.Write(line)
	fl.runLog.Write([]byte("\n"))
}

func (fl *FileLogger) LogMissionTransition(missionID string, from, to models.MissionStatus) {
	fl.write("info", "mission_transition", map[string]interface{}{
		"mission_id": missionID,
		"from":       from,
		"to":         to,
	})
}

func (fl *FileLogger) LogWaveStart(missionID string, wave models.Wave) {
	fl.write("info", "wave_start", map[string]interface{}{
		"mission_id": missionID,
		"wave_index": wave.Index,
		"task_ids":   wave.TaskIDs,
	})
}

func (fl *FileLogger) LogWaveComplete(missionID string, wave models.Wave, duration time.Duration) {
	fl.write("info", "wave_complete", map[string]interface{}{
		"mission_id":  missionID,
		"wave_index":  wave.Index,
		"duration_ms": duration.Milliseconds(),
	})
}

func (fl *FileLogger) LogTaskDispatched(task models.Task) {
	fl.write("debug", "task_dispatched", map[string]interface{}{
		"task_id":   task.ID,
		"agent":     task.Agent,
		"iteration": task.Iteration,
	})
}

func (fl *FileLogger) LogTaskResult(task models.Task, result models.DispatchResult) {
	level := "info"
	if !result.Succeeded() {
		level = "warn"
	}
	fl.write(level, "task_result", map[string]interface{}{
		"task_id":    task.ID,
		"exit_code":  result.ExitCode,
		"timed_out":  result.TimedOut,
		"cancelled":  result.Cancelled,
		"duration_ms": result.Duration.Milliseconds(),
	})
}

func (fl *FileLogger) LogQualityDecision(task models.Task, decision models.QualityDecision) {
	level := "info"
	if !decision.Granted {
		level = "warn"
	}
	fl.write(level, "quality_decision", map[string]interface{}{
		"task_id":      task.ID,
		"granted":      decision.Granted,
		"next_action":  decision.NextAction,
		"tests_passed": decision.Tests.Passed,
		"review_score": decision.Review.Score,
		"reason":       decision.Reason,
	})
}

func (fl *FileLogger) LogEscalation(taskID, reason string) {
	fl.write("error", "escalation", map[string]interface{}{
		"task_id": taskID,
		"reason":  reason,
	})
}

func (fl *FileLogger) LogMergeResolved(taskID string, resolved bool, retries int) {
	level := "info"
	if !resolved {
		level = "error"
	}
	fl.write(level, "merge_resolved", map[string]interface{}{
		"task_id":  taskID,
		"resolved": resolved,
		"retries":  retries,
	})
}

func (fl *FileLogger) LogSummary(mission *models.Mission) {
	fl.write("info", "mission_summary", map[string]interface{}{
		"mission_id": mission.ID,
		"status":     mission.Status,
		"task_count": len(mission.Tasks),
	})
}
