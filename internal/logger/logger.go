package logger

import (
	"time"

	"github.com/worldmind/worldmind/internal/models"
)

// Logger is the sink for human-facing mission progress. Both ConsoleLogger
// and FileLogger implement it; the orchestrator calls its methods directly
// as each step happens.
type Logger interface {
	LogMissionTransition(missionID string, from, to models.MissionStatus)
	LogWaveStart(missionID string, wave models.Wave)
	LogWaveComplete(missionID string, wave models.Wave, duration time.Duration)
	LogTaskDispatched(task models.Task)
	LogTaskResult(task models.Task, result models.DispatchResult)
	LogQualityDecision(task models.Task, decision models.QualityDecision)
	LogEscalation(taskID, reason string)
	LogMergeResolved(taskID string, resolved bool, retries int)
	LogSummary(mission *models.Mission)
}
