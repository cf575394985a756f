// Package logger provides Worldmind's mission-progress logging
// implementations: a colorized console sink and an NDJSON file sink. Both
// implement Logger and share the same level-filtering rules.
package logger

import "strings"

const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// normalizeLogLevel lowercases level and falls back to "info" for anything
// not recognized.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if _, ok := levelValues[normalized]; ok {
		return normalized
	}
	return "info"
}

var levelValues = map[string]int{
	"trace": levelTrace,
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

func logLevelToInt(level string) int {
	return levelValues[level]
}

// shouldLog reports whether a message at messageLevel should be emitted
// given configuredLevel, i.e. messageLevel >= configuredLevel.
func shouldLog(configuredLevel, messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(configuredLevel)
}
