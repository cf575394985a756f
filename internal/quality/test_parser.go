// Package quality implements the quality gate (spec §4.5): parsing a
// task's raw test output and code-review output into structured results,
// then deciding whether the task's work is granted or needs to retry,
// escalate, or fail.
package quality

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/worldmind/worldmind/internal/models"
)

var (
	junitStyleRe = regexp.MustCompile(`Tests run:\s*(\d+),\s*Failures:\s*(\d+)`)
	passedRe     = regexp.MustCompile(`(\d+)\s+passed`)
	failedRe     = regexp.MustCompile(`(\d+)\s+failed`)
)

// buildFailurePhrases are substrings that indicate the test command never
// ran to completion (a build or compile failure), checked only once the
// two numeric patterns above have both failed to match.
var buildFailurePhrases = []string{
	"build failed",
	"compilation error",
	"cannot find package",
	"syntax error",
}

// ParseTestOutput applies the quality gate's ordered pattern attempts to
// raw test runner output, per spec §4.5:
//  1. "Tests run: N, Failures: M" (JUnit-style summary)
//  2. "N passed" / "N failed" (go test -v style summary)
//  3. a build-failure phrase anywhere in the output
//  4. default to passed, on the theory that a task which ran no
//     recognizable test command declared no failure
func ParseTestOutput(output string) models.TestResult {
	if m := junitStyleRe.FindStringSubmatch(output); m != nil {
		total, _ := strconv.Atoi(m[1])
		failed, _ := strconv.Atoi(m[2])
		return models.TestResult{Passed: failed == 0, Total: total, Failed: failed, Summary: m[0]}
	}

	passedMatch := passedRe.FindStringSubmatch(output)
	failedMatch := failedRe.FindStringSubmatch(output)
	if passedMatch != nil || failedMatch != nil {
		passed, failed := 0, 0
		if passedMatch != nil {
			passed, _ = strconv.Atoi(passedMatch[1])
		}
		if failedMatch != nil {
			failed, _ = strconv.Atoi(failedMatch[1])
		}
		summary := strings.TrimSpace(strings.Join(nonEmpty(passedMatch, failedMatch), " "))
		return models.TestResult{Passed: failed == 0, Total: passed + failed, Failed: failed, Summary: summary}
	}

	lower := strings.ToLower(output)
	for _, phrase := range buildFailurePhrases {
		if strings.Contains(lower, phrase) {
			return models.TestResult{Passed: false, Summary: phrase}
		}
	}

	return models.TestResult{Passed: true, Summary: "no recognizable test summary; defaulting to pass"}
}

func nonEmpty(matches ...[]string) []string {
	var out []string
	for _, m := range matches {
		if m != nil {
			out = append(out, m[0])
		}
	}
	return out
}
