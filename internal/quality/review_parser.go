package quality

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/worldmind/worldmind/internal/models"
)

// jsonResultRe unwraps a CLI-shelled collaborator's JSON envelope
// ({"type":"result","result":"..."}) the same way the review output from a
// task's agent process arrives wrapped, before the review text itself is
// parsed.
var jsonResultRe = regexp.MustCompile(`"result":\s*"([^"]*(?:\\.[^"]*)*)"`)

var scoreRe = regexp.MustCompile(`Score:\s*(\d+)\s*/\s*10`)

// unwrapJSONEnvelope extracts the "result" string field from a JSON-wrapped
// collaborator response, unescaping it, or returns output unchanged if it
// is not JSON-wrapped.
func unwrapJSONEnvelope(output string) string {
	if !strings.Contains(output, `"result"`) || !strings.Contains(output, `"type"`) {
		return output
	}
	m := jsonResultRe.FindStringSubmatch(output)
	if len(m) < 2 {
		return output
	}
	result := m[1]
	result = strings.ReplaceAll(result, `\"`, `"`)
	result = strings.ReplaceAll(result, `\n`, "\n")
	result = strings.ReplaceAll(result, `\\`, `\`)
	return result
}

// ParseReviewScore regex-extracts a "Score: X/10" line and the comment text
// following it, per spec §4.5. It never calls out to a collaborator — this
// is the deterministic, zero-network fallback extraction path.
func ParseReviewScore(output string) (score int, comments string) {
	text := unwrapJSONEnvelope(output)

	m := scoreRe.FindStringSubmatch(text)
	if m == nil {
		return 0, ""
	}
	score, _ = strconv.Atoi(m[1])

	lines := strings.Split(text, "\n")
	var commentLines []string
	foundScore := false
	for _, line := range lines {
		if strings.Contains(line, "Score:") {
			foundScore = true
			continue
		}
		if foundScore {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				commentLines = append(commentLines, trimmed)
			}
		}
	}
	comments = strings.Join(commentLines, "\n")
	return score, comments
}

// StructuredReview is what the LLM collaborator returns for a review
// extraction call: the review it performed, as structure, not a re-grade
// of the task's work — quality.Resolve never asks the collaborator to
// review twice, only to parse its own prior review text into fields.
type StructuredReview struct {
	Score    int
	Comments string
}

// ResolveReview combines the regex extraction with the LLM collaborator's
// structured extraction of the same review text. The LLM's score wins
// except in one case: when the LLM reports a score of 0 but the regex
// found a positive score in the raw text, the regex's score overrides it —
// a 0 from the LLM path most often means the collaborator failed to find
// the "Score:" line at all, and the regex match is reasonable evidence it
// is there.
func ResolveReview(rawOutput string, llm StructuredReview) models.ReviewFeedback {
	regexScore, regexComments := ParseReviewScore(rawOutput)

	if llm.Score == 0 && regexScore > 0 {
		return models.ReviewFeedback{Score: regexScore, Comments: regexComments, Source: "regex"}
	}
	comments := llm.Comments
	if comments == "" {
		comments = regexComments
	}
	return models.ReviewFeedback{Score: llm.Score, Comments: comments, Source: "llm"}
}
