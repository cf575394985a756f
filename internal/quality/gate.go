package quality

import "github.com/worldmind/worldmind/internal/models"

// DefaultReviewScoreThreshold is the spec's configuration default for
// reviewScoreThreshold (§6).
const DefaultReviewScoreThreshold = 7

// Gate evaluates tests and review feedback for one task iteration into a
// granted/not-granted decision with a next action, per spec §4.5.
type Gate struct {
	ScoreThreshold int
}

// NewGate constructs a Gate with the given threshold, or the spec default
// when threshold is 0.
func NewGate(threshold int) *Gate {
	if threshold <= 0 {
		threshold = DefaultReviewScoreThreshold
	}
	return &Gate{ScoreThreshold: threshold}
}

// Decide applies the gate: granted iff tests passed AND score >= threshold.
// When not granted, nextAction is task.EffectiveOnFailure(), promoted to
// ESCALATE if the task has exhausted its iteration budget.
func (g *Gate) Decide(task *models.Task, tests models.TestResult, review models.ReviewFeedback) models.QualityDecision {
	granted := tests.Passed && review.Score >= g.ScoreThreshold

	decision := models.QualityDecision{
		Granted: granted,
		Tests:   tests,
		Review:  review,
	}

	if granted {
		decision.Reason = "tests passed and review score met threshold"
		return decision
	}

	action := task.EffectiveOnFailure()
	if action == models.ActionRetry && task.ExhaustedRetries() {
		action = models.ActionEscalate
	}
	decision.NextAction = action

	switch {
	case !tests.Passed:
		decision.Reason = "tests failed"
	default:
		decision.Reason = "review score below threshold"
	}
	return decision
}
