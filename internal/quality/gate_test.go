package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worldmind/worldmind/internal/models"
)

func TestGateGrantsWhenTestsPassAndScoreMeetsThreshold(t *testing.T) {
	g := NewGate(7)
	task := &models.Task{}
	d := g.Decide(task, models.TestResult{Passed: true}, models.ReviewFeedback{Score: 7})
	assert.True(t, d.Granted)
}

func TestGateDeniesWhenTestsFail(t *testing.T) {
	g := NewGate(7)
	task := &models.Task{}
	d := g.Decide(task, models.TestResult{Passed: false}, models.ReviewFeedback{Score: 10})
	assert.False(t, d.Granted)
	assert.Equal(t, models.ActionRetry, d.NextAction)
}

func TestGateDeniesWhenScoreBelowThreshold(t *testing.T) {
	g := NewGate(7)
	task := &models.Task{}
	d := g.Decide(task, models.TestResult{Passed: true}, models.ReviewFeedback{Score: 6})
	assert.False(t, d.Granted)
}

func TestGatePromotesToEscalateWhenRetriesExhausted(t *testing.T) {
	g := NewGate(7)
	task := &models.Task{MaxIterations: 2, Iteration: 2}
	d := g.Decide(task, models.TestResult{Passed: false}, models.ReviewFeedback{Score: 0})
	assert.Equal(t, models.ActionEscalate, d.NextAction)
}

func TestGateHonorsExplicitOnFailure(t *testing.T) {
	g := NewGate(7)
	task := &models.Task{OnFailure: models.ActionFail}
	d := g.Decide(task, models.TestResult{Passed: false}, models.ReviewFeedback{Score: 0})
	assert.Equal(t, models.ActionFail, d.NextAction)
}

func TestNewGateUsesDefaultThreshold(t *testing.T) {
	g := NewGate(0)
	assert.Equal(t, DefaultReviewScoreThreshold, g.ScoreThreshold)
}
