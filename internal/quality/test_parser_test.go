package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTestOutputJUnitStyle(t *testing.T) {
	r := ParseTestOutput("Tests run: 12, Failures: 2")
	assert.False(t, r.Passed)
	assert.Equal(t, 12, r.Total)
	assert.Equal(t, 2, r.Failed)
}

func TestParseTestOutputJUnitStyleAllPassed(t *testing.T) {
	r := ParseTestOutput("Tests run: 12, Failures: 0")
	assert.True(t, r.Passed)
}

func TestParseTestOutputPassedFailedStyle(t *testing.T) {
	r := ParseTestOutput("8 passed, 1 failed")
	assert.False(t, r.Passed)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 9, r.Total)
}

func TestParseTestOutputBuildFailure(t *testing.T) {
	r := ParseTestOutput("go build ./...\n# cannot find package \"foo\"")
	assert.False(t, r.Passed)
}

func TestParseTestOutputDefaultsToPass(t *testing.T) {
	r := ParseTestOutput("nothing recognizable here")
	assert.True(t, r.Passed)
}
