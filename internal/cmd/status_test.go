package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldmind/worldmind/internal/models"
)

func TestRenderMarkdownForTerminal(t *testing.T) {
	src := "# Scope\n\nBuild a thing.\n\n## Acceptance Criteria\n\n- it compiles\n- it ships\n"
	out := renderMarkdownForTerminal(src)

	assert.Contains(t, out, "# Scope")
	assert.Contains(t, out, "## Acceptance Criteria")
	assert.Contains(t, out, "Build a thing.")
	assert.Contains(t, out, "  - it compiles")
	assert.Contains(t, out, "  - it ships")
}

func TestStatusReportsMissionFields(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	mission := models.NewMission("mission-status-1", "build a thing")
	mission.Status = models.MissionClarifying
	mission.ClarificationQuestion = "which repo?"
	seedCheckpoint(t, dir, mission)

	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"--config", cfgPath, "status", mission.ID})

	require.NoError(t, root.Execute())

	output := buf.String()
	assert.Contains(t, output, mission.ID)
	assert.Contains(t, output, "CLARIFYING")
	assert.Contains(t, output, "which repo?")
}

func TestStatusUnknownMissionIsError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"--config", cfgPath, "status", "does-not-exist"})

	err := root.Execute()
	assert.Error(t, err)
}
