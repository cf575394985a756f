package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasAllSubcommands(t *testing.T) {
	root := NewRootCommand()
	require.NotNil(t, root)

	names := make([]string, 0)
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"submit", "resume", "status", "cancel"}, names)
}

func TestRootCommandHelpMentionsMissions(t *testing.T) {
	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"--help"})

	_ = root.Execute()

	output := strings.ToLower(buf.String())
	assert.Contains(t, output, "mission")
	assert.Contains(t, output, "worldmind")
}

func TestSubmitRequiresArgs(t *testing.T) {
	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"submit"})

	err := root.Execute()
	assert.Error(t, err)
}

func TestResumeAndCancelRequireExactlyOneArg(t *testing.T) {
	for _, name := range []string{"resume", "cancel"} {
		root := NewRootCommand()
		buf := new(bytes.Buffer)
		root.SetOut(buf)
		root.SetErr(buf)
		root.SetArgs([]string{name, "a", "b"})

		err := root.Execute()
		assert.Error(t, err, "%s should reject more than one argument", name)
	}
}
