package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for worldmind.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "worldmind",
		Short: "Orchestrate autonomous coding agents against a mission",
		Long: `Worldmind takes a natural-language mission request, turns it into a
product spec and a DAG of agent tasks, and executes that DAG wave by
wave in isolated sandboxes — merging granted work through a git
isolation engine and gating every task through a quality gate before
it's allowed to land.`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Path to config file (default: .worldmind/config.yaml)")

	root.AddCommand(newSubmitCommand())
	root.AddCommand(newResumeCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(newCancelCommand())

	return root
}
