package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/worldmind/worldmind/internal/models"
	"github.com/worldmind/worldmind/internal/stategraph"
)

func newSubmitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <request>",
		Short: "Submit a new mission request",
		Long: `Submit starts a fresh mission from a natural-language request: it runs
the mission through classification, context upload, specification, and
planning, stopping at CLARIFYING or AWAITING_APPROVAL if the mission needs
external input before it can execute.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSubmit,
	}

	cmd.Flags().String("repo", "", "Repository URL the mission's tasks operate against")
	cmd.Flags().String("base-branch", "main", "Branch new worktrees are based on and merged back into")
	cmd.Flags().Bool("approval-mode", false, "Route planning through AWAITING_APPROVAL instead of straight to execution")
	cmd.Flags().Duration("timeout", time.Hour, "Maximum wall-clock time for this submit call")

	return cmd
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	d, err := wireDeps(cfg)
	if err != nil {
		return err
	}
	defer d.store.Close()

	repo, _ := cmd.Flags().GetString("repo")
	baseBranch, _ := cmd.Flags().GetString("base-branch")
	approvalMode, _ := cmd.Flags().GetBool("approval-mode")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	mission := models.NewMission(uuid.NewString(), strings.Join(args, " "))
	mission.RepoURL = repo
	if baseBranch != "" {
		mission.BaseBranch = baseBranch
	}
	mission.ApprovalMode = approvalMode

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	runErr := d.driver.Run(ctx, mission)
	recordTerminalMetric(d, mission)

	fmt.Fprintf(cmd.OutOrStdout(), "mission %s: %s\n", mission.ID, mission.Status)

	if errors.Is(runErr, stategraph.ErrAwaitingInput) {
		if mission.Status == models.MissionClarifying {
			fmt.Fprintf(cmd.OutOrStdout(), "awaiting clarification: %s\nresume with: worldmind resume %s --answer \"...\"\n", mission.ClarificationQuestion, mission.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "awaiting plan approval\nresume with: worldmind resume %s --approve\n", mission.ID)
		}
		return nil
	}
	if runErr != nil {
		return fmt.Errorf("mission %s failed: %w", mission.ID, runErr)
	}

	if d.log != nil {
		d.log.LogSummary(mission)
	}
	return nil
}
