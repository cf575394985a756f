package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/worldmind/worldmind/internal/models"
	"github.com/worldmind/worldmind/internal/stategraph"
)

func newResumeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume <mission-id>",
		Short: "Resume a mission paused at CLARIFYING or AWAITING_APPROVAL",
		Long: `Resume reloads a mission from its last checkpoint, records the answer
or approval given, and runs the state graph forward from there.`,
		Args: cobra.ExactArgs(1),
		RunE: runResume,
	}

	cmd.Flags().String("answer", "", "Answer to the mission's clarification question")
	cmd.Flags().Bool("approve", false, "Approve the mission's plan")
	cmd.Flags().Duration("timeout", time.Hour, "Maximum wall-clock time for this resume call")

	return cmd
}

func runResume(cmd *cobra.Command, args []string) error {
	missionID := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	d, err := wireDeps(cfg)
	if err != nil {
		return err
	}
	defer d.store.Close()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	mission, err := loadMission(ctx, d, missionID)
	if err != nil {
		return err
	}
	if mission.Status.Terminal() {
		return fmt.Errorf("mission %s already reached terminal status %s", mission.ID, mission.Status)
	}

	answer, _ := cmd.Flags().GetString("answer")
	approve, _ := cmd.Flags().GetBool("approve")

	if mission.Status == models.MissionClarifying {
		if answer == "" {
			return fmt.Errorf("mission %s is awaiting clarification %q — pass --answer", mission.ID, mission.ClarificationQuestion)
		}
		mission.ClarificationAnswer = answer
	}
	if mission.Status == models.MissionAwaitingApproval {
		if !approve {
			return fmt.Errorf("mission %s is awaiting plan approval — pass --approve", mission.ID)
		}
		mission.Approved = true
	}

	runErr := d.driver.Run(ctx, mission)
	recordTerminalMetric(d, mission)

	fmt.Fprintf(cmd.OutOrStdout(), "mission %s: %s\n", mission.ID, mission.Status)

	if errors.Is(runErr, stategraph.ErrAwaitingInput) {
		if mission.Status == models.MissionClarifying {
			fmt.Fprintf(cmd.OutOrStdout(), "awaiting clarification: %s\n", mission.ClarificationQuestion)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "awaiting plan approval\n")
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
