package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/worldmind/worldmind/internal/models"
)

func newCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <mission-id>",
		Short: "Cancel a non-terminal mission",
		Long: `Cancel loads the mission's last checkpoint, marks it CANCELLED, and
records that as a new checkpoint. It does not stop any sandbox dispatch
already in flight — a mission is only safe to cancel between waves, at
CLARIFYING, or at AWAITING_APPROVAL.`,
		Args: cobra.ExactArgs(1),
		RunE: runCancel,
	}
}

func runCancel(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	mission, err := loadMission(ctx, d, missionID)
	if err != nil {
		return err
	}
	if mission.Status.Terminal() {
		return fmt.Errorf("mission %s already reached terminal status %s", mission.ID, mission.Status)
	}

	mission.Status = models.MissionCancelled
	mission.UpdatedAt = time.Now()
	if err := d.appendCheckpoint(ctx, mission, "cancel"); err != nil {
		return fmt.Errorf("checkpoint cancellation: %w", err)
	}
	recordTerminalMetric(d, mission)

	fmt.Fprintf(cmd.OutOrStdout(), "mission %s: %s\n", mission.ID, mission.Status)
	return nil
}
