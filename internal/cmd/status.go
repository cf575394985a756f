package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/worldmind/worldmind/internal/models"
)

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <mission-id>",
		Short: "Show a mission's current status and progress",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatus,
	}
	cmd.Flags().Bool("spec", false, "Also print the mission's product spec")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "mission:     %s\n", mission.ID)
	fmt.Fprintf(out, "status:      %s\n", mission.Status)
	fmt.Fprintf(out, "request:     %s\n", mission.Request)
	fmt.Fprintf(out, "created:     %s\n", mission.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "updated:     %s\n", mission.UpdatedAt.Format(time.RFC3339))

	completed := 0
	for _, t := range mission.Tasks {
		if mission.CompletedTaskIDs[t.ID] {
			completed++
		}
	}
	if len(mission.Tasks) > 0 {
		fmt.Fprintf(out, "tasks:       %d/%d completed across %d wave(s)\n", completed, len(mission.Tasks), len(mission.Waves))
	}
	if mission.Status == models.MissionClarifying {
		fmt.Fprintf(out, "question:    %s\n", mission.ClarificationQuestion)
	}
	for _, e := range mission.Errors {
		fmt.Fprintf(out, "error:       %s\n", e)
	}

	showSpec, _ := cmd.Flags().GetBool("spec")
	if showSpec && mission.ProductSpec != "" {
		fmt.Fprintf(out, "\nproduct spec:\n\n%s\n", renderMarkdownForTerminal(mission.ProductSpec))
	}

	return nil
}

// renderMarkdownForTerminal walks the goldmark AST of src and renders a
// plain-text approximation suitable for a terminal: list items get a
// leading dash and headings/paragraphs/items are separated by blank lines.
// It does not attempt fidelity with goldmark's HTML renderer — the product
// spec only needs to be readable here, not typeset.
func renderMarkdownForTerminal(src string) string {
	source := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading:
			if entering {
				buf.WriteString(strings.Repeat("#", node.Level) + " ")
			} else {
				buf.WriteString("\n\n")
			}
		case *ast.ListItem:
			if entering {
				buf.WriteString("  - ")
			} else {
				buf.WriteString("\n")
			}
		case *ast.Paragraph:
			if !entering {
				buf.WriteString("\n\n")
			}
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteString("\n")
				}
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimRight(buf.String(), "\n") + "\n"
}
