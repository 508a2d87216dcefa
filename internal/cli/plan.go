package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediagen/internal/backend"
	"mediagen/internal/providers/plan"
)

var (
	planDuration time.Duration
	planPriority string
	planLocale   string
)

var planCmd = &cobra.Command{
	Use:   "plan <brief>",
	Short: "Expand a brief into a structured generation plan",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().DurationVarP(&planDuration, "duration", "d", 12*time.Second, "Target total duration")
	planCmd.Flags().StringVarP(&planPriority, "priority", "p", "cost", "Priority (speed, quality, cost)")
	planCmd.Flags().StringVarP(&planLocale, "locale", "l", "en", "Locale for titles and prompts")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	result, err := app.Planner.Plan(cmd.Context(), plan.Request{
		Brief:    strings.Join(args, " "),
		Duration: planDuration,
		Priority: backend.NormalizePriority(planPriority),
		Locale:   planLocale,
	})
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	fmt.Printf("%s (%s)\n", result.Title, result.Provider)
	for i, scene := range result.Scenes {
		fmt.Printf("%d. [%.1fs] %s\n", i+1, scene.Seconds, scene.Prompt)
	}
	if len(result.Keywords) > 0 {
		fmt.Printf("keywords: %s\n", strings.Join(result.Keywords, ", "))
	}
	return nil
}
