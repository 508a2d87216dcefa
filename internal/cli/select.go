package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mediagen/internal/backend"
)

var (
	selectDuration time.Duration
	selectPriority string
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick a video backend for a duration and priority",
	RunE:  runSelect,
}

func init() {
	selectCmd.Flags().DurationVarP(&selectDuration, "duration", "d", 8*time.Second, "Target clip duration")
	selectCmd.Flags().StringVarP(&selectPriority, "priority", "p", "cost", "Priority (speed, quality, cost)")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	if selectDuration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	sel := backend.Select(selectDuration, backend.NormalizePriority(selectPriority))
	fmt.Printf("backend:        %s\n", sel.Backend)
	fmt.Printf("justification:  %s\n", sel.Justification)
	fmt.Printf("estimated time: %s\n", sel.EstimatedTime)
	fmt.Printf("estimated cost: $%.2f\n", sel.EstimatedCost)
	return nil
}
