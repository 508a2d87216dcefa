package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mediagen/internal/backend"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the available generation backends",
	RunE:  runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tPRIORITY\tCOST/S\tLOCAL\tFIDELITY")
	for _, spec := range append(backend.ImageBackends(), backend.VideoBackends()...) {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%.2f\t%t\t%s\n",
			spec.ID, spec.Kind, spec.Priority, spec.CostPerSecond, spec.Local, spec.Fidelity)
	}
	return w.Flush()
}
