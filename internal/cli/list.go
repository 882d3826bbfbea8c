package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifeio/lifeio/internal/app/engagement"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recorded activities",
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	acts, err := d.Activities.List(cmd.Context(), user)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(acts) == 0 {
		fmt.Fprintln(out, "No activities yet. Run 'lifeio log <category> --start <time>' to add one.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tSTART\tEND\tXP")
	for _, a := range acts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n",
			a.ID,
			a.Category,
			a.StartTime.Format("2006-01-02 15:04"),
			a.EndTime.Format("15:04"),
			engagement.Round2(a.XPEarned),
		)
	}
	return w.Flush()
}
