package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lifeio/lifeio/internal/app/activity"
	"github.com/lifeio/lifeio/internal/app/engagement"
)

func init() {
	logCmd.Flags().StringVar(&logStart, "start", "", "Start time, ISO-8601 (required)")
	logCmd.Flags().StringVar(&logEnd, "end", "", "End time, ISO-8601 (default: end of the start day)")
	rootCmd.AddCommand(logCmd)
}

var (
	logStart string
	logEnd   string
)

var logCmd = &cobra.Command{
	Use:   "log CATEGORY",
	Short: "Record an activity interval",
	Long: `Record an activity. Overlapping activities are replaced and the end is
clipped to midnight of the start day.`,
	Args: cobra.ExactArgs(1),
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	a, err := d.Activities.Record(cmd.Context(), activity.RecordInput{
		UserID:   user,
		Category: args[0],
		Start:    logStart,
		End:      logEnd,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s %s → %s  (%+.2f XP)\n",
		a.Category,
		a.StartTime.Format("2006-01-02 15:04"),
		a.EndTime.Format("15:04"),
		engagement.Round2(a.XPEarned),
	)
	return nil
}
