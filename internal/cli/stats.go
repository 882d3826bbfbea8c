package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show level, XP totals, skills and the 30-day finance summary",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	now := d.Stats.Now()
	sum, err := d.Stats.Summary(ctx, user, now)
	if err != nil {
		return err
	}
	skills, err := d.Stats.Skills(ctx, user)
	if err != nil {
		return err
	}
	fin, err := d.Stats.Finance(ctx, user, now)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	x := sum.XPStats
	fmt.Fprintf(out, "Level %d  (%.2f / %d XP)\n", sum.Level, x.CurrentLevelProgress, x.NeededForNext)
	fmt.Fprintf(out, "Total %.2f  Month %.2f  Today %.2f\n", x.Total, x.Monthly, x.Today)

	if len(skills) > 0 {
		names := make([]string, 0, len(skills))
		for name := range skills {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SKILL\tXP")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%.2f\n", name, skills[name])
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "\n%s: income %.2f  expense %.2f  net %.2f\n",
		fin.Period, fin.TotalIncome, fin.TotalExpense, fin.Net)
	return nil
}
