package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindwell-app/mindwell/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your level, XP, streak, and rank",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	summary, err := d.Progression.Summarize(d.Config.User.ID, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("%s — Level %d (%s)\n\n",
		summary.Profile.DisplayName, summary.Level.Level, summary.Rank)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total XP\t%d\n", summary.Profile.TotalXP)
	fmt.Fprintf(w, "Progress\t%d / %d XP to level %d\n",
		summary.Level.XPIntoLevel,
		summary.Level.XPIntoLevel+summary.Level.XPToNextLevel,
		summary.Level.Level+1)
	fmt.Fprintf(w, "Streak\t%d days\n", summary.Counters.CurrentStreakDays)
	fmt.Fprintf(w, "Assessments\t%d\n", summary.Counters.AssessmentsCompleted)
	fmt.Fprintf(w, "Mindfulness\t%d minutes\n", summary.Counters.TotalMindfulnessMinutes)
	fmt.Fprintf(w, "Wellness score\t%.0f%%\n", summary.Counters.WellnessScorePercent)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(summary.Tracks) > 0 {
		fmt.Println("\nActivity tracks:")
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tLEVEL\tXP\tPRESTIGE")
		for _, t := range summary.Tracks {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", t.Name, t.Level, t.TotalXP, t.Prestige)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
