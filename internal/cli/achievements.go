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
	rootCmd.AddCommand(achievementsCmd)
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and their unlock status",
	RunE:  runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	summary, err := d.Progression.Summarize(d.Config.User.ID, time.Now())
	if err != nil {
		return err
	}

	unlockedAt := make(map[string]time.Time, len(summary.Achievements))
	for _, u := range summary.Achievements {
		unlockedAt[u.ID] = u.UnlockedAt
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRARITY\tXP\tSTATUS")
	for _, a := range d.Progression.Engine().Achievements() {
		status := "locked"
		if at, ok := unlockedAt[a.ID]; ok {
			status = "unlocked " + at.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s %s\t%s\t%d\t%s\n", a.Icon, a.Name, a.Rarity, a.RewardXP, status)
	}
	return w.Flush()
}
