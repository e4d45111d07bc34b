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
	challengesCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(challengesCmd)
}

var challengesCmd = &cobra.Command{
	Use:   "challenges",
	Short: "Show the current challenge board",
	RunE:  runChallenges,
}

func runChallenges(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	summary, err := d.Progression.Summarize(d.Config.User.ID, time.Now())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPROGRESS\tXP\tSTATUS")
	for _, ch := range summary.Challenges {
		status := "in progress"
		switch {
		case ch.Claimed:
			status = "claimed"
		case ch.Claimable:
			status = "ready to claim!"
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f / %.0f\t%d\t%s\n",
			ch.Def.ID, ch.Def.Title, ch.Progress.Progress, ch.Progress.Target,
			ch.Def.RewardXP, status)
	}
	return w.Flush()
}

var claimCmd = &cobra.Command{
	Use:   "claim <challenge-id>",
	Short: "Claim a completed challenge's XP",
	Args:  cobra.ExactArgs(1),
	RunE:  runClaim,
}

func runClaim(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	awarded, err := d.Progression.Claim(d.Config.User.ID, args[0], time.Now())
	if err != nil {
		return err
	}
	if awarded == 0 {
		fmt.Println("Already claimed this period.")
		return nil
	}
	fmt.Printf("Claimed! +%d XP\n", awarded)
	return nil
}
