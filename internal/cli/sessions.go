package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindwell-app/mindwell/internal/app/mindfulness"
	"github.com/mindwell-app/mindwell/internal/daemon"
)

func init() {
	breatheCmd.Flags().StringVar(&sessionKind, "kind", "breathing", "Session kind (breathing, meditation, body_scan)")
	rootCmd.AddCommand(breatheCmd)
}

var sessionKind string

var breatheCmd = &cobra.Command{
	Use:   "breathe <minutes>",
	Short: "Record a completed mindfulness session",
	Args:  cobra.ExactArgs(1),
	RunE:  runBreathe,
}

func runBreathe(cmd *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("minutes must be a number: %q", args[0])
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := d.Mindfulness.Complete(d.Config.User.ID, sessionKind, minutes, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Session recorded: %d minutes of %s (+%d XP)\n",
		minutes, sessionKind, int64(minutes)*mindfulness.XPPerMinute)
	for _, a := range result.Progression.NewAchievements {
		fmt.Printf("Achievement unlocked: %s (+%d XP)\n", a.Name, a.RewardXP)
	}
	return nil
}
