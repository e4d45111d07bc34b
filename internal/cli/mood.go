package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindwell-app/mindwell/internal/daemon"
)

func init() {
	moodCmd.Flags().StringVar(&moodNote, "note", "", "Optional note to attach")
	moodCmd.Flags().StringSliceVar(&moodTags, "tag", nil, "Optional tags (repeatable)")
	rootCmd.AddCommand(moodCmd)
}

var (
	moodNote string
	moodTags []string
)

var moodCmd = &cobra.Command{
	Use:   "mood <score>",
	Short: "Log today's mood (1 = struggling … 5 = great)",
	Args:  cobra.ExactArgs(1),
	RunE:  runMood,
}

func runMood(cmd *cobra.Command, args []string) error {
	score, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("score must be a number 1-5: %q", args[0])
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := d.Mood.Log(d.Config.User.ID, score, moodTags, moodNote, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Mood logged. Streak: %d days", result.Progression.Streak.NewStreakCount)
	if result.Progression.Streak.DidIncrement {
		fmt.Print(" (+1!)")
	}
	fmt.Println()
	for _, a := range result.Progression.NewAchievements {
		fmt.Printf("Achievement unlocked: %s (+%d XP)\n", a.Name, a.RewardXP)
	}
	return nil
}
