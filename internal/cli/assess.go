package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindwell-app/mindwell/internal/daemon"
	"github.com/mindwell-app/mindwell/internal/domain"
)

func init() {
	rootCmd.AddCommand(assessCmd)
}

var assessCmd = &cobra.Command{
	Use:   "assess <phq9|gad7> <answers>",
	Short: "Score a standardized check-in",
	Long: `Score a PHQ-9 or GAD-7 check-in from comma-separated answers,
each 0-3. Example:

  mindwell assess gad7 0,1,2,1,0,1,2`,
	Args: cobra.ExactArgs(2),
	RunE: runAssess,
}

func runAssess(cmd *cobra.Command, args []string) error {
	parts := strings.Split(args[1], ",")
	answers := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("answers must be numbers 0-3: %q", p)
		}
		answers = append(answers, n)
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := d.Assessment.Submit(d.Config.User.ID, domain.AssessmentKind(args[0]), answers, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("%s score: %d (%s)\n",
		strings.ToUpper(string(result.Assessment.Kind)),
		result.Assessment.Score, result.Assessment.Severity)
	for _, a := range result.Progression.NewAchievements {
		fmt.Printf("Achievement unlocked: %s (+%d XP)\n", a.Name, a.RewardXP)
	}
	return nil
}
