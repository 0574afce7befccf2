package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/revisit/internal/engine"
)

var (
	settingsDays   int
	settingsWeekly int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change review settings",
	Long: "With no flags, prints the persisted settings. --days sets how many days\n" +
		"without an open make a note due; --weekly sets the weekly review goal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *env, eng *engine.Engine) error {
			settings, err := eng.Settings(ctx)
			if err != nil {
				return err
			}
			changed := false
			if cmd.Flags().Changed("days") {
				settings.UnusedDaysLimit = settingsDays
				changed = true
			}
			if cmd.Flags().Changed("weekly") {
				settings.WeeklyReviewCount = settingsWeekly
				changed = true
			}
			if changed {
				if err := eng.UpdateSettings(ctx, settings); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "unused_days_limit:   %d\n", settings.UnusedDaysLimit)
			fmt.Fprintf(out, "weekly_review_count: %d\n", settings.WeeklyReviewCount)
			return nil
		})
	},
}

func init() {
	settingsCmd.Flags().IntVar(&settingsDays, "days", 0, "days without an open before a note is due")
	settingsCmd.Flags().IntVar(&settingsWeekly, "weekly", 0, "notes to review per week")
}
