package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/revisit/internal/engine"
	"github.com/lazypower/revisit/internal/lifecycle"
)

var ignoreCmd = &cobra.Command{
	Use:   "ignore <path>",
	Short: "Toggle whether a note is excluded from review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *env, eng *engine.Engine) error {
			path, err := e.relPath(args[0])
			if err != nil {
				return err
			}
			rec, err := eng.ToggleIgnore(ctx, path)
			if err != nil {
				return err
			}
			if rec.Ignored {
				fmt.Fprintf(cmd.OutOrStdout(), "ignored %s\n", rec.Path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "unignored %s\n", rec.Path)
			}
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <path>",
	Short: "Forget when a note was last opened so it is due again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *env, eng *engine.Engine) error {
			path, err := e.relPath(args[0])
			if err != nil {
				return err
			}
			rec, changed, err := eng.ResetUsage(ctx, path)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", rec.Path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged (%s)\n", rec.Path, rec.State())
			}
			return nil
		})
	},
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Record that a note was opened",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *env, eng *engine.Engine) error {
			path, err := e.relPath(args[0])
			if err != nil {
				return err
			}
			changed, err := eng.Handle(ctx, lifecycle.Opened{Path: path})
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "opened %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is ignored, not recorded\n", path)
			}
			return nil
		})
	},
}
