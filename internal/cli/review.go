package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lazypower/revisit/internal/config"
	"github.com/lazypower/revisit/internal/engine"
	"github.com/lazypower/revisit/internal/lifecycle"
	"github.com/lazypower/revisit/internal/review"
)

// --- init command ---

var initWriteConfig bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the store and record every note in the workspace",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()
	out := cmd.OutOrStdout()

	if initWriteConfig {
		path := flagConfig
		if path == "" {
			path = config.DefaultPath()
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "config exists: %s\n", path)
		} else {
			cfg := e.cfg
			cfg.Workspace.Root = e.root
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote config: %s\n", path)
		}
	}

	ctx := context.Background()
	eng, seeded, err := e.openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Stop()

	snap, err := eng.Export(ctx)
	if err != nil {
		return err
	}
	if seeded {
		fmt.Fprintf(out, "Tracking %d notes under %s\n", snap.Records.Len(), e.root)
	} else {
		fmt.Fprintf(out, "Already initialized: %d notes tracked\n", snap.Records.Len())
	}
	fmt.Fprintf(out, "  store: %s (%s)\n", e.cfg.DatabasePath(), e.cfg.Database.Driver)
	return nil
}

// --- pick command ---

var (
	pickTouch bool
	pickAbs   bool
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick a note to review, favoring the stalest",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *env, eng *engine.Engine) error {
			out := cmd.OutOrStdout()
			_, rec, err := eng.Pick(ctx)
			if errors.Is(err, review.ErrNothingDue) {
				fmt.Fprintln(out, "All caught up. Nothing to review.")
				return nil
			}
			if err != nil {
				return err
			}
			if pickTouch {
				if _, err := eng.Handle(ctx, lifecycle.Opened{Path: rec.Path}); err != nil {
					return err
				}
			}
			if pickAbs {
				fmt.Fprintln(out, filepath.Join(e.root, filepath.FromSlash(rec.Path)))
				return nil
			}
			fmt.Fprintln(out, rec.Path)
			return nil
		})
	},
}

// --- due command ---

var dueJSON bool

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List notes due for review, grouped by last access",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *env, eng *engine.Engine) error {
			sess, err := eng.Session(ctx)
			if sess == nil {
				return err
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			if dueJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sess)
			}
			printDue(cmd.OutOrStdout(), sess)
			return nil
		})
	},
}

func printDue(out io.Writer, sess *review.Session) {
	if sess.CaughtUp {
		fmt.Fprintln(out, "All caught up. Nothing to review.")
	} else {
		fmt.Fprintf(out, "## Due for review (%d)\n", sess.TotalDue)
		for _, g := range sess.Groups {
			fmt.Fprintf(out, "\n%s\n", g.Label)
			for _, r := range g.Records {
				fmt.Fprintf(out, "  %s\n", r.Path)
			}
		}
	}

	if len(sess.Recent) > 0 {
		fmt.Fprintf(out, "\n## Recently reviewed\n")
		for _, r := range sess.Recent {
			fmt.Fprintf(out, "  %s  %s\n", review.DateLabel(r.LastAccessed, sess.GeneratedAt.Location()), r.Path)
		}
	}
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show review goals and totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *env, eng *engine.Engine) error {
			sess, err := eng.Session(ctx)
			if sess == nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tracked: %d  Due: %d  Ignored: %d\n", sess.Tracked, sess.TotalDue, sess.Ignored)
			fmt.Fprintf(out, "Unused after: %d days\n", sess.Settings.UnusedDaysLimit)
			if err != nil {
				fmt.Fprintf(out, "Goals unavailable: %v\n", err)
				return nil
			}
			p := sess.Progress
			fmt.Fprintf(out, "This week: %d/%d (%.1f%%)\n", p.WeeklyCount, p.WeeklyTarget, p.WeeklyPct)
			fmt.Fprintf(out, "Today:     %d/%d (%.1f%%)\n", p.DailyCount, p.DailyTarget, p.DailyPct)
			return nil
		})
	},
}

func init() {
	initCmd.Flags().BoolVar(&initWriteConfig, "write-config", false, "also write a config file with the resolved settings")
	pickCmd.Flags().BoolVar(&pickTouch, "touch", false, "record the picked note as opened")
	pickCmd.Flags().BoolVar(&pickAbs, "abs", false, "print an absolute path")
	dueCmd.Flags().BoolVar(&dueJSON, "json", false, "print the session as JSON")
}
