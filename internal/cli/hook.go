package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/revisit/internal/hooks"
	"github.com/lazypower/revisit/internal/lifecycle"
)

var hookCmd = &cobra.Command{
	Use:   "hook <created|renamed|deleted|opened> [path] [new-path]",
	Short: "Report an editor file event",
	Long: "Reads {\"path\", \"old_path\", \"is_dir\"} JSON from stdin, or takes paths as\n" +
		"arguments (old then new for renames). Sends the event to a running server,\n" +
		"or applies it to the local store when none answers. Always exits 0.",
	Args: cobra.RangeArgs(1, 3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runHook(args[0], args[1:]); err != nil {
			hooks.ExitError(err)
		}
	},
}

func runHook(event string, args []string) error {
	e, err := loadEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	client := hooks.NewClient()
	if os.Getenv("REVISIT_URL") == "" {
		client = hooks.NewClientURL("http://" + e.cfg.ListenAddr())
	}

	return hooks.Handle(event, args, os.Stdin, hooks.Options{
		Client:    client,
		Trackable: e.matcher.Trackable,
		Normalize: e.relPath,
		Local: func(ev lifecycle.Event) error {
			ctx := context.Background()
			eng, _, err := e.openEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Stop()
			_, err = eng.Handle(ctx, ev)
			return err
		},
	})
}
