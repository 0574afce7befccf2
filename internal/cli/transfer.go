package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/revisit/internal/engine"
	"github.com/lazypower/revisit/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write all records and settings as JSON",
	Long:  "Writes the snapshot to file, or to stdout when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, e *env, eng *engine.Engine) error {
			snap, err := eng.Export(ctx)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return store.EncodeSnapshot(cmd.OutOrStdout(), snap)
			}
			// Same atomic write the JSON store uses.
			if err := store.NewFile(args[0]).SaveSnapshot(ctx, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d records to %s\n", snap.Records.Len(), args[0])
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all records and settings from a JSON export",
	Long: "Reads a file written by `revisit export`, or the editor plugin's data.json\n" +
		"({settings: {UNUSED_DAYS_LIMIT}, unusedNotes: {...}}), and replaces the current\n" +
		"state with it. Settings missing from the file take their defaults.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		snap, err := store.DecodeSnapshot(f)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		return withEngine(func(ctx context.Context, e *env, eng *engine.Engine) error {
			if err := eng.Import(ctx, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", snap.Records.Len())
			return nil
		})
	},
}
