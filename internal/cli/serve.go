package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/revisit/internal/lifecycle"
	"github.com/lazypower/revisit/internal/server"
	"github.com/lazypower/revisit/internal/vault"
)

var serveNoWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and watch the workspace",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not watch the workspace for changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	eng, seeded, err := e.openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Stop()
	if seeded {
		e.log.Info().Str("root", e.root).Msg("workspace seeded")
	}

	if err := eng.StartReminder(e.cfg.Review.Reminder); err != nil {
		return err
	}

	if !serveNoWatch {
		w, err := vault.NewWatcher(vault.WatcherConfig{
			Root:         e.root,
			Matcher:      e.matcher,
			RenameWindow: time.Duration(e.cfg.Workspace.DebounceMs) * time.Millisecond,
			Logger:       e.log,
			Sink: func(ev lifecycle.Event) {
				if _, err := eng.Handle(ctx, ev); err != nil {
					e.log.Debug().Err(err).Str("kind", string(ev.Kind())).Msg("workspace event not applied")
				}
			},
		})
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	srv := server.New(eng, VersionString(), e.log)
	addr := e.cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		e.log.Info().
			Str("addr", addr).
			Str("db", e.cfg.DatabasePath()).
			Str("root", e.root).
			Msg("revisit serving")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	e.log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
