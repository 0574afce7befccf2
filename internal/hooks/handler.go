// Package hooks lets editors report file activity to revisit. A hook sends
// the event to a running server and, when none is reachable, applies it to
// the local store directly.
package hooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/lazypower/revisit/internal/lifecycle"
	"github.com/lazypower/revisit/internal/record"
)

// Options wires a hook invocation to its surroundings.
type Options struct {
	Client    *Client
	Trackable func(rel string, isDir bool) bool
	// Normalize turns editor paths (often absolute) into record keys.
	Normalize func(path string) (string, error)
	// Local applies the event without a server. Nil means events are
	// dropped while the server is down.
	Local func(ev lifecycle.Event) error
}

// Handle reads the hook input for event and delivers it. Events about
// untracked paths are not errors.
func Handle(event string, args []string, stdin io.Reader, opts Options) error {
	kind, err := EventKind(event)
	if err != nil {
		return err
	}
	input, err := ReadInput(kind, args, stdin)
	if err != nil {
		return err
	}
	if opts.Normalize != nil {
		if input, err = input.normalize(opts.Normalize); err != nil {
			return err
		}
	}
	req := input.Request(kind, opts.Trackable)
	ev, err := req.Event()
	if err != nil {
		return err
	}

	client := opts.Client
	if client == nil {
		client = NewClient()
	}

	if client.Healthy() {
		body, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		if _, err := client.Post("/api/events", body); err != nil {
			return err
		}
		return nil
	}

	// Server down: degrade to a local write.
	if opts.Local == nil {
		return nil
	}
	if err := opts.Local(ev); err != nil && !errors.Is(err, record.ErrNotFound) {
		return fmt.Errorf("apply %s locally: %w", kind, err)
	}
	return nil
}
