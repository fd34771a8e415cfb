package batch

import (
	"context"

	"codeberg.org/snonux/treetranslate/internal/progress"
)

// Handle controls a run started with Runner.Start
type Handle struct {
	progress *progress.Channel
	cancel   context.CancelFunc
	done     chan struct{}

	// Written by the worker before done is closed
	summary Summary
	err     error
}

// Progress returns the run's progress channel
func (h *Handle) Progress() *progress.Channel {
	return h.progress
}

// Cancel asks the worker to stop after the current file. Files already
// written are left in place.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed when the worker has finished
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run ends and returns its summary
func (h *Handle) Wait() (Summary, error) {
	<-h.done
	return h.summary, h.err
}
