package progress

import "sync"

// Severity of a progress message
type Severity int

const (
	Info Severity = iota
	Warn
	Error
	Success
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// State is one progress snapshot
type State struct {
	Completed int
	Total     int
	Message   string
	Severity  Severity
	File      string // Relative path of the file the message is about, if any
	Final     bool   // Set on the terminal summary state
}

// Channel carries State snapshots from one producer to one observer with
// latest-value-wins semantics. Intermediate states may be coalesced when
// the observer is slow, but the last state published before Close is
// always delivered. Completed never decreases in what is delivered.
type Channel struct {
	mu      sync.Mutex
	latest  State
	has     bool
	closed  bool
	updates chan State
	done    chan struct{}
}

// NewChannel creates an open channel
func NewChannel() *Channel {
	return &Channel{
		updates: make(chan State, 1),
		done:    make(chan struct{}),
	}
}

// Publish replaces the pending snapshot with s. It never blocks.
// Publishing after Close is ignored.
func (c *Channel) Publish(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.has && s.Completed < c.latest.Completed {
		s.Completed = c.latest.Completed
	}
	if s.Total > 0 && s.Completed > s.Total {
		s.Completed = s.Total
	}

	c.latest = s
	c.has = true

	// Only publishers send, and they hold mu, so after draining there is room
	select {
	case <-c.updates:
	default:
	}
	c.updates <- s
}

// Notify republishes the latest counters with a new message
func (c *Channel) Notify(message string, severity Severity) {
	c.mu.Lock()
	s := c.latest
	c.mu.Unlock()

	s.Message = message
	s.Severity = severity
	s.Final = false
	c.Publish(s)
}

// Latest returns the most recent snapshot, false if nothing was published yet
func (c *Channel) Latest() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest, c.has
}

// Updates returns the receive side. It is closed after Close once the
// pending snapshot has been read.
func (c *Channel) Updates() <-chan State {
	return c.updates
}

// Done is closed by Close
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close ends the stream. Further Publish calls are dropped.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.updates)
	close(c.done)
}
