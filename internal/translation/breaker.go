package translation

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig controls when the breaker stops calling the remote
type BreakerConfig struct {
	// ConsecutiveFailures of fatal kind that open the breaker
	ConsecutiveFailures uint32
	// Timeout in the open state before a probe call is allowed
	Timeout time.Duration
	// OnStateChange is told about every transition
	OnStateChange func(from, to string)
}

// BreakerRemote wraps a Remote with a circuit breaker. Only fatal
// failures count; rate limits are left to the Client's backoff. While
// open every call fails fatally, so documents fall back without waiting
// on an endpoint that is down.
type BreakerRemote struct {
	remote Remote
	cb     *gobreaker.CircuitBreaker
}

// NewBreakerRemote wraps remote
func NewBreakerRemote(remote Remote, config BreakerConfig) *BreakerRemote {
	if config.ConsecutiveFailures == 0 {
		config.ConsecutiveFailures = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}

	settings := gobreaker.Settings{
		Name:        remote.Name(),
		MaxRequests: 1,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return Classify(err) != KindFatal
		},
	}
	if config.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			config.OnStateChange(from.String(), to.String())
		}
	}

	return &BreakerRemote{
		remote: remote,
		cb:     gobreaker.NewCircuitBreaker(settings),
	}
}

// Generate calls the wrapped remote unless the breaker is open
func (b *BreakerRemote) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		out, err := b.remote.Generate(ctx, prompt)
		return out, tagContextError(ctx, err)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return "", NewFatalError(fmt.Errorf("%s unavailable: %w", b.remote.Name(), err))
	}
	if err != nil {
		return "", err
	}

	return out.(string), nil
}

// Name returns the wrapped provider name
func (b *BreakerRemote) Name() string {
	return b.remote.Name()
}

// IsAvailable delegates to the wrapped remote
func (b *BreakerRemote) IsAvailable() error {
	return b.remote.IsAvailable()
}

// State returns the breaker state name
func (b *BreakerRemote) State() string {
	return b.cb.State().String()
}
