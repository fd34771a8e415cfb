package translation

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 5 * time.Second
)

// Remote is the generative-text service a Client delegates to
type Remote interface {
	// Generate sends prompt and returns the raw model output. Rate and
	// quota failures must be tagged with NewTransientError.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the remote is configured (credentials, model)
	IsAvailable() error
}

// Request is one document to translate
type Request struct {
	Content        string
	TargetLanguage string
}

// Result is the outcome of a translation. When Succeeded is false,
// Content is the original input and Err says why.
type Result struct {
	Content   string
	Succeeded bool
	Attempts  int
	Err       error
}

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryFunc is told about every backoff before it starts
type RetryFunc func(attempt int, delay time.Duration, err error)

// Config holds the retry settings of a Client
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       SleepFunc
	OnRetry     RetryFunc
}

// DefaultConfig returns the default retry settings
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Sleep:       Sleep,
	}
}

// Client translates documents through a Remote with bounded retries
type Client struct {
	remote      Remote
	maxAttempts int
	baseDelay   time.Duration
	sleep       SleepFunc
	onRetry     RetryFunc
}

// NewClient creates a client. A nil config uses DefaultConfig.
func NewClient(remote Remote, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	c := &Client{
		remote:      remote,
		maxAttempts: config.MaxAttempts,
		baseDelay:   config.BaseDelay,
		sleep:       config.Sleep,
		onRetry:     config.OnRetry,
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.baseDelay < 0 {
		c.baseDelay = 0
	}
	if c.sleep == nil {
		c.sleep = Sleep
	}

	return c
}

// MaxAttempts returns the attempt cap per document
func (c *Client) MaxAttempts() int {
	return c.maxAttempts
}

// RemoteName returns the name of the underlying provider
func (c *Client) RemoteName() string {
	if c.remote == nil {
		return "none"
	}
	return c.remote.Name()
}

// Check verifies the remote is usable before a run starts
func (c *Client) Check() error {
	if c.remote == nil {
		return fmt.Errorf("no translation provider configured")
	}
	return c.remote.IsAvailable()
}

// Backoff returns the wait after the given zero-based failed attempt
func (c *Client) Backoff(attempt int) time.Duration {
	return c.baseDelay * time.Duration(1<<uint(attempt))
}

// Translate translates content to targetLanguage
func (c *Client) Translate(ctx context.Context, content, targetLanguage string) Result {
	return c.TranslateRequest(ctx, Request{Content: content, TargetLanguage: targetLanguage})
}

// TranslateRequest translates one request. It never returns an error:
// every failure is reported through Result with the original content.
func (c *Client) TranslateRequest(ctx context.Context, req Request) Result {
	// Nothing to translate, whitespace is kept as it is
	if strings.TrimSpace(req.Content) == "" {
		return Result{Content: req.Content, Succeeded: true}
	}
	if c.remote == nil {
		return fallback(req.Content, 0, NewFatalError(fmt.Errorf("no translation provider configured")))
	}

	prompt := BuildPrompt(req.Content, req.TargetLanguage)

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.Backoff(attempt - 1)
			if c.onRetry != nil {
				c.onRetry(attempt, delay, lastErr)
			}
			if err := c.sleep(ctx, delay); err != nil {
				return fallback(req.Content, attempt, err)
			}
		}

		text, err := c.remote.Generate(ctx, prompt)
		if err == nil {
			translated := Sanitize(text)
			if translated == "" {
				return fallback(req.Content, attempt+1, NewFatalError(ErrEmptyResponse))
			}
			return Result{Content: translated, Succeeded: true, Attempts: attempt + 1}
		}

		if ctx.Err() != nil {
			return fallback(req.Content, attempt+1, ctx.Err())
		}

		err = tagContextError(ctx, err)
		lastErr = err
		if Classify(err) != KindTransient {
			return fallback(req.Content, attempt+1, err)
		}
	}

	return fallback(req.Content, c.maxAttempts,
		fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.maxAttempts, lastErr))
}

func fallback(original string, attempts int, err error) Result {
	return Result{
		Content:   original,
		Succeeded: false,
		Attempts:  attempts,
		Err:       err,
	}
}

// Sleep waits for d, returning early with ctx.Err() if ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
