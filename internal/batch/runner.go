package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"codeberg.org/snonux/treetranslate/internal/progress"
	"codeberg.org/snonux/treetranslate/internal/scan"
	"codeberg.org/snonux/treetranslate/internal/translation"
)

// Translator is what the runner needs from a translation client
type Translator interface {
	Check() error
	Translate(ctx context.Context, content, targetLanguage string) translation.Result
}

// Options configures a single run
type Options struct {
	TargetLanguage string
	InterFileDelay time.Duration

	// Progress receives snapshots and is closed when the run ends.
	// A private channel is used when nil.
	Progress *progress.Channel

	// Sleep implements the inter-file delay, translation.Sleep when nil
	Sleep translation.SleepFunc
}

// Status is the outcome of one file
type Status int

const (
	StatusTranslated Status = iota
	StatusFallback
	StatusIOError
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusTranslated:
		return "translated"
	case StatusFallback:
		return "fallback"
	case StatusIOError:
		return "io-error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// FileOutcome records what happened to one task
type FileOutcome struct {
	Task     scan.FileTask
	Status   Status
	Attempts int
	Err      error
}

// Summary is the aggregate result of a run
type Summary struct {
	RunID      string
	TotalFiles int
	Succeeded  int
	Failed     int // Fallbacks plus I/O failures
	Cancelled  bool
	Outcomes   []FileOutcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// Count returns the number of outcomes with status s
func (s Summary) Count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Runner executes batch runs. At most one run is active per Runner.
type Runner struct {
	running atomic.Bool
}

// NewRunner creates an idle runner
func NewRunner() *Runner {
	return &Runner{}
}

// IsRunning reports whether a run is active
func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

// Run processes tasks on the calling goroutine and returns when every
// task has been attempted or ctx is cancelled. Only configuration
// problems and a concurrent run are returned as errors.
func (r *Runner) Run(ctx context.Context, tasks []scan.FileTask, client Translator, opts Options) (Summary, error) {
	if !r.running.CompareAndSwap(false, true) {
		return Summary{}, ErrAlreadyRunning
	}
	return r.execute(ctx, tasks, client, opts)
}

// Start launches the run on its own goroutine and returns at once.
// A run already in progress is rejected, never queued.
func (r *Runner) Start(ctx context.Context, tasks []scan.FileTask, client Translator, opts Options) (*Handle, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}

	if opts.Progress == nil {
		opts.Progress = progress.NewChannel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		progress: opts.Progress,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer cancel()
		h.summary, h.err = r.execute(runCtx, tasks, client, opts)
	}()

	return h, nil
}

func (r *Runner) execute(ctx context.Context, tasks []scan.FileTask, client Translator, opts Options) (Summary, error) {
	ch := opts.Progress
	if ch == nil {
		ch = progress.NewChannel()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = translation.Sleep
	}

	// Close runs after the guard is released so an observer seeing the
	// end of the stream can start the next run
	defer ch.Close()
	defer r.running.Store(false)

	summary := Summary{
		RunID:      uuid.NewString(),
		TotalFiles: len(tasks),
		StartedAt:  time.Now(),
	}

	if err := validate(client, opts); err != nil {
		summary.FinishedAt = time.Now()
		ch.Publish(progress.State{
			Total:    len(tasks),
			Message:  err.Error(),
			Severity: progress.Error,
			Final:    true,
		})
		return summary, err
	}

	total := len(tasks)
	ch.Publish(progress.State{
		Total:    total,
		Message:  fmt.Sprintf("Translating %d files to %s", total, opts.TargetLanguage),
		Severity: progress.Info,
	})

	completed := 0
	for i, task := range tasks {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		outcome := processTask(ctx, task, client, opts.TargetLanguage)
		if outcome.Status == StatusCancelled {
			summary.Outcomes = append(summary.Outcomes, outcome)
			summary.Cancelled = true
			break
		}

		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Status == StatusTranslated {
			summary.Succeeded++
		} else {
			summary.Failed++
		}

		completed++
		ch.Publish(progress.State{
			Completed: completed,
			Total:     total,
			Message:   describe(outcome),
			Severity:  severityOf(outcome.Status),
			File:      task.RelPath,
		})

		if i < total-1 && opts.InterFileDelay > 0 {
			if err := sleep(ctx, opts.InterFileDelay); err != nil {
				summary.Cancelled = true
				break
			}
		}
	}

	summary.FinishedAt = time.Now()
	final := finalState(summary, completed)
	ch.Publish(final)

	return summary, nil
}

func validate(client Translator, opts Options) error {
	if client == nil {
		return &ConfigurationError{Err: fmt.Errorf("no translation client configured")}
	}
	if opts.TargetLanguage == "" {
		return &ConfigurationError{Err: fmt.Errorf("target language not set")}
	}
	if opts.InterFileDelay < 0 {
		return &ConfigurationError{Err: fmt.Errorf("inter-file delay must not be negative: %v", opts.InterFileDelay)}
	}
	if err := client.Check(); err != nil {
		return &ConfigurationError{Err: err}
	}
	return nil
}

// processTask translates one file. The destination is written even when
// translation failed, in which case it holds the original content.
func processTask(ctx context.Context, task scan.FileTask, client Translator, targetLanguage string) FileOutcome {
	outcome := FileOutcome{Task: task}

	if err := os.MkdirAll(task.DestDir, 0755); err != nil {
		outcome.Status = StatusIOError
		outcome.Err = &FileIOError{Op: "mkdir", Path: task.DestDir, Err: err}
		return outcome
	}

	content, err := os.ReadFile(task.SourcePath)
	if err != nil {
		outcome.Status = StatusIOError
		outcome.Err = &FileIOError{Op: "read", Path: task.SourcePath, Err: err}
		return outcome
	}

	result := client.Translate(ctx, string(content), targetLanguage)
	outcome.Attempts = result.Attempts
	outcome.Err = result.Err

	// Only the run's own context cancels; a remote timeout is a fallback
	if !result.Succeeded && ctx.Err() != nil && translation.Classify(result.Err) == translation.KindCancelled {
		outcome.Status = StatusCancelled
		return outcome
	}

	if err := writeFileAtomic(task.DestPath, []byte(result.Content)); err != nil {
		outcome.Status = StatusIOError
		outcome.Err = &FileIOError{Op: "write", Path: task.DestPath, Err: err}
		return outcome
	}

	if result.Succeeded {
		outcome.Status = StatusTranslated
	} else {
		outcome.Status = StatusFallback
	}
	return outcome
}

// writeFileAtomic writes through a temporary file in the same directory
// so a destination is either complete or untouched
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func describe(o FileOutcome) string {
	switch o.Status {
	case StatusTranslated:
		return fmt.Sprintf("Translated %s (%s)", o.Task.RelPath, plural(o.Attempts, "attempt"))
	case StatusFallback:
		return fmt.Sprintf("Kept original content for %s: %v", o.Task.RelPath, o.Err)
	case StatusIOError:
		return fmt.Sprintf("Skipped %s: %v", o.Task.RelPath, o.Err)
	default:
		return fmt.Sprintf("%s: %s", o.Task.RelPath, o.Status)
	}
}

func severityOf(s Status) progress.Severity {
	switch s {
	case StatusTranslated:
		return progress.Success
	case StatusFallback:
		return progress.Warn
	case StatusIOError:
		return progress.Error
	default:
		return progress.Info
	}
}

func finalState(s Summary, completed int) progress.State {
	state := progress.State{
		Completed: completed,
		Total:     s.TotalFiles,
		Final:     true,
	}

	switch {
	case s.TotalFiles == 0:
		state.Message = "No matching files found, zero files processed"
		state.Severity = progress.Warn
	case s.Cancelled:
		state.Message = fmt.Sprintf("Cancelled after %d of %d files (%d translated, %d failed)",
			completed, s.TotalFiles, s.Succeeded, s.Failed)
		state.Severity = progress.Warn
	case s.Failed > 0:
		state.Message = fmt.Sprintf("Translated %d of %d files, %d failed", s.Succeeded, s.TotalFiles, s.Failed)
		state.Severity = progress.Warn
	default:
		state.Message = fmt.Sprintf("Translated all %d files", s.TotalFiles)
		state.Severity = progress.Success
	}

	return state
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
