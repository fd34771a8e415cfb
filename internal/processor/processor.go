package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/treetranslate/internal/archive"
	"codeberg.org/snonux/treetranslate/internal/batch"
	"codeberg.org/snonux/treetranslate/internal/cli"
	"codeberg.org/snonux/treetranslate/internal/history"
	"codeberg.org/snonux/treetranslate/internal/progress"
	"codeberg.org/snonux/treetranslate/internal/scan"
	"codeberg.org/snonux/treetranslate/internal/translation"
)

// Processor runs one batch translation as configured by the command line
type Processor struct {
	flags  *cli.Flags
	runner *batch.Runner

	// remote replaces the provider built from flags, used by tests
	remote translation.Remote
	sleep  translation.SleepFunc

	out    io.Writer
	errOut io.Writer
}

// NewProcessor creates a new processor writing to stdout and stderr
func NewProcessor(flags *cli.Flags) *Processor {
	return &Processor{
		flags:  flags,
		runner: batch.NewRunner(),
		sleep:  translation.Sleep,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// Run scans the input tree and translates every matching file. Per-file
// failures are reported in the summary; only configuration problems and
// a concurrent run are returned as errors.
func (p *Processor) Run(ctx context.Context) (batch.Summary, error) {
	tasks, err := p.collectTasks()
	if err != nil {
		return batch.Summary{}, err
	}

	if p.flags.DryRun {
		p.printDryRun(tasks)
		return batch.Summary{TotalFiles: len(tasks)}, nil
	}

	if p.flags.Archive {
		archived, err := archive.ArchiveOutput(p.flags.OutputDir)
		if err != nil {
			return batch.Summary{}, &batch.ConfigurationError{Err: err}
		}
		if archived != "" {
			fmt.Fprintf(p.out, "Archived previous output to %s\n", archived)
		}
	}

	if err := os.MkdirAll(p.flags.OutputDir, 0755); err != nil {
		return batch.Summary{}, &batch.ConfigurationError{Err: fmt.Errorf("failed to create output directory: %w", err)}
	}

	ch := progress.NewChannel()
	remote, err := p.buildRemote(ctx, ch)
	if err != nil {
		return batch.Summary{}, err
	}

	client := translation.NewClient(remote, &translation.Config{
		MaxAttempts: p.flags.MaxAttempts,
		BaseDelay:   p.flags.BaseDelay,
		Sleep:       p.sleep,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			ch.Notify(fmt.Sprintf("Rate limited, retry %d in %v: %v", attempt, delay, err), progress.Warn)
		},
	})

	handle, err := p.runner.Start(ctx, tasks, client, batch.Options{
		TargetLanguage: p.flags.TargetLanguage,
		InterFileDelay: p.flags.Delay,
		Progress:       ch,
		Sleep:          p.sleep,
	})
	if err != nil {
		return batch.Summary{}, err
	}

	obs := newObserver(p.out, p.errOut, len(tasks), p.showBar())
	observed := make(chan struct{})
	go func() {
		defer close(observed)
		obs.consume(ch)
	}()

	summary, err := handle.Wait()
	<-observed
	if err != nil {
		return summary, err
	}

	if !p.flags.NoHistory {
		p.recordHistory(ctx, summary, remote.Name())
	}

	p.printSummary(summary)
	return summary, nil
}

func (p *Processor) collectTasks() ([]scan.FileTask, error) {
	// Translating in place would overwrite the originals
	if absPath(p.flags.InputDir) == absPath(p.flags.OutputDir) {
		return nil, &batch.ConfigurationError{Err: fmt.Errorf("output directory must differ from input directory: %s", p.flags.OutputDir)}
	}

	tasks, err := scan.Scan(p.flags.InputDir, p.flags.OutputDir, scan.ExtensionFilter(p.flags.Extension))
	if err != nil {
		if errors.Is(err, scan.ErrNotFound) {
			return nil, &batch.ConfigurationError{Err: err}
		}
		return nil, err
	}

	if p.flags.TaskList != "" {
		relPaths, err := batch.ReadTaskList(p.flags.TaskList)
		if err != nil {
			return nil, &batch.ConfigurationError{Err: err}
		}
		tasks = batch.FilterTasks(tasks, relPaths)
	}

	return tasks, nil
}

// buildRemote creates the configured provider, wrapped in a circuit
// breaker unless BreakerFailures is zero
func (p *Processor) buildRemote(ctx context.Context, ch *progress.Channel) (translation.Remote, error) {
	remote := p.remote
	if remote == nil {
		switch p.flags.Provider {
		case "", "gemini":
			gemini, err := translation.NewGeminiRemote(ctx, cli.GetGeminiKey(), p.flags.Model)
			if err != nil {
				return nil, &batch.ConfigurationError{Err: err}
			}
			remote = gemini
		case "openai":
			remote = translation.NewOpenAIRemote(cli.GetOpenAIKey(), p.flags.Model)
		default:
			return nil, &batch.ConfigurationError{Err: fmt.Errorf("unknown provider: %s (use gemini or openai)", p.flags.Provider)}
		}
	}

	if p.flags.BreakerFailures > 0 {
		name := remote.Name()
		remote = translation.NewBreakerRemote(remote, translation.BreakerConfig{
			ConsecutiveFailures: uint32(p.flags.BreakerFailures),
			OnStateChange: func(from, to string) {
				ch.Notify(fmt.Sprintf("Circuit breaker for %s: %s -> %s", name, from, to), progress.Warn)
			},
		})
	}

	return remote, nil
}

func (p *Processor) showBar() bool {
	if p.flags.NoProgress {
		return false
	}
	f, ok := p.errOut.(*os.File)
	return ok && isTerminal(f)
}

func (p *Processor) recordHistory(ctx context.Context, summary batch.Summary, provider string) {
	store, err := history.Open(p.historyPath())
	if err != nil {
		fmt.Fprintf(p.errOut, "Warning: %v\n", err)
		return
	}
	defer store.Close()

	meta := history.Meta{
		InputRoot:  absPath(p.flags.InputDir),
		OutputRoot: absPath(p.flags.OutputDir),
		Language:   p.flags.TargetLanguage,
		Provider:   provider,
	}

	// An interrupted run is still worth recording
	if err := store.Record(context.WithoutCancel(ctx), summary, meta); err != nil {
		fmt.Fprintf(p.errOut, "Warning: %v\n", err)
	}
}

func (p *Processor) historyPath() string {
	if p.flags.HistoryPath != "" {
		return p.flags.HistoryPath
	}
	return history.DefaultPath()
}

func (p *Processor) printDryRun(tasks []scan.FileTask) {
	if len(tasks) == 0 {
		fmt.Fprintf(p.out, "No matching files found in %s\n", p.flags.InputDir)
		return
	}

	fmt.Fprintf(p.out, "Would translate %d files to %s:\n", len(tasks), p.flags.TargetLanguage)
	for _, task := range tasks {
		fmt.Fprintf(p.out, "  %s -> %s\n", task.SourcePath, task.DestPath)
	}
}

func (p *Processor) printSummary(s batch.Summary) {
	for _, o := range s.Outcomes {
		if o.Status == batch.StatusFallback || o.Status == batch.StatusIOError {
			fmt.Fprintf(p.errOut, "  %s %s: %v\n", o.Status, o.Task.RelPath, o.Err)
		}
	}

	fmt.Fprintf(p.out, "\n=== Translation Summary ===\n")
	fmt.Fprintf(p.out, "Run: %s\n", s.RunID)
	fmt.Fprintf(p.out, "Total files: %d\n", s.TotalFiles)
	fmt.Fprintf(p.out, "Translated: %d\n", s.Succeeded)
	if n := s.Count(batch.StatusFallback); n > 0 {
		fmt.Fprintf(p.out, "Kept original: %d\n", n)
	}
	if n := s.Count(batch.StatusIOError); n > 0 {
		fmt.Fprintf(p.out, "I/O errors: %d\n", n)
	}
	if s.Cancelled {
		fmt.Fprintf(p.out, "Cancelled: %d files not processed\n", s.TotalFiles-s.Succeeded-s.Failed)
	}
	fmt.Fprintf(p.out, "Duration: %v\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	fmt.Fprintf(p.out, "===========================\n")
	fmt.Fprintf(p.out, "Output: %s\n", p.flags.OutputDir)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
