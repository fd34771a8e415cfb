package processor

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"codeberg.org/snonux/treetranslate/internal/progress"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[0;33m"
	colorCyan   = "\033[0;36m"
)

// observer renders progress states as log lines plus an optional bar
type observer struct {
	out    io.Writer
	errOut io.Writer
	color  bool
	bar    *progressbar.ProgressBar
	last   string
}

func newObserver(out, errOut io.Writer, total int, interactive bool) *observer {
	o := &observer{out: out, errOut: errOut, color: interactive}
	if interactive && total > 0 {
		o.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(errOut),
			progressbar.OptionSetDescription("Translating"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}
	return o
}

// consume renders every delivered state until the channel is closed
func (o *observer) consume(ch *progress.Channel) {
	for state := range ch.Updates() {
		o.render(state)
	}
	if o.bar != nil {
		o.bar.Finish()
	}
}

func (o *observer) render(s progress.State) {
	// Coalesced duplicates carry the same message
	if s.Message != "" && s.Message != o.last {
		o.last = s.Message
		if o.bar != nil {
			o.bar.Clear()
		}
		o.line(s.Severity, s.Message)
	}

	if o.bar != nil {
		o.bar.Set(s.Completed)
	}
}

func (o *observer) line(severity progress.Severity, message string) {
	w := o.out
	prefix, color := "  → ", colorCyan
	switch severity {
	case progress.Success:
		prefix, color = "  ✓ ", colorGreen
	case progress.Warn:
		prefix, color, w = "  ⚠ ", colorYellow, o.errOut
	case progress.Error:
		prefix, color, w = "  ✗ ", colorRed, o.errOut
	}

	if o.color {
		prefix = color + prefix + colorReset
	}
	fmt.Fprintf(w, "%s%s\n", prefix, message)
}

// isTerminal reports whether f is attached to a TTY
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
