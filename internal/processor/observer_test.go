package processor

import (
	"bytes"
	"strings"
	"testing"

	"codeberg.org/snonux/treetranslate/internal/progress"
)

func TestObserverRender(t *testing.T) {
	var out, errOut bytes.Buffer
	obs := newObserver(&out, &errOut, 3, false)

	ch := progress.NewChannel()
	ch.Publish(progress.State{Total: 3, Message: "Translating 3 files to German"})
	obs.render(mustLatest(t, ch))
	ch.Publish(progress.State{Completed: 1, Total: 3, Message: "Kept original content for a.xml", Severity: progress.Warn})
	obs.render(mustLatest(t, ch))
	// Same message again is not repeated
	obs.render(mustLatest(t, ch))
	ch.Publish(progress.State{Completed: 3, Total: 3, Message: "Translated all 3 files", Severity: progress.Success, Final: true})
	ch.Close()
	obs.consume(ch)

	if obs.bar != nil {
		t.Error("Non-interactive observer should not draw a bar")
	}

	stdout := out.String()
	if !strings.Contains(stdout, "  → Translating 3 files to German") {
		t.Errorf("Missing info line in stdout:\n%s", stdout)
	}
	if !strings.Contains(stdout, "  ✓ Translated all 3 files") {
		t.Errorf("Missing success line in stdout:\n%s", stdout)
	}

	stderr := errOut.String()
	if strings.Count(stderr, "Kept original content for a.xml") != 1 {
		t.Errorf("Expected warning exactly once on stderr:\n%s", stderr)
	}
	if strings.Contains(stdout+stderr, "\033[") {
		t.Error("Non-interactive output must not contain color codes")
	}
}

func TestObserverErrorLine(t *testing.T) {
	var out, errOut bytes.Buffer
	obs := newObserver(&out, &errOut, 0, false)

	obs.line(progress.Error, "configuration error: target language not set")

	if out.Len() != 0 {
		t.Errorf("Errors should not go to stdout: %q", out.String())
	}
	if errOut.String() != "  ✗ configuration error: target language not set\n" {
		t.Errorf("Unexpected error line: %q", errOut.String())
	}
}

func mustLatest(t *testing.T, ch *progress.Channel) progress.State {
	t.Helper()
	s, ok := ch.Latest()
	if !ok {
		t.Fatal("Nothing published")
	}
	return s
}
