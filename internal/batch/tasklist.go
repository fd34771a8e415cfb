package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/treetranslate/internal/scan"
)

// ReadTaskList reads relative paths from a file, one per line.
// Blank lines and lines starting with '#' are ignored.
func ReadTaskList(filename string) ([]string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read task list: %w", err)
	}

	var paths []string
	for _, line := range splitLines(string(content)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, filepath.Clean(filepath.FromSlash(line)))
	}

	return paths, nil
}

// splitLines splits a string by newlines, dropping carriage returns
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}

// FilterTasks keeps the tasks whose relative path is listed, in scan order
func FilterTasks(tasks []scan.FileTask, relPaths []string) []scan.FileTask {
	wanted := make(map[string]bool, len(relPaths))
	for _, p := range relPaths {
		wanted[p] = true
	}

	var out []scan.FileTask
	for _, t := range tasks {
		if wanted[t.RelPath] {
			out = append(out, t)
		}
	}
	return out
}
