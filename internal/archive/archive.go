package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchiveOutput moves an existing output tree to <parent>/archive/<name>-<timestamp>
// so a new run starts from an empty root. It returns the archive path, or ""
// when there was nothing to archive.
func ArchiveOutput(outputDir string) (string, error) {
	outputDir = filepath.Clean(outputDir)
	if outputDir == "." || outputDir == string(filepath.Separator) {
		return "", fmt.Errorf("refusing to archive %q", outputDir)
	}

	info, err := os.Stat(outputDir)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat output directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output path is not a directory: %s", outputDir)
	}

	parentDir := filepath.Dir(outputDir)
	archiveDir := filepath.Join(parentDir, "archive")

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := filepath.Base(outputDir)
	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, timestamp))

	// Two archives within the same second
	if _, err := os.Stat(archivePath); err == nil {
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, timestamp))
	}

	if err := os.Rename(outputDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive output directory: %w", err)
	}

	return archivePath, nil
}
