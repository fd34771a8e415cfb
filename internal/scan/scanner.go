package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is matched by every NotFoundError
var ErrNotFound = errors.New("input root not found")

// NotFoundError reports an input root that is missing or not a directory
type NotFoundError struct {
	Path   string
	Reason string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input root %s: %s", e.Path, e.Reason)
}

// Is lets errors.Is(err, ErrNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FileTask is one file to translate and where its result goes
type FileTask struct {
	SourcePath string // Absolute or root-joined path of the input file
	RelPath    string // Path relative to the input root
	DestPath   string // Mirrored path below the output root
	DestDir    string // Directory of DestPath, created at write time
}

// Filter decides whether a file (by its path relative to the root) is translated
type Filter func(relPath string) bool

// ExtensionFilter matches files ending in ext, ignoring case.
// The leading dot is optional, so "xml" and ".xml" are equivalent.
func ExtensionFilter(ext string) Filter {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return func(relPath string) bool {
		return strings.HasSuffix(strings.ToLower(relPath), ext)
	}
}

// Scan walks inputRoot recursively and returns a FileTask for every file
// accepted by filter. Order is lexical and therefore stable for a given
// tree. A nil filter accepts every regular file.
func Scan(inputRoot, outputRoot string, filter Filter) ([]FileTask, error) {
	info, err := os.Stat(inputRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: inputRoot, Reason: "does not exist"}
		}
		return nil, fmt.Errorf("failed to stat input root: %w", err)
	}
	if !info.IsDir() {
		return nil, &NotFoundError{Path: inputRoot, Reason: "not a directory"}
	}

	// An output tree nested in the input tree must not be picked up again
	skipDir := ""
	if absOut, err := filepath.Abs(outputRoot); err == nil {
		if absIn, err := filepath.Abs(inputRoot); err == nil && absOut != absIn {
			if rel, err := filepath.Rel(absIn, absOut); err == nil && !isOutside(rel) {
				skipDir = rel
			}
		}
	}

	var tasks []FileTask
	err = filepath.WalkDir(inputRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(inputRoot, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if skipDir != "" && relPath == skipDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if filter != nil && !filter(relPath) {
			return nil
		}

		tasks = append(tasks, NewFileTask(path, relPath, outputRoot))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", inputRoot, err)
	}

	return tasks, nil
}

// NewFileTask rewrites relPath onto outputRoot
func NewFileTask(sourcePath, relPath, outputRoot string) FileTask {
	destPath := filepath.Join(outputRoot, relPath)
	return FileTask{
		SourcePath: sourcePath,
		RelPath:    relPath,
		DestPath:   destPath,
		DestDir:    filepath.Dir(destPath),
	}
}

// isOutside reports whether a relative path climbs out of its base
func isOutside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
