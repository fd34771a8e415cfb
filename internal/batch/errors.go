package batch

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned when a run is started while another one is active
var ErrAlreadyRunning = errors.New("batch run already in progress")

// ConfigurationError aborts a run before any file is processed
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// FileIOError is a read or write failure isolated to one file
type FileIOError struct {
	Op   string // "mkdir", "read" or "write"
	Path string
	Err  error
}

func (e *FileIOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileIOError) Unwrap() error {
	return e.Err
}
