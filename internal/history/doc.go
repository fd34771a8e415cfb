// Package history keeps an audit log of finished batch runs in SQLite.
// It is a report, not a checkpoint: runs are never resumed from it.
package history
