// Package progress hands progress snapshots from a batch worker to an
// observer without ever blocking the worker.
package progress
