// Package processor ties the command line to the batch runner. It builds
// the task list from the scanned input tree, creates the translation
// provider behind a circuit breaker, renders progress while the run is in
// flight, records the outcome in the history database and prints the
// final summary.
package processor
