// Package batch drives a scanned file list through a translation client
// one file at a time. A failing file never stops the run; it is recorded
// in the summary and the next file is processed.
package batch
