// Package scan discovers the files of an input tree that should be
// translated and maps each of them onto its mirrored location below the
// output root. Scanning never touches the filesystem beyond reading it.
package scan
