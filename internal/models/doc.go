// Package models lists the text generation models a provider offers for
// the configured API key.
package models
