// Package translation translates whole structured documents through a
// generative-text service. It retries rate-limited calls with exponential
// backoff and never returns partial output: when a document cannot be
// translated the original content is handed back unchanged.
package translation
