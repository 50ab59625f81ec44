// Package download implements the streaming artifact fetch with
// progress reporting, the retry wrapper and post-download size
// validation.
package download
