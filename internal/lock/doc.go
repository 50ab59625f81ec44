// Package lock provides cross-process mutual exclusion for the base
// directory via an advisory lock file.
//
// The lock records the holder's pid and acquisition time. A lock older
// than the staleness threshold, or whose recorded process has exited,
// is treated as abandoned and reclaimed by the next caller.
package lock
