// Package registry persists the record of installed builds, keyed by
// install key.
package registry
