// Package platform maps supported build targets to their snapshot
// storage prefixes, archive names and bundle layouts.
package platform
