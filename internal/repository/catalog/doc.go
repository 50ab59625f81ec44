// Package catalog persists the build catalog as a JSON file that is
// replaced wholly on every rebuild.
package catalog
