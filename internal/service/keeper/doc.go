// Package keeper orchestrates the user-facing operations: catalog
// refresh, install, uninstall, list and launch.
//
// An install runs entirely under the cross-process lock: resolve the
// query against the persisted catalog, download and validate the
// archive, extract and publish it atomically, then record it in the
// installed registry. Failed installs leave no trace.
package keeper
