// Package catalog builds and queries the ordered table of known remote
// browser builds.
//
// A catalog merges two remote listings: the raw snapshot storage, which
// yields bare revisions, and the per-channel release feeds, which map
// branch positions to released versions. Entries matched to a version
// sort first (newest version first); bare revisions follow (highest
// revision first).
package catalog
