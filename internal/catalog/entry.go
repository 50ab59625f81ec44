package catalog

// Entry is one known remote build, optionally matched to a released
// browser version.
type Entry struct {
	// Version is the dotted browser version, empty when unknown.
	Version string `json:"version,omitempty"`
	// Revision is the numeric snapshot identifier.
	Revision string `json:"revision"`
	// Channel is the release channel the version was sourced from.
	Channel string `json:"channel,omitempty"`
	// Platform is the storage platform prefix the build belongs to.
	Platform string `json:"platform"`
	// HasVersion reports whether Version carries a real value.
	HasVersion bool `json:"has_version"`
}

// Catalog is the ordered table of known remote builds. Entries with a
// version come first, newest version first; the remaining entries follow,
// highest revision first.
type Catalog []Entry

// InstallKey returns the identifier used to index the installed registry:
// the version when known, the revision otherwise.
func (e Entry) InstallKey() string {
	if e.HasVersion {
		return e.Version
	}

	return e.Revision
}

// RevisionRecord is a single build found in the remote snapshot storage.
type RevisionRecord struct {
	// Revision is the numeric snapshot identifier.
	Revision string
	// Platform is the storage platform prefix the build belongs to.
	Platform string
}

// ChannelRelease is a published release from one channel of the release feed.
type ChannelRelease struct {
	// Version is the dotted release version (2-4 components).
	Version string
	// Channel is the release channel name.
	Channel string
	// BranchPosition is the build counter used to match releases to revisions.
	BranchPosition int
}
