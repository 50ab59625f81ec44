package catalog

import "strings"

// Resolve maps a user query to a catalog entry, or nil when nothing
// matches. Recognized queries, in order:
//
//   - "latest": the first versioned entry, falling back to the first
//     entry overall;
//   - "oldest": the last entry of the catalog;
//   - an exact version, then an exact revision, then the first entry
//     whose version starts with the query. The catalog is
//     version-descending, so the first prefix match is the newest.
//
// Resolve never mutates the catalog and performs no I/O.
func Resolve(query string, c Catalog) *Entry {
	if query == "" || len(c) == 0 {
		return nil
	}

	switch query {
	case "latest":
		for i := range c {
			if c[i].HasVersion {
				return &c[i]
			}
		}

		return &c[0]
	case "oldest":
		return &c[len(c)-1]
	}

	for i := range c {
		if c[i].HasVersion && c[i].Version == query {
			return &c[i]
		}
	}

	for i := range c {
		if c[i].Revision == query {
			return &c[i]
		}
	}

	for i := range c {
		if c[i].HasVersion && strings.HasPrefix(c[i].Version, query) {
			return &c[i]
		}
	}

	return nil
}
