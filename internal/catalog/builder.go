package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/okonechnikov/chromesnap/internal/logger"
)

// maxBranchDistance bounds the branch-position probe when a revision has
// no exact release match.
const maxBranchDistance = 50

// RevisionSource lists the remote snapshot storage.
type RevisionSource interface {
	// ListRevisions fetches every revision record, following pagination
	// until exhausted or until maxPages is reached (zero means no cap).
	ListRevisions(ctx context.Context, maxPages int) ([]RevisionRecord, error)
}

// ReleaseSource fetches published releases for one channel.
type ReleaseSource interface {
	Releases(ctx context.Context, channel string) ([]ChannelRelease, error)
}

// Channels is the fixed set of release channels consulted during a build.
//
//nolint:gochecknoglobals // Static channel list.
var Channels = []string{"Stable", "Beta", "Dev", "Canary"}

// Builder assembles the ordered catalog from the snapshot listing and the
// per-channel release feeds.
type Builder struct {
	revisions RevisionSource
	releases  ReleaseSource
	maxPages  int
}

// NewBuilder creates a catalog builder. maxPages caps the revision
// listing; zero means unlimited.
func NewBuilder(revisions RevisionSource, releases ReleaseSource, maxPages int) *Builder {
	return &Builder{
		revisions: revisions,
		releases:  releases,
		maxPages:  maxPages,
	}
}

// Build fetches both remote listings and merges them into a catalog.
// A revision-listing failure aborts the build; a failed channel fetch
// contributes zero releases.
func (b *Builder) Build(ctx context.Context) (Catalog, error) {
	records, err := b.revisions.ListRevisions(ctx, b.maxPages)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}

	byPosition := b.fetchReleasesByPosition(ctx)

	var versioned, unversioned Catalog

	for _, record := range records {
		entry := Entry{
			Revision: record.Revision,
			Platform: record.Platform,
		}

		if release, ok := matchRelease(byPosition, record.Revision); ok {
			entry.Version = release.Version
			entry.Channel = release.Channel
			entry.HasVersion = true
			versioned = append(versioned, entry)

			continue
		}

		unversioned = append(unversioned, entry)
	}

	sort.SliceStable(versioned, func(i, j int) bool {
		return CompareVersions(versioned[i].Version, versioned[j].Version) > 0
	})
	sort.SliceStable(unversioned, func(i, j int) bool {
		return revisionNumber(unversioned[i].Revision) > revisionNumber(unversioned[j].Revision)
	})

	return append(versioned, unversioned...), nil
}

// fetchReleasesByPosition queries every channel concurrently and indexes
// the results by branch position. The first release seen for a position
// wins; completion order across channels is not guaranteed.
func (b *Builder) fetchReleasesByPosition(ctx context.Context) map[string]ChannelRelease {
	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		byPosition = make(map[string]ChannelRelease)
	)

	for _, channel := range Channels {
		wg.Add(1)

		go func(channel string) {
			defer wg.Done()

			releases, err := b.releases.Releases(ctx, channel)
			if err != nil {
				// A failed channel yields zero releases, not a failed build.
				logger.WarnKV(ctx, "Release channel fetch failed",
					"channel", channel, "error", err)

				return
			}

			mu.Lock()
			defer mu.Unlock()

			for _, release := range releases {
				position := strconv.Itoa(release.BranchPosition)
				if _, seen := byPosition[position]; !seen {
					byPosition[position] = release
				}
			}
		}(channel)
	}

	wg.Wait()

	return byPosition
}

// matchRelease finds the release whose branch position is closest to the
// revision. After an exact match it probes positions at offsets
// ±1, ±2, ... up to ±50 in increasing distance, "+" before "−" at each
// distance. Ties at equal distance therefore favor the higher position;
// the probe order is fixed for compatibility with previously built
// catalogs.
func matchRelease(byPosition map[string]ChannelRelease, revision string) (ChannelRelease, bool) {
	if release, ok := byPosition[revision]; ok {
		return release, true
	}

	base, err := strconv.Atoi(revision)
	if err != nil {
		return ChannelRelease{}, false
	}

	for distance := 1; distance <= maxBranchDistance; distance++ {
		if release, ok := byPosition[strconv.Itoa(base+distance)]; ok {
			return release, true
		}

		if release, ok := byPosition[strconv.Itoa(base-distance)]; ok {
			return release, true
		}
	}

	return ChannelRelease{}, false
}

// revisionNumber parses a revision for numeric ordering, pushing
// unparsable values to the bottom.
func revisionNumber(revision string) int64 {
	n, err := strconv.ParseInt(revision, 10, 64)
	if err != nil {
		return -1
	}

	return n
}
