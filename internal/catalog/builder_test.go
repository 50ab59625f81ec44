package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRevisionSource serves a fixed revision list or a fixed error.
type fakeRevisionSource struct {
	records []RevisionRecord
	err     error
}

func (s *fakeRevisionSource) ListRevisions(_ context.Context, _ int) ([]RevisionRecord, error) {
	return s.records, s.err
}

// fakeReleaseSource serves per-channel releases, with selected channels failing.
type fakeReleaseSource struct {
	byChannel map[string][]ChannelRelease
	failing   map[string]error
}

func (s *fakeReleaseSource) Releases(_ context.Context, channel string) ([]ChannelRelease, error) {
	if err, ok := s.failing[channel]; ok {
		return nil, err
	}

	return s.byChannel[channel], nil
}

func revisions(platform string, revs ...string) []RevisionRecord {
	records := make([]RevisionRecord, 0, len(revs))
	for _, r := range revs {
		records = append(records, RevisionRecord{Revision: r, Platform: platform})
	}

	return records
}

// TestBuilder_OrderingInvariant verifies versioned entries precede
// unversioned ones and both groups are sorted descending.
func TestBuilder_OrderingInvariant(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(
		&fakeRevisionSource{records: revisions("Linux_x64", "911515", "123", "882387", "999999")},
		&fakeReleaseSource{byChannel: map[string][]ChannelRelease{
			"Stable": {
				{Version: "92.0.4515.159", Channel: "Stable", BranchPosition: 882387},
				{Version: "93.0.4577.82", Channel: "Stable", BranchPosition: 911515},
			},
		}},
		0,
	)

	got, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)

	require.Equal(t, "93.0.4577.82", got[0].Version)
	require.Equal(t, "911515", got[0].Revision)
	require.Equal(t, "92.0.4515.159", got[1].Version)

	require.False(t, got[2].HasVersion)
	require.Equal(t, "999999", got[2].Revision)
	require.Equal(t, "123", got[3].Revision)

	sawUnversioned := false
	for _, entry := range got {
		if !entry.HasVersion {
			sawUnversioned = true
		} else {
			require.False(t, sawUnversioned, "versioned entry after unversioned one")
		}
	}
}

// TestBuilder_NearestPositionProbe verifies the alternating ±distance
// probe and its preference for the higher position on ties.
func TestBuilder_NearestPositionProbe(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(
		&fakeRevisionSource{records: revisions("Linux_x64", "1000")},
		&fakeReleaseSource{byChannel: map[string][]ChannelRelease{
			// Both 3 away; the "+" direction must win.
			"Stable": {{Version: "90.0.1.0", Channel: "Stable", BranchPosition: 997}},
			"Beta":   {{Version: "91.0.1.0", Channel: "Beta", BranchPosition: 1003}},
		}},
		0,
	)

	got, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].HasVersion)
	require.Equal(t, "91.0.1.0", got[0].Version)
}

// TestBuilder_ProbeDistanceCap verifies positions beyond ±50 never match.
func TestBuilder_ProbeDistanceCap(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(
		&fakeRevisionSource{records: revisions("Linux_x64", "1000")},
		&fakeReleaseSource{byChannel: map[string][]ChannelRelease{
			"Stable": {{Version: "90.0.1.0", Channel: "Stable", BranchPosition: 1051}},
		}},
		0,
	)

	got, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.False(t, got[0].HasVersion)
}

// TestBuilder_ChannelFailureTolerated verifies a failing channel only
// shrinks the versioned group.
func TestBuilder_ChannelFailureTolerated(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(
		&fakeRevisionSource{records: revisions("Linux_x64", "911515", "882387")},
		&fakeReleaseSource{
			byChannel: map[string][]ChannelRelease{
				"Stable": {{Version: "93.0.4577.82", Channel: "Stable", BranchPosition: 911515}},
			},
			failing: map[string]error{
				"Beta":   errors.New("boom"),
				"Dev":    errors.New("boom"),
				"Canary": errors.New("boom"),
			},
		},
		0,
	)

	got, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, got[0].HasVersion)
	require.False(t, got[1].HasVersion)
}

// TestBuilder_RevisionFailureFatal verifies a revision-listing failure
// aborts the build.
func TestBuilder_RevisionFailureFatal(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("listing is down")
	builder := NewBuilder(
		&fakeRevisionSource{err: wantErr},
		&fakeReleaseSource{},
		0,
	)

	_, err := builder.Build(context.Background())
	require.ErrorIs(t, err, wantErr)
}

// TestBuilder_EmptyListing verifies zero revisions yield an empty
// catalog, not an error.
func TestBuilder_EmptyListing(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(&fakeRevisionSource{}, &fakeReleaseSource{}, 0)

	got, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}
