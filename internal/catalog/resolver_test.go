package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleCatalog() Catalog {
	return Catalog{
		{Version: "93.0.4577.82", Revision: "911515", Channel: "Stable", Platform: "Linux_x64", HasVersion: true},
		{Version: "92.0.4515.159", Revision: "882387", Channel: "Stable", Platform: "Linux_x64", HasVersion: true},
		{Revision: "850000", Platform: "Linux_x64"},
		{Revision: "840000", Platform: "Linux_x64"},
	}
}

// TestResolve_Latest returns the first versioned entry.
func TestResolve_Latest(t *testing.T) {
	t.Parallel()

	got := Resolve("latest", sampleCatalog())
	require.NotNil(t, got)
	require.Equal(t, "93.0.4577.82", got.Version)
}

// TestResolve_LatestWithoutVersions falls back to the first entry overall.
func TestResolve_LatestWithoutVersions(t *testing.T) {
	t.Parallel()

	c := Catalog{
		{Revision: "850000", Platform: "Linux_x64"},
		{Revision: "840000", Platform: "Linux_x64"},
	}

	got := Resolve("latest", c)
	require.NotNil(t, got)
	require.Equal(t, "850000", got.Revision)
}

// TestResolve_Oldest returns the last entry of the full catalog.
func TestResolve_Oldest(t *testing.T) {
	t.Parallel()

	got := Resolve("oldest", sampleCatalog())
	require.NotNil(t, got)
	require.Equal(t, "840000", got.Revision)
}

// TestResolve_ExactAndPrefix covers exact version, exact revision and
// prefix resolution order.
func TestResolve_ExactAndPrefix(t *testing.T) {
	t.Parallel()

	c := sampleCatalog()

	got := Resolve("92.0.4515.159", c)
	require.NotNil(t, got)
	require.Equal(t, "882387", got.Revision)

	got = Resolve("850000", c)
	require.NotNil(t, got)
	require.False(t, got.HasVersion)

	// Prefix match: first listed wins, which is the newest.
	got = Resolve("92", c)
	require.NotNil(t, got)
	require.Equal(t, "92.0.4515.159", got.Version)

	got = Resolve("9", c)
	require.NotNil(t, got)
	require.Equal(t, "93.0.4577.82", got.Version)
}

// TestResolve_NoMatch returns nil for unknown queries.
func TestResolve_NoMatch(t *testing.T) {
	t.Parallel()

	require.Nil(t, Resolve("999", sampleCatalog()))
	require.Nil(t, Resolve("", sampleCatalog()))
}

// TestResolve_EmptyCatalog returns nil for any query.
func TestResolve_EmptyCatalog(t *testing.T) {
	t.Parallel()

	for _, query := range []string{"latest", "oldest", "92", "911515", ""} {
		require.Nil(t, Resolve(query, nil), "query %q", query)
	}
}

// TestInstallKey prefers the version over the revision.
func TestInstallKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "93.0.4577.82", Entry{Version: "93.0.4577.82", Revision: "911515", HasVersion: true}.InstallKey())
	require.Equal(t, "850000", Entry{Revision: "850000"}.InstallKey())
}
